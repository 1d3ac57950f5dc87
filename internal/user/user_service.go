package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// NewUserWindow is how far back the dashboard counts new sign-ups.
const NewUserWindow = 30 * 24 * time.Hour

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrEmailRequired    = errors.New("email is required")
)

// validationMessage returns the form text for an input error raised before
// the backend is called.
func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match.", true
	case errors.Is(err, ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength), true
	case errors.Is(err, ErrEmailRequired):
		return "Email is required.", true
	}
	return "", false
}

// Avatar is an uploaded profile picture.
type Avatar struct {
	Name   string
	Reader io.Reader
}

// Input is the admin edit-user form.
type Input struct {
	Firstname   string
	Lastname    string
	Email       string
	PhoneNo     string
	Role        string
	Credit      string
	Address     string
	Verified    bool
	VerifyPhone bool
}

type UserService struct {
	client  *pocketbase.Client
	records *pocketbase.RecordService[models.User]
	logger  *zap.Logger
	now     func() time.Time
}

func NewUserService(client *pocketbase.Client, logger *zap.Logger) *UserService {
	return &UserService{
		client:  client,
		records: pocketbase.Collection[models.User](client, models.UsersCollection),
		logger:  logger,
		now:     time.Now,
	}
}

// Login authenticates against the users auth collection.
func (s *UserService) Login(ctx context.Context, email, password string) (*pocketbase.AuthResult[models.User], error) {
	result, err := s.records.AuthWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed in", zap.String("id", result.Record.ID), zap.String("role", string(result.Record.Role)))
	return result, nil
}

// Register validates the password pair and creates a user. Email verification
// is left to the backend.
func (s *UserService) Register(ctx context.Context, email, password, confirm string) (*models.User, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	created, err := s.records.Create(ctx, map[string]any{
		"email":           email,
		"password":        password,
		"passwordConfirm": confirm,
		"emailVisibility": true,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("id", created.ID))
	return created, nil
}

// FindAll returns every user, newest first.
func (s *UserService) FindAll(ctx context.Context) ([]models.User, error) {
	return s.records.GetFullList(ctx, pocketbase.ListOptions{Sort: "-created"})
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.records.GetOne(ctx, id)
}

// Count returns the number of users.
func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.count(ctx, "")
}

// CountNew returns the number of users created within NewUserWindow.
func (s *UserService) CountNew(ctx context.Context) (int, error) {
	since := s.now().Add(-NewUserWindow)
	return s.count(ctx, pocketbase.Filter("created >= {:since}", map[string]any{"since": since}))
}

func (s *UserService) count(ctx context.Context, filter string) (int, error) {
	result, err := s.records.GetList(ctx, 1, 1, pocketbase.ListOptions{Filter: filter, Fields: "id"})
	if err != nil {
		return 0, err
	}
	return result.TotalItems, nil
}

// Update patches user id from the admin form. A nil avatar keeps the current one.
func (s *UserService) Update(ctx context.Context, id string, in Input, avatar *Avatar) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	credit := 0.0
	if c := strings.TrimSpace(in.Credit); c != "" {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, fmt.Errorf("credit must be a number")
		}
		credit = v
	}

	form := pocketbase.NewForm().
		Set("firstname", strings.TrimSpace(in.Firstname)).
		Set("lastname", strings.TrimSpace(in.Lastname)).
		Set("email", email).
		Set("phone_no", strings.TrimSpace(in.PhoneNo)).
		Set("role", string(models.ParseRole(in.Role))).
		Set("credit", credit).
		Set("address", in.Address).
		Set("verified", in.Verified).
		Set("verify_phone", in.VerifyPhone)
	if avatar != nil {
		form.AddFile("avatar", avatar.Name, avatar.Reader)
	}

	updated, err := s.records.Update(ctx, id, form)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user updated", zap.String("id", id))
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("id", id))
	return nil
}

// AvatarURL returns the public URL of a user's avatar, or "".
func (s *UserService) AvatarURL(u *models.User) string {
	if u == nil {
		return ""
	}
	collection := u.CollectionID
	if collection == "" {
		collection = models.UsersCollection
	}
	return s.client.FileURL(collection, u.ID, u.Avatar)
}

// UpdateErrorMessage renders a failed update for the admin toast.
func UpdateErrorMessage(err error) string {
	if re, ok := pocketbase.AsResponseError(err); ok {
		if fields := re.FieldMessages(); len(fields) > 0 {
			return "Update failed: " + strings.Join(fields, ", ")
		}
		return "Failed to update record."
	}
	if msg, ok := validationMessage(err); ok {
		return msg
	}
	if err != nil {
		return err.Error()
	}
	return "Failed to update record."
}

// RegisterErrorMessage renders a failed registration for the form.
func RegisterErrorMessage(err error) string {
	if re, ok := pocketbase.AsResponseError(err); ok {
		if msg := re.FieldMessage("email"); msg != "" {
			return msg
		}
		if re.Message != "" {
			return re.Message
		}
		return "Failed to register."
	}
	if msg, ok := validationMessage(err); ok {
		return msg
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Failed to register."
}

// LoginErrorMessage renders a failed sign-in for the form.
func LoginErrorMessage(err error) string {
	if re, ok := pocketbase.AsResponseError(err); ok && re.Message != "" {
		return re.Message
	}
	return "Failed to login. Please check your credentials."
}
