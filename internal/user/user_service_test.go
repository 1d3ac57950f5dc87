package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/internal/pocketbase/pbtest"
	"github.com/Settj76/ecom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*UserService, *pbtest.Server) {
	t.Helper()
	srv := pbtest.NewServer(t)
	client, err := pocketbase.NewClient(srv.URL)
	require.NoError(t, err)
	return NewUserService(client, zap.NewNop()), srv
}

func TestUserService_Register(t *testing.T) {
	s, srv := newService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@example.com", "password1", "password2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, "Passwords do not match.", RegisterErrorMessage(err))

	_, err = s.Register(ctx, "a@example.com", "short", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Equal(t, "password must be at least 8 characters long", err.Error())
	assert.Equal(t, "Password must be at least 8 characters long.", RegisterErrorMessage(err))

	_, err = s.Register(ctx, "  ", "password1", "password1")
	assert.ErrorIs(t, err, ErrEmailRequired)
	assert.Equal(t, "Email is required.", RegisterErrorMessage(err))

	created, err := s.Register(ctx, " a@example.com ", "password1", "password1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", created.Email)
	assert.True(t, created.EmailVisibility)
	_, hasConfirm := srv.Records(models.UsersCollection)[0]["passwordConfirm"]
	assert.False(t, hasConfirm)

	_, err = s.Register(ctx, "a@example.com", "password1", "password1")
	require.Error(t, err)
	assert.Equal(t, "Value must be unique.", RegisterErrorMessage(err))
}

func TestUserService_Login(t *testing.T) {
	s, srv := newService(t)
	srv.Seed(models.UsersCollection, pbtest.Record{"email": "admin@example.com", "password": "password1", "role": "admin"})

	result, err := s.Login(context.Background(), "admin@example.com", "password1")
	require.NoError(t, err)
	assert.True(t, result.Record.IsAdmin())
	assert.NotEmpty(t, result.Token)

	_, err = s.Login(context.Background(), "admin@example.com", "nope")
	assert.Equal(t, "Failed to authenticate.", LoginErrorMessage(err))
	assert.Equal(t, "Failed to login. Please check your credentials.", LoginErrorMessage(errors.New("dial tcp: refused")))
}

func TestUserService_ListAndCounts(t *testing.T) {
	s, srv := newService(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	srv.Seed(models.UsersCollection, pbtest.Record{"email": "old@example.com", "created": "2024-01-01 00:00:00.000Z"})
	srv.Seed(models.UsersCollection, pbtest.Record{"email": "new1@example.com", "created": "2024-06-20 00:00:00.000Z"})
	srv.Seed(models.UsersCollection, pbtest.Record{"email": "new2@example.com", "created": "2024-06-29 00:00:00.000Z"})

	all, err := s.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new2@example.com", all[0].Email)
	assert.Equal(t, "N/A", all[0].FullName())

	total, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	fresh, err := s.CountNew(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fresh)
}

func TestUserService_Update(t *testing.T) {
	s, srv := newService(t)
	id := srv.Seed(models.UsersCollection, pbtest.Record{"email": "ada@example.com", "role": "user", "avatar": "a.png"})
	ctx := context.Background()

	_, err := s.Update(ctx, id, Input{Email: " "}, nil)
	assert.ErrorIs(t, err, ErrEmailRequired)
	assert.Equal(t, "Email is required.", UpdateErrorMessage(err))

	_, err = s.Update(ctx, id, Input{Email: "ada@example.com", Credit: "lots"}, nil)
	assert.Error(t, err)

	updated, err := s.Update(ctx, id, Input{
		Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com",
		PhoneNo: "555", Role: "admin", Credit: "12.5", Address: "London",
		Verified: true, VerifyPhone: true,
	}, &Avatar{Name: "new.png", Reader: strings.NewReader("IMG")})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.FullName())
	assert.True(t, updated.IsAdmin())
	assert.InDelta(t, 12.5, updated.Credit, 0.001)
	assert.True(t, updated.Verified)
	assert.True(t, updated.VerifyPhone)
	assert.NotEqual(t, "a.png", updated.Avatar)
	assert.Contains(t, s.AvatarURL(updated), "/api/files/pbc_users/"+id+"/")

	srv.Fail("PATCH", http.StatusBadRequest, "Failed to update record.", map[string]any{
		"email": map[string]any{"code": "validation_invalid_email", "message": "Must be a valid email address."},
	})
	_, err = s.Update(ctx, id, Input{Email: "bad"}, nil)
	assert.Equal(t, "Update failed: email: Must be a valid email address.", UpdateErrorMessage(err))
	srv.Clear()

	srv.Fail("PATCH", http.StatusForbidden, "", nil)
	_, err = s.Update(ctx, id, Input{Email: "ada@example.com"}, nil)
	assert.Equal(t, "Failed to update record.", UpdateErrorMessage(err))
}

func TestUserService_Delete(t *testing.T) {
	s, srv := newService(t)
	id := srv.Seed(models.UsersCollection, pbtest.Record{"email": "x@example.com"})

	require.NoError(t, s.Delete(context.Background(), id))
	assert.Empty(t, srv.Records(models.UsersCollection))
	assert.Empty(t, s.AvatarURL(&models.User{ID: id}))
}

func TestValidationErrors(t *testing.T) {
	for _, err := range []error{ErrPasswordMismatch, ErrPasswordTooShort, ErrEmailRequired} {
		msg := err.Error()
		assert.Equal(t, strings.ToLower(msg[:1]), msg[:1], msg)
		assert.False(t, strings.HasSuffix(msg, "."), msg)

		wrapped := fmt.Errorf("register: %w", err)
		display := RegisterErrorMessage(wrapped)
		assert.NotEqual(t, wrapped.Error(), display)
		assert.True(t, strings.HasSuffix(display, "."), display)
	}
}
