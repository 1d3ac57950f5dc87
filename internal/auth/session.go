package auth

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/Settj76/ecom/models"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding the signed session.
const SessionName = "ecom-session"

const (
	keyToken  = "token"
	keyUserID = "user_id"
	keyEmail  = "email"
	keyName   = "name"
	keyRole   = "role"
	keyCartID = "cart_id"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Identity is the signed-in user as remembered by the session.
type Identity struct {
	Token  string
	UserID string
	Email  string
	Name   string
	Role   models.Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// Sessions wraps the cookie store with typed accessors.
type Sessions struct {
	store sessions.Store
	now   func() time.Time
}

// NewSessions creates a cookie-backed session store signed with secret.
func NewSessions(secret []byte, secure bool) *Sessions {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, now: time.Now}
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	// A cookie that fails to decode yields a fresh session.
	session, _ := s.store.Get(r, SessionName)
	return session
}

// Identity returns the signed-in user, or nil when there is none or the
// backend token has expired.
func (s *Sessions) Identity(r *http.Request) *Identity {
	session := s.session(r)
	token, _ := session.Values[keyToken].(string)
	if !TokenValid(token, s.now()) {
		return nil
	}
	id := &Identity{Token: token}
	id.UserID, _ = session.Values[keyUserID].(string)
	id.Email, _ = session.Values[keyEmail].(string)
	id.Name, _ = session.Values[keyName].(string)
	role, _ := session.Values[keyRole].(string)
	id.Role = models.ParseRole(role)
	return id
}

// SignIn remembers the authenticated user.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, token string, user *models.User) error {
	session := s.session(r)
	session.Values[keyToken] = token
	session.Values[keyUserID] = user.ID
	session.Values[keyEmail] = user.Email
	session.Values[keyName] = user.DisplayName()
	session.Values[keyRole] = string(user.Role)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SignOut clears the whole session, cart included.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	session := s.session(r)
	session.Values = make(map[interface{}]interface{})
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// AddFlash queues a toast for the next page.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	session := s.session(r)
	session.AddFlash(Flash{Kind: kind, Message: message})
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Flashes pops the queued toasts.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session := s.session(r)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

// CartID returns the visitor's cart id, allocating one on first use.
func (s *Sessions) CartID(w http.ResponseWriter, r *http.Request) (string, error) {
	session := s.session(r)
	if id, ok := session.Values[keyCartID].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.New().String()
	session.Values[keyCartID] = id
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}

// PeekCartID returns the cart id without allocating one.
func (s *Sessions) PeekCartID(r *http.Request) string {
	id, _ := s.session(r).Values[keyCartID].(string)
	return id
}
