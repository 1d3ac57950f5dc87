package web

import (
	"net/http"
	"strings"

	"github.com/Settj76/ecom/internal/auth"
	"github.com/Settj76/ecom/internal/user"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

const registeredMessage = "Registration successful! Please check your email to verify your account before logging in."

type credentialsData struct {
	Email string
}

func (h *WebHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", PageData{Title: "Login", Data: &credentialsData{}})
}

func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	result, err := h.users.Login(r.Context(), email, password)
	if err != nil {
		h.render(w, r, http.StatusUnauthorized, "login", PageData{
			Title: "Login",
			Error: user.LoginErrorMessage(err),
			Data:  &credentialsData{Email: email},
		})
		return
	}

	if err := h.sessions.SignIn(w, r, result.Token, &result.Record); err != nil {
		h.logger.Error("failed to save session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	to := "/"
	if result.Record.Role == models.RoleAdmin {
		to = "/admin/dashboard"
	}
	h.redirect(w, r, to, "", "")
}

func (h *WebHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", PageData{Title: "Register", Data: &credentialsData{}})
}

func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))

	created, err := h.users.Register(r.Context(), email, r.PostForm.Get("password"), r.PostForm.Get("passwordConfirm"))
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, "register", PageData{
			Title: "Register",
			Error: user.RegisterErrorMessage(err),
			Data:  &credentialsData{Email: email},
		})
		return
	}

	h.eventLogs.Record(r.Context(), models.UserRegistered, created.ID, created.ID, created.Email)
	h.redirect(w, r, "/login", auth.FlashSuccess, registeredMessage)
}

func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cartID := h.sessions.PeekCartID(r); cartID != "" {
		if err := h.carts.Clear(r.Context(), cartID); err != nil {
			h.logger.Warn("failed to clear cart", zap.String("cart_id", cartID), zap.Error(err))
		}
	}
	if err := h.sessions.SignOut(w, r); err != nil {
		h.logger.Error("failed to clear session", zap.Error(err))
	}
	h.redirect(w, r, "/", auth.FlashInfo, "You have been logged out.")
}
