package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Settj76/ecom/internal/auth"
	"github.com/Settj76/ecom/internal/user"
	"github.com/Settj76/ecom/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const loadUsersError = "Failed to load users. You may need admin privileges."

type userListData struct {
	Users []models.User
}

type userFormData struct {
	ID    string
	Input user.Input
	User  *models.User
	Roles []models.Role
}

func (h *WebHandler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context())
	if err != nil {
		h.logger.Error("failed to load users", zap.Error(err))
		h.render(w, r, http.StatusBadGateway, "admin/users", PageData{Title: "Users", Error: loadUsersError, Data: &userListData{}})
		return
	}
	h.render(w, r, http.StatusOK, "admin/users", PageData{Title: "Users", Data: &userListData{Users: users}})
}

func (h *WebHandler) EditUserForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to load user for edit", zap.String("id", id), zap.Error(err))
		h.redirect(w, r, "/admin/users", auth.FlashError, "Could not load user data.")
		return
	}
	h.render(w, r, http.StatusOK, "admin/user_form", PageData{
		Title: "Edit User",
		Data: &userFormData{
			ID: u.ID,
			Input: user.Input{
				Firstname:   u.Firstname,
				Lastname:    u.Lastname,
				Email:       u.Email,
				PhoneNo:     u.PhoneNo,
				Role:        string(models.ParseRole(string(u.Role))),
				Credit:      strconv.FormatFloat(u.Credit, 'f', -1, 64),
				Address:     u.Address,
				Verified:    u.Verified,
				VerifyPhone: u.VerifyPhone,
			},
			User:  u,
			Roles: []models.Role{models.RoleUser, models.RoleAdmin},
		},
	})
}

func (h *WebHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	defer closeUpload(r)

	in := user.Input{
		Firstname:   r.FormValue("firstname"),
		Lastname:    r.FormValue("lastname"),
		Email:       r.FormValue("email"),
		PhoneNo:     r.FormValue("phone_no"),
		Role:        r.FormValue("role"),
		Credit:      r.FormValue("credit"),
		Address:     r.FormValue("address"),
		Verified:    checked(r, "verified"),
		VerifyPhone: checked(r, "verify_phone"),
	}

	var avatar *user.Avatar
	if name, file, ok := formFile(r, "avatar"); ok {
		defer closeReader(file)
		avatar = &user.Avatar{Name: name, Reader: file}
	}

	updated, err := h.users.Update(r.Context(), id, in, avatar)
	if err != nil {
		h.logger.Error("failed to update user", zap.String("id", id), zap.Error(err))
		current, _ := h.users.GetByID(r.Context(), id)
		h.render(w, r, http.StatusUnprocessableEntity, "admin/user_form", PageData{
			Title:   "Edit User",
			Flashes: []auth.Flash{{Kind: auth.FlashError, Message: user.UpdateErrorMessage(err)}},
			Data: &userFormData{
				ID:    id,
				Input: in,
				User:  current,
				Roles: []models.Role{models.RoleUser, models.RoleAdmin},
			},
		})
		return
	}

	actor := auth.FromContext(r.Context())
	h.eventLogs.Record(r.Context(), models.UserUpdated, actor.UserID, updated.ID, updated.Email)
	h.redirect(w, r, "/admin/users", auth.FlashSuccess, "User updated successfully!")
}

func (h *WebHandler) ConfirmDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.toastOnly(w, auth.FlashError, "Could not load user data.")
		return
	}
	h.fragment(w, http.StatusOK, "confirm-dialog", confirmData{
		Message:   fmt.Sprintf("Delete user \"%s\"?", u.Email),
		Action:    "/admin/users/" + u.ID,
		Target:    "#user-" + u.ID,
		Indicator: "Deleting user...",
		Fallback:  "/admin/users/" + u.ID + "/delete",
	})
}

func (h *WebHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()
	actor := auth.FromContext(ctx)

	if actor.UserID == id {
		h.deleteResult(w, r, "/admin/users", auth.FlashError, "You cannot delete your own account.")
		return
	}

	email := id
	if u, err := h.users.GetByID(ctx, id); err == nil {
		email = u.Email
	}

	if err := h.users.Delete(ctx, id); err != nil {
		h.logger.Error("failed to delete user", zap.String("id", id), zap.Error(err))
		h.deleteResult(w, r, "/admin/users", auth.FlashError, "Failed to delete user: "+backendMessage(err))
		return
	}
	h.eventLogs.Record(ctx, models.UserDeleted, actor.UserID, id, email)
	h.deleteResult(w, r, "/admin/users", auth.FlashSuccess, "User deleted successfully!")
}

func checked(r *http.Request, field string) bool {
	switch r.FormValue(field) {
	case "on", "true", "1":
		return true
	}
	return false
}
