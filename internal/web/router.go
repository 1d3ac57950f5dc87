package web

import (
	"net/http"

	"github.com/Settj76/ecom/internal/eventlog"
	"github.com/Settj76/ecom/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes registers every page. Admin routes sit behind mw.RequireAdmin.
func (h *WebHandler) SetupRoutes(mw *middleware.Middleware) *mux.Router {
	mw.Forbidden = http.HandlerFunc(h.Forbidden)
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Healthz).Methods("GET")

	// Storefront
	r.HandleFunc("/", h.Home).Methods("GET")
	r.HandleFunc("/carousel", h.Carousel).Methods("GET")
	r.HandleFunc("/products", h.Products).Methods("GET")
	r.HandleFunc("/product/{slug}", h.Product).Methods("GET")
	r.HandleFunc("/cart", h.Cart).Methods("GET")
	r.HandleFunc("/cart", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/form/{id}", h.AddToCartForm).Methods("GET")
	r.HandleFunc("/cart/{id}/remove", h.RemoveFromCart).Methods("POST")

	// Auth
	r.HandleFunc("/login", h.LoginForm).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/register", h.RegisterForm).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")

	// Admin console
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(mw.RequireAdmin)
	admin.Handle("", http.RedirectHandler("/admin/dashboard", http.StatusSeeOther)).Methods("GET")
	admin.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	admin.HandleFunc("/menu", h.ActionMenu).Methods("GET")
	admin.HandleFunc("/menu/close", h.CloseMenu).Methods("GET")
	admin.HandleFunc("/activity", h.Activity).Methods("GET")

	admin.HandleFunc("/products", h.AdminProducts).Methods("GET")
	admin.HandleFunc("/products", h.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/new", h.NewProductForm).Methods("GET")
	admin.HandleFunc("/products/{id}/edit", h.EditProductForm).Methods("GET")
	admin.HandleFunc("/products/{id}", h.UpdateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}/delete", h.ConfirmDeleteProduct).Methods("GET")
	admin.HandleFunc("/products/{id}/delete", h.DeleteProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")

	admin.HandleFunc("/users", h.AdminUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/edit", h.EditUserForm).Methods("GET")
	admin.HandleFunc("/users/{id}", h.UpdateUser).Methods("POST")
	admin.HandleFunc("/users/{id}/delete", h.ConfirmDeleteUser).Methods("GET")
	admin.HandleFunc("/users/{id}/delete", h.DeleteUser).Methods("POST")
	admin.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")

	// JSON activity feed
	logs := eventlog.NewEventLogHandlers(h.eventLogs)
	admin.HandleFunc("/api/activity", logs.FindLatest).Methods("GET")
	admin.HandleFunc("/api/activity/{id}", logs.FindAllByRecordID).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return r
}

// Handler wraps the router with the middleware every request passes through.
// Identify runs outside the router so the 404 page still sees the session user.
func (h *WebHandler) Handler(mw *middleware.Middleware) http.Handler {
	var handler http.Handler = h.SetupRoutes(mw)
	handler = mw.Identify(handler)
	handler = middleware.LoggingMiddleware(h.logger)(handler)
	handler = middleware.Recovery(h.logger)(handler)
	return handler
}
