package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Settj76/ecom/internal/auth"
	"github.com/Settj76/ecom/internal/cart"
	"github.com/Settj76/ecom/internal/carousel"
	"github.com/Settj76/ecom/internal/dashboard"
	"github.com/Settj76/ecom/internal/eventlog"
	"github.com/Settj76/ecom/internal/format"
	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/internal/product"
	"github.com/Settj76/ecom/internal/user"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

// productPlaceholder replaces product images that fail to load.
const productPlaceholder = "https://placehold.co/400x400/f3f4f6/9ca3af?text=Image+Not+Found"

//go:embed templates
var templateFS embed.FS

// Dependencies are the services the web layer renders.
type Dependencies struct {
	Products  *product.ProductService
	Users     *user.UserService
	Carts     *cart.CartService
	EventLogs *eventlog.EventLogService
	Dashboard *dashboard.DashboardService
	Sessions  *auth.Sessions
	Slides    []models.Slide
	// Health reports backend and store reachability for /healthz.
	Health func(ctx context.Context) error
	Logger *zap.Logger
}

type WebHandler struct {
	products  *product.ProductService
	users     *user.UserService
	carts     *cart.CartService
	eventLogs *eventlog.EventLogService
	dashboard *dashboard.DashboardService
	sessions  *auth.Sessions
	slides    []models.Slide
	health    func(ctx context.Context) error
	logger    *zap.Logger

	pages    map[string]*template.Template
	partials *template.Template
}

// PageData is handed to every full page template.
type PageData struct {
	Title     string
	Path      string
	Identity  *auth.Identity
	Flashes   []auth.Flash
	CartCount int
	Error     string
	Data      any
}

func NewWebHandler(deps Dependencies) (*WebHandler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	slides := deps.Slides
	if len(slides) == 0 {
		slides = carousel.DefaultSlides
	}
	h := &WebHandler{
		products:  deps.Products,
		users:     deps.Users,
		carts:     deps.Carts,
		eventLogs: deps.EventLogs,
		dashboard: deps.Dashboard,
		sessions:  deps.Sessions,
		slides:    slides,
		health:    deps.Health,
		logger:    logger,
	}
	if err := h.loadTemplates(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *WebHandler) funcMap() template.FuncMap {
	return template.FuncMap{
		"price": format.Price,
		"date": func(v any) string {
			switch t := v.(type) {
			case models.DateTime:
				return format.Date(t.Time)
			case time.Time:
				return format.Date(t)
			}
			return ""
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "Never"
			}
			return t.Local().Format("2006-01-02 15:04:05")
		},
		"excerpt": format.Excerpt,
		"safeHTML": func(s string) template.HTML {
			return template.HTML(format.SanitizeHTML(s))
		},
		"productImage": func(p models.Product) string {
			return h.products.ImageURL(&p)
		},
		"avatarURL": func(u models.User) string {
			return h.users.AvatarURL(&u)
		},
		"initial": func(s string) string {
			for _, r := range s {
				return strings.ToUpper(string(r))
			}
			return "?"
		},
		"hasPrefix": strings.HasPrefix,
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
		"autoAdvance": func() string {
			return fmt.Sprintf("%ds", int(carousel.AutoAdvance/time.Second))
		},
		"slidePlaceholder": func() string {
			return carousel.PlaceholderImage
		},
		"productPlaceholder": func() string {
			return productPlaceholder
		},
		"menuFor": func(kind, id string) menuTrigger {
			return menuTrigger{Kind: kind, ID: id}
		},
		"px": func(f float64) string {
			return fmt.Sprintf("%.0fpx", f)
		},
	}
}

// loadTemplates parses layouts and partials once, then clones that set for
// every page so each page can define its own "content" block.
func (h *WebHandler) loadTemplates() error {
	base, err := template.New("").Funcs(h.funcMap()).ParseFS(templateFS, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return fmt.Errorf("parse layouts: %w", err)
	}

	h.pages = make(map[string]*template.Template)
	for _, dir := range []string{"pages", "admin"} {
		files, err := fs.Glob(templateFS, "templates/"+dir+"/*.html")
		if err != nil {
			return fmt.Errorf("glob %s templates: %w", dir, err)
		}
		for _, file := range files {
			tmpl, err := base.Clone()
			if err != nil {
				return fmt.Errorf("clone layouts: %w", err)
			}
			if _, err := tmpl.ParseFS(templateFS, file); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			name := strings.TrimSuffix(path.Base(file), ".html")
			if dir == "admin" {
				name = "admin/" + name
			}
			h.pages[name] = tmpl
		}
	}
	h.partials = base
	return nil
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render writes a full page. Pages under admin/ use the admin layout.
func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	tmpl, ok := h.pages[name]
	if !ok {
		h.logger.Error("unknown page template", zap.String("page", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.Path = r.URL.Path
	data.Identity = auth.FromContext(r.Context())
	data.Flashes = append(h.sessions.Flashes(w, r), data.Flashes...)

	layout := "base"
	if strings.HasPrefix(name, "admin/") {
		layout = "admin"
	} else if count, err := h.carts.Count(r.Context(), h.sessions.PeekCartID(r)); err == nil {
		data.CartCount = count
	} else {
		h.logger.Warn("failed to count cart", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layout, data); err != nil {
		h.logger.Error("template execution failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fragment writes a partial for an HTMX swap, followed by out-of-band toasts.
func (h *WebHandler) fragment(w http.ResponseWriter, status int, name string, data any, toasts ...auth.Flash) {
	var buf bytes.Buffer
	if name != "" {
		if err := h.partials.ExecuteTemplate(&buf, name, data); err != nil {
			h.logger.Error("partial execution failed", zap.String("partial", name), zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	if len(toasts) > 0 {
		if err := h.partials.ExecuteTemplate(&buf, "toasts-oob", toasts); err != nil {
			h.logger.Error("partial execution failed", zap.String("partial", "toasts-oob"), zap.Error(err))
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// toastOnly answers an HTMX request with a toast and leaves the target as is.
// htmx drops error responses entirely, so the status stays 200.
func (h *WebHandler) toastOnly(w http.ResponseWriter, kind, message string) {
	w.Header().Set("HX-Reswap", "none")
	h.fragment(w, http.StatusOK, "", nil, auth.Flash{Kind: kind, Message: message})
}

// redirect sends the browser elsewhere after queueing a toast.
func (h *WebHandler) redirect(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	if message != "" {
		if err := h.sessions.AddFlash(w, r, kind, message); err != nil {
			h.logger.Error("failed to queue flash", zap.Error(err))
		}
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// backendMessage extracts the text shown to the user for a failed call.
func backendMessage(err error) string {
	if re, ok := pocketbase.AsResponseError(err); ok && re.Message != "" {
		return re.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out."
	}
	return err.Error()
}

func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		h.toastOnly(w, auth.FlashError, "Not found.")
		return
	}
	h.render(w, r, http.StatusNotFound, "not_found", PageData{Title: "Page Not Found"})
}

func (h *WebHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	h.render(w, r, http.StatusForbidden, "forbidden", PageData{Title: "Access Denied"})
}

// Healthz reports whether the backend and local store answer.
func (h *WebHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
