package web

import (
	"net/http"
	"strconv"

	"github.com/Settj76/ecom/internal/dashboard"
	"github.com/Settj76/ecom/internal/eventlog"
	"github.com/Settj76/ecom/internal/menu"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

type activityData struct {
	Logs []models.EventLog
}

// menuTrigger identifies the row a menu button belongs to.
type menuTrigger struct {
	Kind string
	ID   string
}

type menuData struct {
	Top       float64
	Left      float64
	Width     float64
	EditURL   string
	DeleteURL string
}

func (h *WebHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard", zap.Error(err))
		h.render(w, r, http.StatusBadGateway, "admin/dashboard", PageData{
			Title: "Dashboard",
			Error: "Failed to load dashboard data: " + backendMessage(err),
			Data:  &dashboard.Summary{},
		})
		return
	}
	h.render(w, r, http.StatusOK, "admin/dashboard", PageData{Title: "Dashboard", Data: summary})
}

func (h *WebHandler) Activity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.eventLogs.GetAll(r.Context(), eventlog.DefaultLimit)
	if err != nil {
		h.logger.Error("failed to load activity", zap.Error(err))
		h.render(w, r, http.StatusInternalServerError, "admin/activity", PageData{
			Title: "Activity",
			Error: "Failed to load activity.",
			Data:  &activityData{},
		})
		return
	}
	h.render(w, r, http.StatusOK, "admin/activity", PageData{Title: "Activity", Data: &activityData{Logs: logs}})
}

// ActionMenu renders a row's Edit/Delete menu into the page portal, placed
// under the trigger button. The trigger sends its bounding rect and the page
// scroll as query parameters.
func (h *WebHandler) ActionMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	var base string
	switch q.Get("kind") {
	case "product":
		base = "/admin/products/"
	case "user":
		base = "/admin/users/"
	}
	if id == "" || base == "" {
		http.Error(w, "unknown menu", http.StatusBadRequest)
		return
	}

	num := func(key string) float64 {
		f, _ := strconv.ParseFloat(q.Get(key), 64)
		return f
	}
	trigger := menu.Rect{Top: num("top"), Right: num("right"), Bottom: num("bottom"), Left: num("left")}
	scroll := menu.Scroll{X: num("scrollX"), Y: num("scrollY")}
	pos := menu.Position(trigger, scroll, menu.DefaultWidth)

	h.fragment(w, http.StatusOK, "action-menu", menuData{
		Top:       pos.Top,
		Left:      pos.Left,
		Width:     menu.DefaultWidth,
		EditURL:   base + id + "/edit",
		DeleteURL: base + id + "/delete",
	})
}

// CloseMenu empties the portal.
func (h *WebHandler) CloseMenu(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}
