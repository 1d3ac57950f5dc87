package eventlog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type EventLogHandlers struct {
	Service *EventLogService
}

func NewEventLogHandlers(service *EventLogService) *EventLogHandlers {
	return &EventLogHandlers{Service: service}
}

// FindLatest serves the newest entries as JSON; ?limit= overrides the count.
func (h *EventLogHandlers) FindLatest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	eventLogs, err := h.Service.GetAll(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eventLogs)
}

// FindAllByRecordID serves the entries of the {id} record as JSON.
func (h *EventLogHandlers) FindAllByRecordID(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["id"]
	eventLogs, err := h.Service.GetAllByRecordID(r.Context(), recordID, 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eventLogs)
}
