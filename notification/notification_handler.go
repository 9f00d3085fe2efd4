package notification

import (
	"encoding/json"
	"log"
	"net/http"
)

// Handler exposes the in-memory activity feed over HTTP.
type Handler struct {
	manager *Manager
}

// NewHandler creates a handler backed by the given manager.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes registers the activity routes with the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/notifications           - recent trade activity
	// GET /api/notifications?symbol=X  - activity for one symbol
	mux.HandleFunc("/api/notifications", h.handleActivity)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var activities []Activity
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		activities = h.manager.RecentBySymbol(symbol)
	} else {
		activities = h.manager.Recent()
	}
	if activities == nil {
		activities = []Activity{}
	}

	if err := json.NewEncoder(w).Encode(activities); err != nil {
		log.Printf("[ERROR] encoding activities: %v", err)
	}
}
