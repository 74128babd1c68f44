package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	Records     *int   `json:"records,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
	TopicsCount *int   `json:"topics,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store, the replica and the taxonomy.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := d.MemoryIndex.Count()
		lastReload := d.MemoryIndex.LastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}
		topics := len(d.Bookmarks.Topics())

		components := map[string]componentStatus{
			"store": checkStore(r.Context(), d),
			"replica": {
				OK:         !lastReload.IsZero(),
				Records:    &records,
				LastReload: lastReloadStr,
			},
			"taxonomy": {
				OK:          topics > 0,
				TopicsCount: &topics,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	// Without the store nothing can be saved
	if store, exists := components["store"]; exists && !store.OK {
		return "critical"
	}
	// Store fine but the replica never loaded: reads are empty until the next sync
	if replica, exists := components["replica"]; exists && !replica.OK {
		return "degraded"
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	if err := d.Collection.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreMode,
			Impact: "saves-disabled",
			Error:  err.Error(),
		}
	}
	return componentStatus{
		OK:     true,
		Mode:   d.StoreMode,
		Impact: "none",
	}
}
