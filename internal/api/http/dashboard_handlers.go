package http

import (
	"encoding/json"
	"net/http"

	"github.com/studypod/studypod/internal/config"
	"github.com/studypod/studypod/internal/content"
)

type dashboardResponse struct {
	Stats     content.DashboardStats    `json:"stats"`
	Materials []content.MaterialSummary `json:"materials"`
}

func DashboardHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := store.ListMaterials(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		qs, err := store.ListQuizzes(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(dashboardResponse{
			Stats:     content.ComputeStats(ms, qs),
			Materials: ms,
		})
	}
}

// StatusHandler reports service readiness flags. ai_configured=false is the
// signal for the UI's persistent missing-credentials banner.
func StatusHandler(cfg config.Config) http.HandlerFunc {
	type status struct {
		Mode         config.Mode `json:"mode"`
		DBDriver     string      `json:"db_driver"`
		AIConfigured bool        `json:"ai_configured"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(status{
			Mode:         cfg.Mode,
			DBDriver:     cfg.DBDriver,
			AIConfigured: cfg.AIConfigured(),
		})
	}
}
