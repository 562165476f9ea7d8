package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studypod/studypod/internal/study"
)

// POST /materials/{materialID}/artifacts/{kind}
// kind: summary | explanation | notes  (notes takes {"level":"Short|Medium|Detailed"})
func GenerateArtifactHandler(svc *study.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		kind := chi.URLParam(r, "kind")
		var req struct {
			Level string `json:"level"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		m, err := svc.GenerateArtifact(r.Context(), id, kind, req.Level)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	}
}

// POST /materials/{materialID}/chat  {"question": "..."}
func ChatHandler(svc *study.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		reply, err := svc.Chat(r.Context(), id, req.Question)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(reply)
	}
}
