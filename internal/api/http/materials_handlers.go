package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studypod/studypod/internal/content"
	"github.com/studypod/studypod/internal/study"
)

func CreateMaterialHandler(svc *study.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub study.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		m, err := svc.CreateMaterial(r.Context(), sub)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(m)
	}
}

func ListMaterialsHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := store.ListMaterials(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(ms)
	}
}

func GetMaterialHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		m, err := store.GetStudyMaterialByID(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	}
}

func UpdateMaterialHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		var upd content.MaterialUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		m, err := store.UpdateStudyMaterial(r.Context(), id, upd)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	}
}

func DeleteMaterialHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		if err := store.DeleteMaterial(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
