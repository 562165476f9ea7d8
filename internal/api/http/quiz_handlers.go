package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studypod/studypod/internal/content"
	"github.com/studypod/studypod/internal/quiz"
)

// POST /quiz/sessions  {"content_id": "..."}
// Always returns a session snapshot: a failed load shows up as a results
// state with a message, not as an HTTP error.
func CreateQuizSessionHandler(reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ContentID string `json:"content_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ContentID == "" {
			http.Error(w, "content_id required", http.StatusBadRequest)
			return
		}
		s := reg.Create(r.Context(), req.ContentID)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

func GetQuizSessionHandler(reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := reg.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// POST /quiz/sessions/{sessionID}/answers  {"question_id": "...", "answer": "..."}
func AnswerHandler(reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := reg.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		var req struct {
			QuestionID string `json:"question_id"`
			Answer     string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		s.Answer(req.QuestionID, req.Answer)
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

func SubmitQuizHandler(reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := reg.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		// Submit failures (persistence) are reflected in the snapshot
		// message; the graded result is still returned.
		_ = s.Submit(r.Context())
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

func CloseQuizSessionHandler(reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Remove(chi.URLParam(r, "sessionID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /materials/{materialID}/quizzes
func ListQuizzesHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.GetQuizzesForContent(r.Context(), chi.URLParam(r, "materialID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(qs)
	}
}
