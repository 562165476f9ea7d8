package http

import (
	"errors"
	"net/http"

	"github.com/studypod/studypod/internal/ai"
	"github.com/studypod/studypod/internal/content"
	"github.com/studypod/studypod/internal/quiz"
	"github.com/studypod/studypod/internal/study"
)

// writeErr maps domain errors onto status codes. Gateway failures come
// back as 502 so the UI can show a dismissible retry message; everything
// must leave the client in a navigable state.
func writeErr(w http.ResponseWriter, err error) {
	var gw *ai.GatewayError
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, quiz.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, content.ErrDuplicateID):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, study.ErrEmptySource), errors.Is(err, study.ErrUnknownArtifact):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &gw):
		http.Error(w, gw.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
