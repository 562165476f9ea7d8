package quiz

import (
	"context"
	"sync"

	"github.com/studypod/studypod/internal/ai"
	"github.com/studypod/studypod/internal/content"
)

// Registry owns the live sessions so HTTP handlers can address them by id.
// Finished sessions stay addressable until removed; a retake is always a
// fresh session.
type Registry struct {
	store content.Store
	gw    ai.Gateway
	cfg   Config

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store content.Store, gw ai.Gateway, cfg Config) *Registry {
	return &Registry{
		store:    store,
		gw:       gw,
		cfg:      cfg.withDefaults(),
		sessions: map[string]*Session{},
	}
}

// Create builds a session for the material, loads its questions and starts
// the countdown. The session is registered even when loading fails, so the
// caller can read the failure message from its results state.
func (r *Registry) Create(ctx context.Context, contentID string) *Session {
	s := NewSession(r.store, r.gw, r.cfg, contentID)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	if err := s.LoadQuestions(ctx); err == nil {
		s.Start()
	}
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove closes the session and forgets it.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// CloseAll tears down every live session, for shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = map[string]*Session{}
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
