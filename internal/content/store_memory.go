package content

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	materials map[string]StudyMaterial
	quizzes   map[string][]Quiz // contentID -> insertion-ordered history
	order     []string          // material insertion order
}

// NewInMemoryStore backs the store with process memory. Used by tests and
// offline dev; the gateway runs on NewSQLStore.
func NewInMemoryStore() Store {
	return &memoryStore{
		materials: map[string]StudyMaterial{},
		quizzes:   map[string][]Quiz{},
	}
}

func (s *memoryStore) AddContent(_ context.Context, m StudyMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.materials[m.ID]; ok {
		return ErrDuplicateID
	}
	s.materials[m.ID] = cloneMaterial(m)
	s.order = append(s.order, m.ID)
	return nil
}

func (s *memoryStore) GetStudyMaterialByID(_ context.Context, id string) (StudyMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[id]
	if !ok {
		return StudyMaterial{}, ErrNotFound
	}
	return cloneMaterial(m), nil
}

func (s *memoryStore) UpdateStudyMaterial(_ context.Context, id string, upd MaterialUpdate) (StudyMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		return StudyMaterial{}, ErrNotFound
	}
	applyUpdate(&m, upd)
	s.materials[id] = cloneMaterial(m)
	return cloneMaterial(m), nil
}

func (s *memoryStore) AppendChatMessage(_ context.Context, id string, msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		return ErrNotFound
	}
	m.ChatHistory = append(m.ChatHistory, msg)
	s.materials[id] = m
	return nil
}

func (s *memoryStore) DeleteMaterial(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.materials[id]; !ok {
		return ErrNotFound
	}
	delete(s.materials, id)
	delete(s.quizzes, id)
	for i, mid := range s.order {
		if mid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryStore) ListMaterials(_ context.Context) ([]MaterialSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MaterialSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, summaryOf(s.materials[id]))
	}
	// newest first, stable within a second by insertion order
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt > out[j].UploadedAt })
	return out, nil
}

func (s *memoryStore) AddQuizResult(_ context.Context, contentID string, q Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.materials[contentID]; !ok {
		return ErrNotFound
	}
	s.quizzes[contentID] = append(s.quizzes[contentID], cloneQuiz(q))
	return nil
}

func (s *memoryStore) GetQuizzesForContent(_ context.Context, contentID string) ([]Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.quizzes[contentID]
	out := make([]Quiz, 0, len(hist))
	for _, q := range hist {
		out = append(out, cloneQuiz(q))
	}
	return out, nil
}

func (s *memoryStore) ListQuizzes(_ context.Context) ([]Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Quiz
	for _, id := range s.order {
		for _, q := range s.quizzes[id] {
			out = append(out, cloneQuiz(q))
		}
	}
	return out, nil
}

// Clones keep callers from mutating stored state behind the store's back.

func cloneMaterial(m StudyMaterial) StudyMaterial {
	c := m
	if m.Notes != nil {
		c.Notes = make(map[string]string, len(m.Notes))
		for k, v := range m.Notes {
			c.Notes[k] = v
		}
	}
	if m.ChatHistory != nil {
		c.ChatHistory = make([]ChatMessage, len(m.ChatHistory))
		copy(c.ChatHistory, m.ChatHistory)
	}
	return c
}

func cloneQuiz(q Quiz) Quiz {
	c := q
	if q.Questions != nil {
		c.Questions = make([]QuizQuestion, len(q.Questions))
		copy(c.Questions, q.Questions)
	}
	return c
}
