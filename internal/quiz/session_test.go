package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/studypod/studypod/internal/ai"
	"github.com/studypod/studypod/internal/content"
)

/* ---------------- fakes ---------------- */

type fakeGateway struct {
	mu        sync.Mutex
	questions []content.QuizQuestion
	qErr      error
	feedback  string
	fbErr     error
	fbCalls   int
	fbGate    chan struct{} // when set, feedback calls block until it closes
}

func (f *fakeGateway) GenerateQuizQuestions(context.Context, string, int) ([]content.QuizQuestion, error) {
	if f.qErr != nil {
		return nil, f.qErr
	}
	out := make([]content.QuizQuestion, len(f.questions))
	copy(out, f.questions)
	return out, nil
}

func (f *fakeGateway) GenerateFeedback(context.Context, int, int, string) (string, error) {
	if f.fbGate != nil {
		<-f.fbGate
	}
	f.mu.Lock()
	f.fbCalls++
	f.mu.Unlock()
	return f.feedback, f.fbErr
}

func (f *fakeGateway) SuggestMetadata(context.Context, string) (ai.Metadata, error) {
	return ai.Metadata{}, nil
}

func (f *fakeGateway) Chat(context.Context, []content.ChatMessage, string, string) (content.ChatMessage, error) {
	return content.ChatMessage{}, nil
}

func (f *fakeGateway) Summarize(context.Context, string) (string, error)             { return "", nil }
func (f *fakeGateway) Explain(context.Context, string) (string, error)               { return "", nil }
func (f *fakeGateway) GenerateNotes(context.Context, string, string) (string, error) { return "", nil }
func (f *fakeGateway) ExtractText(_ context.Context, _ content.SourceType, ref string) (string, error) {
	return ref, nil
}

// countingStore counts persisted quizzes on top of the in-memory store.
type countingStore struct {
	content.Store
	mu    sync.Mutex
	added int
}

func (c *countingStore) AddQuizResult(ctx context.Context, contentID string, q content.Quiz) error {
	c.mu.Lock()
	c.added++
	c.mu.Unlock()
	return c.Store.AddQuizResult(ctx, contentID, q)
}

func newFixture(t *testing.T, gw *fakeGateway, cfg Config) (*countingStore, *Session) {
	t.Helper()
	store := &countingStore{Store: content.NewInMemoryStore()}
	err := store.AddContent(context.Background(), content.StudyMaterial{
		ID:            "m1",
		ExtractedText: "The capital of France is Paris.",
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store, NewSession(store, gw, cfg, "m1")
}

func defaultQuestions() []content.QuizQuestion {
	return []content.QuizQuestion{
		{QuestionText: "Capital of France?", Type: "short_answer", CorrectAnswer: "Paris"},
		{QuestionText: "2+2?", Type: "mcq", Options: []string{"3", "4"}, CorrectAnswer: "4"},
	}
}

/* ---------------- loading ---------------- */

func TestLoadQuestionsAssignsIDsAndStartsTaking(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	_, s := newFixture(t, gw, Config{QuestionCount: 2, DurationSec: 60})

	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.State() != StateTaking {
		t.Fatalf("state = %v, want taking", s.State())
	}
	v := s.Snapshot()
	if v.Remaining != 60 {
		t.Errorf("remaining = %d, want 60", v.Remaining)
	}
	seen := map[string]bool{}
	for _, q := range v.Questions {
		if q.ID == "" {
			t.Errorf("question without id: %+v", q)
		}
		if seen[q.ID] {
			t.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if q.CorrectAnswer != "" {
			t.Errorf("correct answer leaked while taking: %+v", q)
		}
	}
}

func TestLoadQuestionsFailsToResultsOnMissingText(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store := &countingStore{Store: content.NewInMemoryStore()}
	_ = store.AddContent(context.Background(), content.StudyMaterial{ID: "empty"})
	s := NewSession(store, gw, Config{}, "empty")

	if err := s.LoadQuestions(context.Background()); !errors.Is(err, ErrNoSourceText) {
		t.Fatalf("want ErrNoSourceText, got %v", err)
	}
	v := s.Snapshot()
	if v.State != StateResults || v.Message == "" {
		t.Errorf("want results with message, got %+v", v)
	}
}

func TestLoadQuestionsFailsToResultsOnGatewayError(t *testing.T) {
	gw := &fakeGateway{qErr: &ai.GatewayError{Op: "generate quiz questions", Err: errors.New("quota")}}
	_, s := newFixture(t, gw, Config{})
	if err := s.LoadQuestions(context.Background()); err == nil {
		t.Fatal("want error")
	}
	if s.State() != StateResults {
		t.Errorf("state = %v, want results", s.State())
	}
}

func TestLoadQuestionsFailsToResultsOnEmptySet(t *testing.T) {
	gw := &fakeGateway{questions: nil}
	_, s := newFixture(t, gw, Config{})
	if err := s.LoadQuestions(context.Background()); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("want ErrNoQuestions, got %v", err)
	}
	if s.State() != StateResults {
		t.Errorf("state = %v, want results", s.State())
	}
}

/* ---------------- answering and grading ---------------- */

func TestAnswerLastWriteWins(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	qid := s.Snapshot().Questions[0].ID

	s.Answer(qid, "London")
	s.Answer(qid, "  paris ") // overwrite; whitespace/case must not matter
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	hist, _ := store.GetQuizzesForContent(context.Background(), "m1")
	if len(hist) != 1 {
		t.Fatalf("quiz records = %d, want 1", len(hist))
	}
	q0 := hist[0].Questions[0]
	if q0.UserAnswer != "  paris " || !q0.IsCorrect {
		t.Errorf("graded question = %+v, want correct with last answer", q0)
	}
	if hist[0].Score != 1 {
		t.Errorf("score = %d, want 1", hist[0].Score)
	}
}

func TestGradingPunctuationIsSignificant(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	qid := s.Snapshot().Questions[0].ID
	s.Answer(qid, "paris,")
	_ = s.Submit(context.Background())

	hist, _ := store.GetQuizzesForContent(context.Background(), "m1")
	if hist[0].Questions[0].IsCorrect {
		t.Error(`"paris," graded correct, want incorrect`)
	}
}

/* ---------------- submission ---------------- */

func TestSubmitIsIdempotent(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Simulates timer expiry racing a manual click.
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	store.mu.Lock()
	added := store.added
	store.mu.Unlock()
	if added != 1 {
		t.Errorf("persisted quizzes = %d, want exactly 1", added)
	}
	if s.State() != StateResults {
		t.Errorf("state = %v, want results", s.State())
	}
}

func TestSubmitConcurrentCallersPersistOnce(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Submit(context.Background())
		}()
	}
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.added != 1 {
		t.Errorf("persisted quizzes = %d, want exactly 1", store.added)
	}
}

func TestTimerExpirySubmitsUnanswered(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store, s := newFixture(t, gw, Config{DurationSec: 3})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Never call Start; drive the countdown by hand.
	for i := 0; i < 3; i++ {
		if s.State() != StateTaking {
			t.Fatalf("left taking after %d ticks", i)
		}
		s.tick()
	}
	if s.State() != StateResults {
		t.Fatalf("state after expiry = %v, want results", s.State())
	}

	hist, _ := store.GetQuizzesForContent(context.Background(), "m1")
	if len(hist) != 1 {
		t.Fatalf("quiz records = %d, want 1", len(hist))
	}
	q := hist[0]
	if q.Score != 0 {
		t.Errorf("score = %d, want 0", q.Score)
	}
	if q.DurationSeconds != 3 {
		t.Errorf("duration = %d, want 3", q.DurationSeconds)
	}
	for _, gq := range q.Questions {
		if gq.IsCorrect || gq.UserAnswer != "" {
			t.Errorf("unanswered question graded %+v", gq)
		}
	}

	// A stray late tick must be a no-op.
	s.tick()
	store.mu.Lock()
	added := store.added
	store.mu.Unlock()
	if added != 1 {
		t.Errorf("late tick persisted another quiz (%d)", added)
	}
}

func TestSubmitRecordsElapsedDuration(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store, s := newFixture(t, gw, Config{DurationSec: 10})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.tick()
	s.tick()
	s.tick()
	_ = s.Submit(context.Background())

	hist, _ := store.GetQuizzesForContent(context.Background(), "m1")
	if hist[0].DurationSeconds != 3 {
		t.Errorf("duration = %d, want 3", hist[0].DurationSeconds)
	}
}

/* ---------------- feedback ---------------- */

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestFeedbackArrivesAfterResults(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions(), feedback: "Solid effort."}
	_, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = s.Submit(context.Background())

	waitFor(t, func() bool { return s.Snapshot().Feedback == "Solid effort." })
	if s.State() != StateResults {
		t.Errorf("state = %v", s.State())
	}
}

func TestFeedbackFailureFallsBackAndKeepsScore(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions(), fbErr: errors.New("downstream down")}
	store, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	qid := s.Snapshot().Questions[0].ID
	s.Answer(qid, "Paris")
	_ = s.Submit(context.Background())

	waitFor(t, func() bool { return s.Snapshot().Feedback == ai.FallbackFeedback })

	hist, _ := store.GetQuizzesForContent(context.Background(), "m1")
	if hist[0].Score != 1 {
		t.Errorf("feedback failure changed the committed score: %d", hist[0].Score)
	}
}

func TestLateFeedbackIgnoredAfterClose(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{questions: defaultQuestions(), feedback: "late text", fbGate: gate}
	_, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = s.Submit(context.Background())
	s.Close() // teardown while the feedback request is still in flight
	close(gate)

	waitFor(t, func() bool {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		return gw.fbCalls >= 1
	})
	time.Sleep(50 * time.Millisecond) // let the completion run into the guard
	if fb := s.Snapshot().Feedback; fb != "" {
		t.Errorf("feedback applied after teardown: %q", fb)
	}
}

func TestFeedbackForDifferentQuizDropped(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	_, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = s.Submit(context.Background())

	s.applyFeedback("some-other-quiz-id", "stale")
	if fb := s.Snapshot().Feedback; fb == "stale" {
		t.Error("feedback for a different attempt was applied")
	}
}

/* ---------------- teardown ---------------- */

func TestCloseIsIdempotentAndCancelsTimer(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	_, s := newFixture(t, gw, Config{DurationSec: 60})
	if err := s.LoadQuestions(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Close()
	s.Close() // must not panic on a second close

	if s.State() != StateResults {
		t.Errorf("state after close = %v", s.State())
	}
	// The ticker goroutine observes stop and exits; a manual tick after
	// close is a no-op.
	s.tick()
}

func TestRegistryLifecycle(t *testing.T) {
	gw := &fakeGateway{questions: defaultQuestions()}
	store := &countingStore{Store: content.NewInMemoryStore()}
	_ = store.AddContent(context.Background(), content.StudyMaterial{ID: "m1", ExtractedText: "text"})
	reg := NewRegistry(store, gw, Config{DurationSec: 60})

	s := reg.Create(context.Background(), "m1")
	if s.State() != StateTaking {
		t.Fatalf("created session state = %v", s.State())
	}
	got, err := reg.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get(%s) = %v, %v", s.ID, got, err)
	}
	if err := reg.Remove(s.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := reg.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("want ErrSessionNotFound, got %v", err)
	}
	if err := reg.Remove(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second remove: %v", err)
	}
}

func TestRegistryCreateRegistersFailedLoads(t *testing.T) {
	gw := &fakeGateway{qErr: errors.New("boom")}
	store := &countingStore{Store: content.NewInMemoryStore()}
	_ = store.AddContent(context.Background(), content.StudyMaterial{ID: "m1", ExtractedText: "text"})
	reg := NewRegistry(store, gw, Config{})

	s := reg.Create(context.Background(), "m1")
	if s.State() != StateResults {
		t.Fatalf("state = %v, want results", s.State())
	}
	if _, err := reg.Get(s.ID); err != nil {
		t.Errorf("failed session not addressable: %v", err)
	}
}
