// Package quiz runs one attempt at a generated question set: load the
// questions, count down, capture answers, grade exactly once, persist, then
// fetch best-effort feedback.
package quiz

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studypod/studypod/internal/ai"
	"github.com/studypod/studypod/internal/content"
	"github.com/studypod/studypod/internal/grading"
)

type State string

const (
	StateLoading    State = "loading"
	StateTaking     State = "taking"
	StateSubmitting State = "submitting"
	StateResults    State = "results"
)

type Config struct {
	QuestionCount int
	DurationSec   int
}

const (
	DefaultQuestionCount = 5
	DefaultDurationSec   = 300
)

func (c Config) withDefaults() Config {
	if c.QuestionCount <= 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	if c.DurationSec <= 0 {
		c.DurationSec = DefaultDurationSec
	}
	return c
}

// Session is the state machine for a single attempt:
//
//	loading -> taking -> submitting -> results
//	loading -> results              (fatal load error)
//
// results is terminal; a retake is a new Session. All methods are safe for
// concurrent use; the ticker and a manual submit may race and the status
// guard in Submit keeps grading exactly-once.
type Session struct {
	ID        string
	ContentID string

	store content.Store
	gw    ai.Gateway
	cfg   Config

	mu        sync.Mutex
	state     State
	questions []content.QuizQuestion
	answers   map[string]string
	remaining int
	message   string // user-facing explanation when loading fails
	feedback  string
	result    *content.Quiz
	closed    bool

	stopOnce sync.Once
	stop     chan struct{}
}

func NewSession(store content.Store, gw ai.Gateway, cfg Config, contentID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		ContentID: contentID,
		store:     store,
		gw:        gw,
		cfg:       cfg.withDefaults(),
		state:     StateLoading,
		answers:   map[string]string{},
		stop:      make(chan struct{}),
	}
}

// LoadQuestions fills the session from the gateway. Any failure is fatal
// for the session: it lands in results with a message and no questions.
func (s *Session) LoadQuestions(ctx context.Context) error {
	m, err := s.store.GetStudyMaterialByID(ctx, s.ContentID)
	if err != nil {
		s.failLoad("Study material not found.")
		return err
	}
	if strings.TrimSpace(m.ExtractedText) == "" {
		s.failLoad("This material has no study text yet, so a quiz cannot be generated.")
		return ErrNoSourceText
	}

	qs, err := s.gw.GenerateQuizQuestions(ctx, m.ExtractedText, s.cfg.QuestionCount)
	if err != nil {
		s.failLoad("Quiz generation failed. Please try again.")
		return err
	}
	if len(qs) == 0 {
		s.failLoad("The generator returned no questions for this material.")
		return ErrNoQuestions
	}
	for i := range qs {
		if qs[i].ID == "" {
			qs[i].ID = uuid.NewString()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return nil // torn down while the gateway call was in flight
	}
	s.questions = qs
	s.remaining = s.cfg.DurationSec
	s.state = StateTaking
	return nil
}

// Start launches the one-second countdown. Call after LoadQuestions has
// moved the session to taking; no-op otherwise.
func (s *Session) Start() {
	s.mu.Lock()
	run := s.state == StateTaking && !s.closed
	s.mu.Unlock()
	if !run {
		return
	}
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-t.C:
				if s.tick() {
					return
				}
			}
		}
	}()
}

// tick decrements the countdown. Returns true once the timer is done with,
// either because time ran out (which submits) or the session left taking.
func (s *Session) tick() bool {
	s.mu.Lock()
	if s.state != StateTaking {
		s.mu.Unlock()
		return true
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}
	s.remaining = 0
	s.mu.Unlock()
	// Timer expiry submits exactly as a user click would.
	s.Submit(context.Background())
	return true
}

// Answer records an answer keyed by question id, last write wins. Ignored
// outside the taking state.
func (s *Session) Answer(questionID, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTaking {
		return
	}
	s.answers[questionID] = answer
}

// Submit grades and persists the attempt. Idempotent: whichever of the
// timer or the user gets here first does the work, the other call is a
// no-op. The final state is always results, even if persistence or the
// follow-up feedback call fails.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateTaking {
		s.mu.Unlock()
		return nil
	}
	s.state = StateSubmitting
	questions := make([]content.QuizQuestion, len(s.questions))
	copy(questions, s.questions)
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	elapsed := s.cfg.DurationSec - s.remaining
	s.mu.Unlock()

	s.cancelTimer()

	score := 0
	for i := range questions {
		questions[i].UserAnswer = answers[questions[i].ID]
		questions[i].IsCorrect = grading.Match(questions[i].UserAnswer, questions[i].CorrectAnswer)
		if questions[i].IsCorrect {
			score++
		}
	}

	quiz := content.Quiz{
		ID:              uuid.NewString(),
		ContentID:       s.ContentID,
		Questions:       questions,
		Score:           score,
		Timestamp:       time.Now().Unix(),
		DurationSeconds: elapsed,
	}
	persistErr := s.store.AddQuizResult(ctx, s.ContentID, quiz)

	s.mu.Lock()
	s.result = &quiz
	s.state = StateResults
	if persistErr != nil {
		s.message = "The result could not be saved, but your score is shown below."
	}
	s.mu.Unlock()

	// Commit-then-enrich: feedback is fetched after the score is recorded
	// and can only add text, never change the result.
	go s.fetchFeedback(quiz)

	return persistErr
}

func (s *Session) fetchFeedback(quiz content.Quiz) {
	sourceText := ""
	if m, err := s.store.GetStudyMaterialByID(context.Background(), s.ContentID); err == nil {
		sourceText = m.ExtractedText
	}
	text, err := s.gw.GenerateFeedback(context.Background(), quiz.Score, len(quiz.Questions), sourceText)
	if err != nil || strings.TrimSpace(text) == "" {
		text = ai.FallbackFeedback
	}
	s.applyFeedback(quiz.ID, text)
}

// applyFeedback only lands if this session still owns the given quiz and
// has not been torn down; a late response for an old attempt is dropped.
func (s *Session) applyFeedback(quizID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.result == nil || s.result.ID != quizID {
		return
	}
	s.feedback = text
}

// Close tears the session down: the timer stops and late async completions
// are ignored. Safe to call any number of times.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.state == StateLoading || s.state == StateTaking {
		s.state = StateResults
		s.message = "Session closed."
	}
	s.mu.Unlock()
	s.cancelTimer()
}

func (s *Session) cancelTimer() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// View is a read snapshot for the HTTP layer. Correct answers are withheld
// until the session reaches results.
type View struct {
	ID        string                 `json:"id"`
	ContentID string                 `json:"content_id"`
	State     State                  `json:"state"`
	Questions []content.QuizQuestion `json:"questions"`
	Remaining int                    `json:"remaining_sec"`
	Message   string                 `json:"message,omitempty"`
	Feedback  string                 `json:"feedback,omitempty"`
	Result    *content.Quiz          `json:"result,omitempty"`
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:        s.ID,
		ContentID: s.ContentID,
		State:     s.state,
		Remaining: s.remaining,
		Message:   s.message,
		Feedback:  s.feedback,
	}
	if s.result != nil {
		r := *s.result
		v.Result = &r
	}
	if s.state == StateTaking {
		v.Questions = make([]content.QuizQuestion, len(s.questions))
		copy(v.Questions, s.questions)
		for i := range v.Questions {
			v.Questions[i].CorrectAnswer = ""
			v.Questions[i].UserAnswer = s.answers[v.Questions[i].ID]
		}
	}
	return v
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) failLoad(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return
	}
	s.state = StateResults
	s.message = msg
}
