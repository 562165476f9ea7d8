// Package ai is the boundary to the generative backend. Everything behind
// Gateway is fallible by contract: callers treat a failure as in-app state
// (an error message, a fallback text), never as a crash.
package ai

import (
	"context"
	"fmt"

	"github.com/studypod/studypod/internal/content"
)

// FallbackFeedback is shown when feedback generation fails. The score is
// already committed by then; this only affects the text on the results view.
const FallbackFeedback = "Could not fetch personalized feedback. Review the answers below and try the quiz again to improve your score."

// Metadata is what the gateway suggests for a freshly ingested material.
type Metadata struct {
	Title      string             `json:"title"`
	Subject    string             `json:"subject"`
	Topic      string             `json:"topic"`
	Difficulty content.Difficulty `json:"difficulty"`
}

type Gateway interface {
	// GenerateQuizQuestions returns count questions for the source text.
	// Returned questions may lack IDs; callers assign them.
	GenerateQuizQuestions(ctx context.Context, sourceText string, count int) ([]content.QuizQuestion, error)

	// GenerateFeedback is best-effort commentary on a graded quiz.
	GenerateFeedback(ctx context.Context, score, total int, sourceText string) (string, error)

	// SuggestMetadata labels a material during ingest.
	SuggestMetadata(ctx context.Context, text string) (Metadata, error)

	// Chat answers a follow-up question grounded in the material.
	Chat(ctx context.Context, history []content.ChatMessage, question, sourceText string) (content.ChatMessage, error)

	Summarize(ctx context.Context, text string) (string, error)
	Explain(ctx context.Context, text string) (string, error)
	GenerateNotes(ctx context.Context, text, level string) (string, error)

	// ExtractText turns a non-text submission (YouTube URL, uploaded file)
	// into study text.
	ExtractText(ctx context.Context, source content.SourceType, ref string) (string, error)
}

// GatewayError wraps any failure from the external service: network, quota,
// malformed response, empty result.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ai gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func gwErr(op string, err error) error { return &GatewayError{Op: op, Err: err} }

func gwErrf(op, format string, args ...any) error {
	return &GatewayError{Op: op, Err: fmt.Errorf(format, args...)}
}
