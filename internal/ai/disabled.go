package ai

import (
	"context"
	"errors"

	"github.com/studypod/studypod/internal/content"
)

// ErrNotConfigured is returned by every call on the disabled gateway.
var ErrNotConfigured = errors.New("AI credentials not configured")

// NewDisabledGateway stands in when no API key is configured. The service
// keeps running; every generation attempt fails with a GatewayError that
// the UI pairs with the persistent configuration banner from /status.
func NewDisabledGateway() Gateway { return disabledGateway{} }

type disabledGateway struct{}

func (disabledGateway) err(op string) error { return gwErr(op, ErrNotConfigured) }

func (g disabledGateway) GenerateQuizQuestions(context.Context, string, int) ([]content.QuizQuestion, error) {
	return nil, g.err("generate quiz questions")
}

func (g disabledGateway) GenerateFeedback(context.Context, int, int, string) (string, error) {
	return "", g.err("generate feedback")
}

func (g disabledGateway) SuggestMetadata(context.Context, string) (Metadata, error) {
	return Metadata{}, g.err("suggest metadata")
}

func (g disabledGateway) Chat(context.Context, []content.ChatMessage, string, string) (content.ChatMessage, error) {
	return content.ChatMessage{}, g.err("chat")
}

func (g disabledGateway) Summarize(context.Context, string) (string, error) {
	return "", g.err("summarize")
}

func (g disabledGateway) Explain(context.Context, string) (string, error) {
	return "", g.err("explain")
}

func (g disabledGateway) GenerateNotes(context.Context, string, string) (string, error) {
	return "", g.err("generate notes")
}

func (g disabledGateway) ExtractText(ctx context.Context, source content.SourceType, ref string) (string, error) {
	if source == content.SourceText || source == content.SourceFile {
		return ref, nil // plain text needs no model
	}
	return "", g.err("extract text")
}
