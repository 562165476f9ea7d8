package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"

	"github.com/studypod/studypod/internal/content"
)

// OpenAIGateway talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIGateway struct {
	client openai.Client
	model  string
}

type Option func(*OpenAIGateway)

func WithModel(model string) Option {
	return func(g *OpenAIGateway) {
		if model != "" {
			g.model = model
		}
	}
}

// NewOpenAIGateway builds a gateway for the given credentials. endpoint may
// be empty for the default API host.
func NewOpenAIGateway(apiKey, endpoint string, opts ...Option) *OpenAIGateway {
	reqOpts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(1),
	}
	if endpoint != "" {
		reqOpts = append(reqOpts, openaioption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}
	g := &OpenAIGateway{
		client: openai.NewClient(reqOpts...),
		model:  "gpt-4o-mini",
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *OpenAIGateway) complete(ctx context.Context, op, system, user string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", gwErr(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", gwErrf(op, "empty response")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", gwErrf(op, "empty response")
	}
	return out, nil
}

func (g *OpenAIGateway) GenerateQuizQuestions(ctx context.Context, sourceText string, count int) ([]content.QuizQuestion, error) {
	const op = "generate quiz questions"
	raw, err := g.complete(ctx, op, quizSystemPrompt, quizUserPrompt(sourceText, count))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Questions []content.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, gwErrf(op, "malformed response: %v", err)
	}
	return payload.Questions, nil
}

func (g *OpenAIGateway) GenerateFeedback(ctx context.Context, score, total int, sourceText string) (string, error) {
	return g.complete(ctx, "generate feedback", feedbackSystemPrompt, feedbackUserPrompt(score, total, sourceText))
}

func (g *OpenAIGateway) SuggestMetadata(ctx context.Context, text string) (Metadata, error) {
	const op = "suggest metadata"
	raw, err := g.complete(ctx, op, metadataSystemPrompt, metadataUserPrompt(text))
	if err != nil {
		return Metadata{}, err
	}
	var md Metadata
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &md); err != nil {
		return Metadata{}, gwErrf(op, "malformed response: %v", err)
	}
	switch md.Difficulty {
	case content.DifficultyEasy, content.DifficultyMedium, content.DifficultyHard:
	default:
		md.Difficulty = content.DifficultyMedium
	}
	return md, nil
}

func (g *OpenAIGateway) Chat(ctx context.Context, history []content.ChatMessage, question, sourceText string) (content.ChatMessage, error) {
	text, err := g.complete(ctx, "chat", chatSystemPrompt(sourceText), chatUserPrompt(history, question))
	if err != nil {
		return content.ChatMessage{}, err
	}
	return content.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    "ai",
		Text:      text,
		Timestamp: time.Now().Unix(),
	}, nil
}

func (g *OpenAIGateway) Summarize(ctx context.Context, text string) (string, error) {
	return g.complete(ctx, "summarize", summarySystemPrompt, text)
}

func (g *OpenAIGateway) Explain(ctx context.Context, text string) (string, error) {
	return g.complete(ctx, "explain", explainSystemPrompt, text)
}

func (g *OpenAIGateway) GenerateNotes(ctx context.Context, text, level string) (string, error) {
	return g.complete(ctx, "generate notes", notesSystemPrompt(level), text)
}

func (g *OpenAIGateway) ExtractText(ctx context.Context, source content.SourceType, ref string) (string, error) {
	switch source {
	case content.SourceText:
		return ref, nil
	case content.SourceYouTube:
		return g.complete(ctx, "extract transcript", transcriptSystemPrompt, ref)
	case content.SourceFile:
		// File bodies are uploaded alongside the submission; the handler
		// passes the decoded text through here.
		return ref, nil
	}
	return "", gwErrf("extract text", "unknown source type %q", source)
}

// stripCodeFence peels a ```json ... ``` wrapper some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
