package study

import (
	"context"
	"errors"
	"testing"

	"github.com/studypod/studypod/internal/ai"
	"github.com/studypod/studypod/internal/content"
)

type fakeGateway struct {
	metadata    ai.Metadata
	metadataErr error
	summary     string
	summaryErr  error
	notes       string
	chatReply   content.ChatMessage
	chatErr     error
	transcript  string
}

func (f *fakeGateway) GenerateQuizQuestions(context.Context, string, int) ([]content.QuizQuestion, error) {
	return nil, nil
}

func (f *fakeGateway) GenerateFeedback(context.Context, int, int, string) (string, error) {
	return "", nil
}

func (f *fakeGateway) SuggestMetadata(context.Context, string) (ai.Metadata, error) {
	return f.metadata, f.metadataErr
}

func (f *fakeGateway) Chat(context.Context, []content.ChatMessage, string, string) (content.ChatMessage, error) {
	return f.chatReply, f.chatErr
}

func (f *fakeGateway) Summarize(context.Context, string) (string, error) {
	return f.summary, f.summaryErr
}

func (f *fakeGateway) Explain(context.Context, string) (string, error) { return "explained", nil }

func (f *fakeGateway) GenerateNotes(context.Context, string, string) (string, error) {
	return f.notes, nil
}

func (f *fakeGateway) ExtractText(_ context.Context, src content.SourceType, ref string) (string, error) {
	if src == content.SourceYouTube {
		return f.transcript, nil
	}
	return ref, nil
}

func TestCreateMaterialFromText(t *testing.T) {
	store := content.NewInMemoryStore()
	gw := &fakeGateway{metadata: ai.Metadata{
		Title: "Suggested", Subject: "Bio", Topic: "Cells", Difficulty: content.DifficultyHard,
	}}
	svc := NewService(store, gw, nil)

	m, err := svc.CreateMaterial(context.Background(), Submission{
		SourceType: content.SourceText,
		Content:    "The cell is the basic unit of life.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID == "" || m.ExtractedText != "The cell is the basic unit of life." {
		t.Errorf("material = %+v", m)
	}
	if m.Title != "Suggested" || m.Subject != "Bio" || m.Difficulty != content.DifficultyHard {
		t.Errorf("suggested metadata not applied: %+v", m)
	}

	stored, err := store.GetStudyMaterialByID(context.Background(), m.ID)
	if err != nil || stored.Title != "Suggested" {
		t.Errorf("not persisted: %+v, %v", stored, err)
	}
}

func TestCreateMaterialUserLabelsWin(t *testing.T) {
	store := content.NewInMemoryStore()
	gw := &fakeGateway{metadata: ai.Metadata{Title: "Suggested", Difficulty: content.DifficultyEasy}}
	svc := NewService(store, gw, nil)

	m, err := svc.CreateMaterial(context.Background(), Submission{
		SourceType: content.SourceText,
		Content:    "text",
		Title:      "My Title",
		Difficulty: content.DifficultyHard,
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Title != "My Title" || m.Difficulty != content.DifficultyHard {
		t.Errorf("user labels overridden: %+v", m)
	}
}

func TestCreateMaterialMetadataFailureIsNonFatal(t *testing.T) {
	store := content.NewInMemoryStore()
	gw := &fakeGateway{metadataErr: errors.New("down")}
	svc := NewService(store, gw, nil)

	m, err := svc.CreateMaterial(context.Background(), Submission{
		SourceType: content.SourceText,
		Content:    "some study text that is long enough to be truncated into a title somewhere",
	})
	if err != nil {
		t.Fatalf("metadata failure aborted create: %v", err)
	}
	if m.Title == "" || m.Difficulty != content.DifficultyMedium {
		t.Errorf("fallback labels missing: %+v", m)
	}
}

func TestCreateMaterialEmptySource(t *testing.T) {
	svc := NewService(content.NewInMemoryStore(), &fakeGateway{}, nil)
	for _, sub := range []Submission{
		{SourceType: content.SourceText, Content: "   "},
		{SourceType: content.SourceYouTube, Content: ""},
		{SourceType: content.SourceFile, FileName: "a.txt"},
	} {
		if _, err := svc.CreateMaterial(context.Background(), sub); !errors.Is(err, ErrEmptySource) {
			t.Errorf("submission %+v: want ErrEmptySource, got %v", sub, err)
		}
	}
}

func TestCreateMaterialFromYouTube(t *testing.T) {
	store := content.NewInMemoryStore()
	gw := &fakeGateway{transcript: "lecture transcript"}
	svc := NewService(store, gw, nil)

	m, err := svc.CreateMaterial(context.Background(), Submission{
		SourceType: content.SourceYouTube,
		Content:    "https://youtube.com/watch?v=abc",
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.ExtractedText != "lecture transcript" {
		t.Errorf("extracted = %q", m.ExtractedText)
	}
	if m.OriginalContent != "https://youtube.com/watch?v=abc" {
		t.Errorf("original = %q", m.OriginalContent)
	}
}

func TestGenerateArtifactPersists(t *testing.T) {
	store := content.NewInMemoryStore()
	gw := &fakeGateway{summary: "tight summary", notes: "- bullet"}
	svc := NewService(store, gw, nil)
	ctx := context.Background()

	m, _ := svc.CreateMaterial(ctx, Submission{SourceType: content.SourceText, Content: "text"})

	got, err := svc.GenerateArtifact(ctx, m.ID, ArtifactSummary, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.AISummary != "tight summary" {
		t.Errorf("summary = %q", got.AISummary)
	}

	got, err = svc.GenerateArtifact(ctx, m.ID, ArtifactNotes, content.NotesShort)
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if got.Notes[content.NotesShort] != "- bullet" {
		t.Errorf("notes = %+v", got.Notes)
	}
	// Summary from the earlier call must survive the notes update.
	if got.AISummary != "tight summary" {
		t.Errorf("summary lost on notes update: %+v", got)
	}

	if _, err := svc.GenerateArtifact(ctx, m.ID, "podcast", ""); !errors.Is(err, ErrUnknownArtifact) {
		t.Errorf("want ErrUnknownArtifact, got %v", err)
	}
	if _, err := svc.GenerateArtifact(ctx, "ghost", ArtifactSummary, ""); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestChatAppendsBothMessages(t *testing.T) {
	store := content.NewInMemoryStore()
	gw := &fakeGateway{chatReply: content.ChatMessage{ID: "r1", Sender: "ai", Text: "because"}}
	svc := NewService(store, gw, nil)
	ctx := context.Background()

	m, _ := svc.CreateMaterial(ctx, Submission{SourceType: content.SourceText, Content: "text"})
	reply, err := svc.Chat(ctx, m.ID, "why?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Text != "because" {
		t.Errorf("reply = %+v", reply)
	}

	got, _ := store.GetStudyMaterialByID(ctx, m.ID)
	if len(got.ChatHistory) != 2 || got.ChatHistory[0].Sender != "user" || got.ChatHistory[1].Sender != "ai" {
		t.Errorf("chat history = %+v", got.ChatHistory)
	}
}

func TestChatGatewayFailureKeepsUserMessage(t *testing.T) {
	store := content.NewInMemoryStore()
	gw := &fakeGateway{chatErr: &ai.GatewayError{Op: "chat", Err: errors.New("quota")}}
	svc := NewService(store, gw, nil)
	ctx := context.Background()

	m, _ := svc.CreateMaterial(ctx, Submission{SourceType: content.SourceText, Content: "text"})
	if _, err := svc.Chat(ctx, m.ID, "why?"); err == nil {
		t.Fatal("want error")
	}
	got, _ := store.GetStudyMaterialByID(ctx, m.ID)
	if len(got.ChatHistory) != 1 || got.ChatHistory[0].Sender != "user" {
		t.Errorf("chat history = %+v", got.ChatHistory)
	}
}
