// Package study is the ingest and enrichment layer: it turns submissions
// into stored materials and drives artifact generation against the gateway.
package study

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studypod/studypod/internal/ai"
	"github.com/studypod/studypod/internal/content"
	"github.com/studypod/studypod/internal/storage"
)

// ErrEmptySource is a validation failure: there is nothing to study.
// Surfaced inline to the user, recoverable by correcting the input.
var ErrEmptySource = errors.New("submission has no source content")

type Service struct {
	store content.Store
	gw    ai.Gateway
	blobs storage.BlobStore
}

// NewService wires the store and gateway. blobs may be nil; file uploads
// are then not retained beyond their extracted text.
func NewService(store content.Store, gw ai.Gateway, blobs storage.BlobStore) *Service {
	return &Service{store: store, gw: gw, blobs: blobs}
}

// Submission is one piece of incoming study material.
type Submission struct {
	SourceType   content.SourceType `json:"source_type"`
	Content      string             `json:"content"` // pasted text or YouTube URL
	FileName     string             `json:"file_name,omitempty"`
	FileMimeType string             `json:"file_mime_type,omitempty"`
	FileText     string             `json:"file_text,omitempty"` // decoded text of an uploaded file

	// Optional user-provided labels; they win over suggested metadata.
	Title      string             `json:"title,omitempty"`
	Subject    string             `json:"subject,omitempty"`
	Topic      string             `json:"topic,omitempty"`
	Difficulty content.Difficulty `json:"difficulty,omitempty"`
}

// CreateMaterial validates, extracts, labels and stores a submission.
// Metadata suggestion is best-effort: when the gateway fails, the material
// is stored with whatever labels the user supplied.
func (s *Service) CreateMaterial(ctx context.Context, sub Submission) (content.StudyMaterial, error) {
	extracted, err := s.extract(ctx, sub)
	if err != nil {
		return content.StudyMaterial{}, err
	}

	m := content.StudyMaterial{
		ID:              uuid.NewString(),
		SourceType:      sub.SourceType,
		OriginalContent: sub.Content,
		FileName:        sub.FileName,
		FileMimeType:    sub.FileMimeType,
		ExtractedText:   extracted,
		Title:           sub.Title,
		Subject:         sub.Subject,
		Topic:           sub.Topic,
		Difficulty:      sub.Difficulty,
		UploadedAt:      time.Now().Unix(),
	}

	if md, err := s.gw.SuggestMetadata(ctx, extracted); err == nil {
		if m.Title == "" {
			m.Title = md.Title
		}
		if m.Subject == "" {
			m.Subject = md.Subject
		}
		if m.Topic == "" {
			m.Topic = md.Topic
		}
		if m.Difficulty == "" {
			m.Difficulty = md.Difficulty
		}
	}
	if m.Title == "" {
		m.Title = defaultTitle(sub)
	}
	if m.Difficulty == "" {
		m.Difficulty = content.DifficultyMedium
	}

	if sub.SourceType == content.SourceFile && s.blobs != nil && sub.FileName != "" {
		key := fmt.Sprintf("materials/%s/%s", m.ID, sub.FileName)
		if _, err := s.blobs.Put(key, strings.NewReader(sub.FileText)); err == nil {
			m.OriginalContent = key
		}
	}

	if err := s.store.AddContent(ctx, m); err != nil {
		return content.StudyMaterial{}, err
	}
	return m, nil
}

func (s *Service) extract(ctx context.Context, sub Submission) (string, error) {
	switch sub.SourceType {
	case content.SourceText:
		if strings.TrimSpace(sub.Content) == "" {
			return "", ErrEmptySource
		}
		return sub.Content, nil
	case content.SourceYouTube:
		if strings.TrimSpace(sub.Content) == "" {
			return "", ErrEmptySource
		}
		text, err := s.gw.ExtractText(ctx, content.SourceYouTube, sub.Content)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" || strings.TrimSpace(text) == "UNAVAILABLE" {
			return "", ErrEmptySource
		}
		return text, nil
	case content.SourceFile:
		if strings.TrimSpace(sub.FileText) == "" {
			return "", ErrEmptySource
		}
		return sub.FileText, nil
	}
	return "", fmt.Errorf("unknown source type %q", sub.SourceType)
}

// Artifact kinds accepted by GenerateArtifact.
const (
	ArtifactSummary     = "summary"
	ArtifactExplanation = "explanation"
	ArtifactNotes       = "notes"
)

var ErrUnknownArtifact = errors.New("unknown artifact kind")

// GenerateArtifact derives one artifact for a material and persists it on
// the material record. level only applies to notes.
func (s *Service) GenerateArtifact(ctx context.Context, id, kind, level string) (content.StudyMaterial, error) {
	m, err := s.store.GetStudyMaterialByID(ctx, id)
	if err != nil {
		return content.StudyMaterial{}, err
	}
	if strings.TrimSpace(m.ExtractedText) == "" {
		return content.StudyMaterial{}, ErrEmptySource
	}

	var upd content.MaterialUpdate
	switch kind {
	case ArtifactSummary:
		text, err := s.gw.Summarize(ctx, m.ExtractedText)
		if err != nil {
			return content.StudyMaterial{}, err
		}
		upd.AISummary = &text
	case ArtifactExplanation:
		text, err := s.gw.Explain(ctx, m.ExtractedText)
		if err != nil {
			return content.StudyMaterial{}, err
		}
		upd.AIExplanation = &text
	case ArtifactNotes:
		if level == "" {
			level = content.NotesMedium
		}
		text, err := s.gw.GenerateNotes(ctx, m.ExtractedText, level)
		if err != nil {
			return content.StudyMaterial{}, err
		}
		notes := map[string]string{}
		for k, v := range m.Notes {
			notes[k] = v
		}
		notes[level] = text
		upd.Notes = &notes
	default:
		return content.StudyMaterial{}, ErrUnknownArtifact
	}

	return s.store.UpdateStudyMaterial(ctx, id, upd)
}

// Chat appends the user's question to the material's history, asks the
// gateway, appends and returns the reply. The user message stays recorded
// even when the gateway declines to answer.
func (s *Service) Chat(ctx context.Context, id, question string) (content.ChatMessage, error) {
	if strings.TrimSpace(question) == "" {
		return content.ChatMessage{}, ErrEmptySource
	}
	m, err := s.store.GetStudyMaterialByID(ctx, id)
	if err != nil {
		return content.ChatMessage{}, err
	}

	userMsg := content.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    "user",
		Text:      question,
		Timestamp: time.Now().Unix(),
	}
	if err := s.store.AppendChatMessage(ctx, id, userMsg); err != nil {
		return content.ChatMessage{}, err
	}

	reply, err := s.gw.Chat(ctx, m.ChatHistory, question, m.ExtractedText)
	if err != nil {
		return content.ChatMessage{}, err
	}
	if err := s.store.AppendChatMessage(ctx, id, reply); err != nil {
		return content.ChatMessage{}, err
	}
	return reply, nil
}

func defaultTitle(sub Submission) string {
	switch sub.SourceType {
	case content.SourceFile:
		if sub.FileName != "" {
			return sub.FileName
		}
	case content.SourceYouTube:
		return sub.Content
	}
	text := strings.TrimSpace(sub.Content)
	if text == "" {
		text = strings.TrimSpace(sub.FileText)
	}
	if r := []rune(text); len(r) > 60 {
		return string(r[:60]) + "…"
	}
	return text
}
