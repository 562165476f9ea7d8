package content

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("material not found")
	ErrDuplicateID = errors.New("duplicate material id")
)

// Store is the single source of truth for study materials and their quiz
// history. Every mutating call is durably persisted before it returns.
// Lookups never mutate stored state.
//
// Policy notes (applied uniformly by every implementation):
//   - UpdateStudyMaterial on an unknown id returns ErrNotFound and never
//     creates a record.
//   - AddQuizResult rejects orphans: the referenced material must exist.
type Store interface {
	AddContent(ctx context.Context, m StudyMaterial) error
	GetStudyMaterialByID(ctx context.Context, id string) (StudyMaterial, error)
	UpdateStudyMaterial(ctx context.Context, id string, upd MaterialUpdate) (StudyMaterial, error)
	AppendChatMessage(ctx context.Context, id string, msg ChatMessage) error
	DeleteMaterial(ctx context.Context, id string) error
	ListMaterials(ctx context.Context) ([]MaterialSummary, error)

	AddQuizResult(ctx context.Context, contentID string, q Quiz) error
	GetQuizzesForContent(ctx context.Context, contentID string) ([]Quiz, error)
	ListQuizzes(ctx context.Context) ([]Quiz, error)
}

// applyUpdate merges a partial into a material. Shallow merge: each set
// field replaces the stored value wholesale, unset fields are preserved.
func applyUpdate(m *StudyMaterial, upd MaterialUpdate) {
	if upd.Title != nil {
		m.Title = *upd.Title
	}
	if upd.Subject != nil {
		m.Subject = *upd.Subject
	}
	if upd.Topic != nil {
		m.Topic = *upd.Topic
	}
	if upd.Difficulty != nil {
		m.Difficulty = *upd.Difficulty
	}
	if upd.ExtractedText != nil {
		m.ExtractedText = *upd.ExtractedText
	}
	if upd.AISummary != nil {
		m.AISummary = *upd.AISummary
	}
	if upd.AIExplanation != nil {
		m.AIExplanation = *upd.AIExplanation
	}
	if upd.Notes != nil {
		m.Notes = *upd.Notes
	}
	if upd.PresentationContent != nil {
		m.PresentationContent = *upd.PresentationContent
	}
	if upd.BlockDiagramMermaid != nil {
		m.BlockDiagramMermaid = *upd.BlockDiagramMermaid
	}
	if upd.VideoScenes != nil {
		m.VideoScenes = *upd.VideoScenes
	}
}

func summaryOf(m StudyMaterial) MaterialSummary {
	return MaterialSummary{
		ID:         m.ID,
		SourceType: m.SourceType,
		Title:      m.Title,
		Subject:    m.Subject,
		Topic:      m.Topic,
		Difficulty: m.Difficulty,
		UploadedAt: m.UploadedAt,
	}
}
