package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	syncx "github.com/studypod/studypod/internal/sync"
)

// artifacts is the serialized bag of AI-derived fields. One JSON column
// keeps the material row stable while generators grow new artifact kinds.
type artifacts struct {
	AISummary           string            `json:"ai_summary,omitempty"`
	AIExplanation       string            `json:"ai_explanation,omitempty"`
	Notes               map[string]string `json:"notes,omitempty"`
	PresentationContent string            `json:"presentation_content,omitempty"`
	BlockDiagramMermaid string            `json:"block_diagram_mermaid,omitempty"`
	VideoScenes         string            `json:"video_scenes,omitempty"`
}

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	events *syncx.EventRepo
}

// NewSQLStore wraps db. events may be nil to disable the event log.
func NewSQLStore(db *sql.DB, driver string, events *syncx.EventRepo) *SQLStore {
	return &SQLStore{db: db, driver: driver, events: events}
}

func (s *SQLStore) AddContent(ctx context.Context, m StudyMaterial) error {
	var exist int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM materials WHERE id=$1`, m.ID).Scan(&exist)
	if err == nil {
		return ErrDuplicateID
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	aj, err := json.Marshal(artifactsOf(m))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO materials
		(id,source_type,original_content,file_name,file_mime_type,extracted_text,title,subject,topic,difficulty,uploaded_at,artifacts_json)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		m.ID, string(m.SourceType), m.OriginalContent, m.FileName, m.FileMimeType,
		m.ExtractedText, m.Title, m.Subject, m.Topic, string(m.Difficulty), m.UploadedAt, string(aj))
	if err != nil {
		return err
	}
	for _, c := range m.ChatHistory {
		if err := s.insertChat(ctx, m.ID, c); err != nil {
			return err
		}
	}
	s.appendEvent(ctx, syncx.EventContentCreated, m.ID, map[string]any{"source_type": m.SourceType, "title": m.Title})
	return nil
}

func (s *SQLStore) GetStudyMaterialByID(ctx context.Context, id string) (StudyMaterial, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,source_type,original_content,file_name,file_mime_type,
		extracted_text,title,subject,topic,difficulty,uploaded_at,artifacts_json
		FROM materials WHERE id=$1`, id)
	var m StudyMaterial
	var srcType, diff, aj string
	if err := row.Scan(&m.ID, &srcType, &m.OriginalContent, &m.FileName, &m.FileMimeType,
		&m.ExtractedText, &m.Title, &m.Subject, &m.Topic, &diff, &m.UploadedAt, &aj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StudyMaterial{}, ErrNotFound
		}
		return StudyMaterial{}, err
	}
	m.SourceType = SourceType(srcType)
	m.Difficulty = Difficulty(diff)
	var a artifacts
	if err := json.Unmarshal([]byte(aj), &a); err != nil {
		return StudyMaterial{}, err
	}
	applyArtifacts(&m, a)
	hist, err := s.chatHistory(ctx, id)
	if err != nil {
		return StudyMaterial{}, err
	}
	m.ChatHistory = hist
	return m, nil
}

func (s *SQLStore) UpdateStudyMaterial(ctx context.Context, id string, upd MaterialUpdate) (StudyMaterial, error) {
	m, err := s.GetStudyMaterialByID(ctx, id)
	if err != nil {
		return StudyMaterial{}, err
	}
	applyUpdate(&m, upd)
	aj, err := json.Marshal(artifactsOf(m))
	if err != nil {
		return StudyMaterial{}, err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE materials SET
		extracted_text=$1, title=$2, subject=$3, topic=$4, difficulty=$5, artifacts_json=$6
		WHERE id=$7`,
		m.ExtractedText, m.Title, m.Subject, m.Topic, string(m.Difficulty), string(aj), id)
	if err != nil {
		return StudyMaterial{}, err
	}
	s.appendEvent(ctx, syncx.EventContentUpdated, id, nil)
	return m, nil
}

func (s *SQLStore) AppendChatMessage(ctx context.Context, id string, msg ChatMessage) error {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM materials WHERE id=$1`, id).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return s.insertChat(ctx, id, msg)
}

func (s *SQLStore) DeleteMaterial(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM materials WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.appendEvent(ctx, syncx.EventContentDeleted, id, nil)
	return nil
}

func (s *SQLStore) ListMaterials(ctx context.Context) ([]MaterialSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,source_type,title,subject,topic,difficulty,uploaded_at
		FROM materials ORDER BY uploaded_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MaterialSummary{}
	for rows.Next() {
		var ms MaterialSummary
		var srcType, diff string
		if err := rows.Scan(&ms.ID, &srcType, &ms.Title, &ms.Subject, &ms.Topic, &diff, &ms.UploadedAt); err != nil {
			return nil, err
		}
		ms.SourceType = SourceType(srcType)
		ms.Difficulty = Difficulty(diff)
		out = append(out, ms)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddQuizResult(ctx context.Context, contentID string, q Quiz) error {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM materials WHERE id=$1`, contentID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,content_id,score,questions_json,duration_sec,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		q.ID, contentID, q.Score, string(qj), q.DurationSeconds, q.Timestamp)
	if err != nil {
		return err
	}
	s.appendEvent(ctx, syncx.EventQuizSubmitted, q.ID, map[string]any{"content_id": contentID, "score": q.Score, "total": len(q.Questions)})
	return nil
}

func (s *SQLStore) GetQuizzesForContent(ctx context.Context, contentID string) ([]Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT id,content_id,score,questions_json,duration_sec,created_at
		FROM quizzes WHERE content_id=$1 ORDER BY seq`, contentID)
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT id,content_id,score,questions_json,duration_sec,created_at
		FROM quizzes ORDER BY seq`)
}

func (s *SQLStore) queryQuizzes(ctx context.Context, query string, args ...any) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		var q Quiz
		var qj string
		if err := rows.Scan(&q.ID, &q.ContentID, &q.Score, &qj, &q.DurationSeconds, &q.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(qj), &q.Questions); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) chatHistory(ctx context.Context, materialID string) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,sender,body,sources_json,created_at
		FROM chat_messages WHERE material_id=$1 ORDER BY seq`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChatMessage
	for rows.Next() {
		var c ChatMessage
		var sj string
		if err := rows.Scan(&c.ID, &c.Sender, &c.Text, &sj, &c.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sj), &c.Sources); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) insertChat(ctx context.Context, materialID string, c ChatMessage) error {
	sj, err := json.Marshal(c.Sources)
	if err != nil {
		return err
	}
	if c.Sources == nil {
		sj = []byte("[]")
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO chat_messages (material_id,id,sender,body,sources_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		materialID, c.ID, c.Sender, c.Text, string(sj), c.Timestamp)
	return err
}

// appendEvent is best-effort; the event log never fails a store operation.
func (s *SQLStore) appendEvent(ctx context.Context, typ, key string, data map[string]any) {
	if s.events == nil {
		return
	}
	payload := "{}"
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	_ = s.events.Append(ctx, syncx.Event{Type: typ, Key: key, DataJSON: payload, CreatedAt: time.Now().Unix()})
}

func artifactsOf(m StudyMaterial) artifacts {
	return artifacts{
		AISummary:           m.AISummary,
		AIExplanation:       m.AIExplanation,
		Notes:               m.Notes,
		PresentationContent: m.PresentationContent,
		BlockDiagramMermaid: m.BlockDiagramMermaid,
		VideoScenes:         m.VideoScenes,
	}
}

func applyArtifacts(m *StudyMaterial, a artifacts) {
	m.AISummary = a.AISummary
	m.AIExplanation = a.AIExplanation
	m.Notes = a.Notes
	m.PresentationContent = a.PresentationContent
	m.BlockDiagramMermaid = a.BlockDiagramMermaid
	m.VideoScenes = a.VideoScenes
}
