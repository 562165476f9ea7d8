package syncx

import (
	"context"
	"database/sql"
	"time"
)

// Event types appended by the content store.
const (
	EventContentCreated = "ContentCreated"
	EventContentUpdated = "ContentUpdated"
	EventContentDeleted = "ContentDeleted"
	EventQuizSubmitted  = "QuizSubmitted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Since returns events after the given offset, oldest first.
func (r *EventRepo) Since(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", typ, key, data, created_at FROM event_log
		 WHERE "offset" > $1 ORDER BY "offset" ASC LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
