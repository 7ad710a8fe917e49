package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one audit-trail record: who did what to a request, and which
// stage it moved between. Appended inside the same transaction as the
// stage transition it describes.
type Entry struct {
	ID            string `json:"id"`
	RequestID     string `json:"requestId"`
	Action        string `json:"action"`
	ActorID       string `json:"actorId"`
	ActorRole     string `json:"actorRole"`
	PreviousStage string `json:"previousStage"`
	NewStage      string `json:"newStage"`
	Comments      string `json:"comments,omitempty"`
	OccurredAt    string `json:"occurredAt"`
	Metadata      any    `json:"metadata,omitempty"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func Insert(ctx context.Context, tx pgx.Tx, requestID, action, actorID, actorRole, prevStage, newStage, comments string, occurredAt time.Time, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO request_history (request_id, action, actor_id, actor_role, previous_stage, new_stage, comments, occurred_at, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CAST($9 AS jsonb))
`
	_, err := tx.Exec(ctx, q, requestID, action, actorID, actorRole, prevStage, newStage, comments, occurredAt, s)
	return err
}

func ListByRequest(ctx context.Context, db *pgxpool.Pool, requestID string) ([]Entry, error) {
	const q = `
SELECT id, request_id, action, actor_id, COALESCE(actor_role,''), COALESCE(previous_stage,''), COALESCE(new_stage,''),
       COALESCE(comments,''), occurred_at::text, COALESCE(metadata, '{}'::jsonb)
FROM request_history
WHERE request_id = $1
ORDER BY occurred_at ASC, created_at ASC
`
	rows, err := db.Query(ctx, q, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Action, &e.ActorID, &e.ActorRole, &e.PreviousStage, &e.NewStage, &e.Comments, &e.OccurredAt, &e.Metadata); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
