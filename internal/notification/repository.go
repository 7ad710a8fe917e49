package notification

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification is one queued or delivered message about a request.
type Notification struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"requestId"`
	RecipientID  string    `json:"recipientId"`
	Channel      string    `json:"channel"` // sms | in_app
	Body         string    `json:"body"`
	SMSMessageID string    `json:"smsMessageId,omitempty"`
	Status       string    `json:"status"` // queued | sent | delivered | failed
	CreatedAt    time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, n *Notification) error {
	const q = `
INSERT INTO notifications (request_id, recipient_id, channel, body, sms_message_id, status)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6)
RETURNING id, created_at
`
	return r.db.QueryRow(ctx, q, n.RequestID, n.RecipientID, n.Channel, n.Body, n.SMSMessageID, n.Status).
		Scan(&n.ID, &n.CreatedAt)
}

// UpdateDeliveryStatus applies a gateway delivery callback by message id.
// Returns false when no notification carries that id.
func (r *Repository) UpdateDeliveryStatus(ctx context.Context, smsMessageID, status string) (bool, error) {
	const q = `
UPDATE notifications
SET status = $2, updated_at = NOW()
WHERE sms_message_id = $1
`
	tag, err := r.db.Exec(ctx, q, smsMessageID, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListForRecipient returns a user's recent notifications, newest first.
func (r *Repository) ListForRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `
SELECT id, request_id, recipient_id, channel, body, COALESCE(sms_message_id,''), status, created_at
FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := r.db.Query(ctx, q, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RequestID, &n.RecipientID, &n.Channel, &n.Body, &n.SMSMessageID, &n.Status, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
