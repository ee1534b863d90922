package emaillogs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordSent logs a successfully delivered email.
func (r *Repository) RecordSent(ctx context.Context, emailType, recipient, subject string) error {
	const q = `INSERT INTO email_logs (id, email_type, recipient, subject, status, sent_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, emailType, recipient, subject, models.EmailStatusSent, time.Now().UTC())
	return err
}

// RecordFailed logs an email that exhausted its retries.
func (r *Repository) RecordFailed(ctx context.Context, emailType, recipient, subject, errMsg string) error {
	const q = `INSERT INTO email_logs (id, email_type, recipient, subject, status, error_message)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, emailType, recipient, subject, models.EmailStatusFailed, errMsg)
	return err
}

// List returns email logs, newest first.
func (r *Repository) List(ctx context.Context) ([]*models.EmailLog, error) {
	const q = `SELECT id, email_type, recipient, subject, status, error_message, sent_at, created_at
		FROM email_logs
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		var errMsg *string
		if err := rows.Scan(&el.ID, &el.EmailType, &el.Recipient, &el.Subject, &el.Status, &errMsg, &el.SentAt, &el.CreatedAt); err != nil {
			return nil, err
		}
		if errMsg != nil {
			el.ErrorMessage = *errMsg
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
