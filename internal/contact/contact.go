// Package contact handles contact form submissions.
package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/queue"
	"github.com/eventora/backend/pkg/response"
)

// Repository handles contact message persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a contact repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a contact message.
func (r *Repository) Create(ctx context.Context, name, email, subject, message string) (*models.ContactMessage, error) {
	const q = `INSERT INTO contact_messages (id, name, email, subject, message)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, name, email, subject, message, created_at`
	var msg models.ContactMessage
	err := r.pool.QueryRow(ctx, q, name, email, subject, message).
		Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns all contact messages, newest first.
func (r *Repository) List(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, subject, message, created_at
		FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ContactMessage
	for rows.Next() {
		var msg models.ContactMessage
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, msg)
	}
	return list, rows.Err()
}

// Notifier enqueues outbound emails.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler handles contact HTTP endpoints.
type Handler struct {
	repo     *Repository
	notifier Notifier
	notifyTo string
	logger   *zap.Logger
}

// NewHandler creates a contact handler. notifyTo is the inbox that receives
// a copy of every submission; empty disables notifications.
func NewHandler(repo *Repository, notifier Notifier, notifyTo string, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, notifier: notifier, notifyTo: notifyTo, logger: logger}
}

// SubmitBody is the body for POST /contact.
type SubmitBody struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Submit handles POST /contact.
func (h *Handler) Submit(c *gin.Context) {
	var body SubmitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name, email, subject and message are required")
		return
	}

	msg, err := h.repo.Create(c.Request.Context(),
		strings.TrimSpace(body.Name),
		strings.ToLower(strings.TrimSpace(body.Email)),
		strings.TrimSpace(body.Subject),
		body.Message,
	)
	if err != nil {
		h.logger.Error("failed to store contact message", zap.Error(err))
		response.Internal(c, "failed to submit message")
		return
	}

	if h.notifier != nil && h.notifyTo != "" {
		payload := queue.EmailPayload{
			EmailType: queue.EmailTypeContact,
			Recipient: h.notifyTo,
			Subject:   fmt.Sprintf("Contact: %s", msg.Subject),
			Body: fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
		}
		if err := h.notifier.EnqueueEmail(c.Request.Context(), payload); err != nil {
			// The message is stored; only the notification is lost.
			h.logger.Warn("failed to enqueue contact notification",
				zap.String("message_id", msg.ID.String()), zap.Error(err))
		}
	}

	response.Created(c, msg)
}

// List handles GET /admin/contact-messages. Mounted behind the admin guard.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load messages")
		return
	}
	response.OK(c, list)
}
