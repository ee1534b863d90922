package organizer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
)

const pgUniqueViolation = "23505"

// ProfileParams are the organizer profile fields supplied on submission.
type ProfileParams struct {
	Name        string
	Description string
	Website     string
	Phone       string
}

// AdjudicateParams describes one admin decision over a user's request.
type AdjudicateParams struct {
	TargetUserID uuid.UUID
	Approve      bool
	NewRoleID    int
	ReviewerID   uuid.UUID
	Comment      string
}

// RequestWithUser is a request joined with its owner's summary.
type RequestWithUser struct {
	models.OrganizerRequest
	User models.UserPublic `json:"user"`
}

// RequestWithReviewer adds the reviewer summary when adjudicated.
type RequestWithReviewer struct {
	RequestWithUser
	Reviewer *models.UserPublic `json:"reviewer,omitempty"`
}

// OrganizerSummary is an approved organizer with profile and event count.
type OrganizerSummary struct {
	User       models.UserPublic        `json:"user"`
	Profile    *models.OrganizerProfile `json:"profile,omitempty"`
	EventCount int                      `json:"event_count"`
}

// Repository persists organizer profiles and requests. The multi-row
// workflow mutations run in one transaction each: the user's
// organizer_status and the request rows never disagree after a crash.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizer repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SubmitRequest records a new organizer request atomically: upserts the
// profile, marks the user pending, and inserts the pending request row.
// A concurrent duplicate submission trips the partial unique index and
// surfaces as Conflict.
func (r *Repository) SubmitRequest(ctx context.Context, userID uuid.UUID, profile ProfileParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Internal("failed to submit request", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM organizer_requests WHERE user_id = $1 AND status = $2)`,
		userID, models.RequestStatusPending).Scan(&exists)
	if err != nil {
		return apperr.Internal("failed to submit request", err)
	}
	if exists {
		return apperr.Conflict("an organizer request is already pending")
	}

	_, err = tx.Exec(ctx, `INSERT INTO organizer_profiles (user_id, name, description, website, phone)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''))
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			website = EXCLUDED.website,
			phone = EXCLUDED.phone,
			updated_at = NOW()`,
		userID, profile.Name, profile.Description, profile.Website, profile.Phone)
	if err != nil {
		return apperr.Internal("failed to save organizer profile", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE users SET organizer_status = $2, updated_at = NOW() WHERE id = $1`,
		userID, models.OrganizerStatusPending)
	if err != nil {
		return apperr.Internal("failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}

	_, err = tx.Exec(ctx, `INSERT INTO organizer_requests (id, user_id, status)
		VALUES (gen_random_uuid(), $1, $2)`, userID, models.RequestStatusPending)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("an organizer request is already pending")
		}
		return apperr.Internal("failed to create request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("failed to submit request", err)
	}
	return nil
}

// Adjudicate applies an admin decision atomically: role and organizer
// status on the user row, decision metadata on the pending request rows.
// When no pending row remains (a concurrent admin got there first) the
// request update is a no-op but the user row still takes the last write.
// Returns the updated user and the number of request rows adjudicated.
func (r *Repository) Adjudicate(ctx context.Context, p AdjudicateParams) (*models.User, int64, error) {
	status := models.RequestStatusRejected
	if p.Approve {
		status = models.RequestStatusApproved
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, apperr.Internal("failed to adjudicate request", err)
	}
	defer tx.Rollback(ctx)

	var u models.User
	err = tx.QueryRow(ctx, `UPDATE users SET role_id = $2, organizer_status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, password_hash, name, role_id, status, organizer_status, COALESCE(image,''), created_at, updated_at`,
		p.TargetUserID, p.NewRoleID, status).
		Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.RoleID, &u.Status,
			&u.OrganizerStatus, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, 0, apperr.Internal("failed to update user", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE organizer_requests
		SET status = $2, reviewed_by = $3, review_comment = NULLIF($4,''), reviewed_at = $5
		WHERE user_id = $1 AND status = $6`,
		p.TargetUserID, status, p.ReviewerID, p.Comment, time.Now(), models.RequestStatusPending)
	if err != nil {
		return nil, 0, apperr.Internal("failed to update request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, apperr.Internal("failed to adjudicate request", err)
	}
	return &u, tag.RowsAffected(), nil
}

// Revoke demotes an organizer back to a simple user atomically: profile
// deleted, role reset, organizer status cleared.
func (r *Repository) Revoke(ctx context.Context, targetUserID uuid.UUID, userRoleID int) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to revoke organizer", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM organizer_profiles WHERE user_id = $1`, targetUserID)
	if err != nil {
		return nil, apperr.Internal("failed to delete organizer profile", err)
	}

	var u models.User
	err = tx.QueryRow(ctx, `UPDATE users SET role_id = $2, organizer_status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, password_hash, name, role_id, status, organizer_status, COALESCE(image,''), created_at, updated_at`,
		targetUserID, userRoleID, models.OrganizerStatusNone).
		Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.RoleID, &u.Status,
			&u.OrganizerStatus, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal("failed to revoke organizer", err)
	}
	return &u, nil
}

// GetProfile returns a user's organizer profile.
func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.OrganizerProfile, error) {
	const q = `SELECT user_id, name, COALESCE(description,''), COALESCE(website,''), COALESCE(phone,''), created_at, updated_at
		FROM organizer_profiles WHERE user_id = $1`
	var p models.OrganizerProfile
	err := r.pool.QueryRow(ctx, q, userID).Scan(&p.UserID, &p.Name, &p.Description, &p.Website, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("organizer profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPendingRequests returns requests awaiting review, newest first.
func (r *Repository) ListPendingRequests(ctx context.Context) ([]RequestWithUser, error) {
	const q = `SELECT r.id, r.user_id, r.status, r.review_comment, r.created_at,
		u.id, u.email, u.name, u.role_id, u.status, u.organizer_status, COALESCE(u.image,''), u.created_at
		FROM organizer_requests r
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.status = $1
		ORDER BY r.created_at DESC`
	rows, err := r.pool.Query(ctx, q, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []RequestWithUser
	for rows.Next() {
		var rw RequestWithUser
		var comment *string
		if err := rows.Scan(&rw.ID, &rw.UserID, &rw.Status, &comment, &rw.CreatedAt,
			&rw.User.ID, &rw.User.Email, &rw.User.Name, &rw.User.RoleID, &rw.User.Status,
			&rw.User.OrganizerStatus, &rw.User.Image, &rw.User.CreatedAt); err != nil {
			return nil, err
		}
		if comment != nil {
			rw.ReviewComment = *comment
		}
		list = append(list, rw)
	}
	return list, rows.Err()
}

// ListAllRequests returns every request with owner and reviewer summaries.
func (r *Repository) ListAllRequests(ctx context.Context) ([]RequestWithReviewer, error) {
	const q = `SELECT r.id, r.user_id, r.status, r.reviewed_by, r.review_comment, r.created_at, r.reviewed_at,
		u.id, u.email, u.name, u.role_id, u.status, u.organizer_status, COALESCE(u.image,''), u.created_at,
		rev.id, rev.email, rev.name
		FROM organizer_requests r
		INNER JOIN users u ON u.id = r.user_id
		LEFT JOIN users rev ON rev.id = r.reviewed_by
		ORDER BY r.created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []RequestWithReviewer
	for rows.Next() {
		var rw RequestWithReviewer
		var comment *string
		var revID *uuid.UUID
		var revEmail, revName *string
		if err := rows.Scan(&rw.ID, &rw.UserID, &rw.Status, &rw.ReviewedBy, &comment, &rw.CreatedAt, &rw.ReviewedAt,
			&rw.User.ID, &rw.User.Email, &rw.User.Name, &rw.User.RoleID, &rw.User.Status,
			&rw.User.OrganizerStatus, &rw.User.Image, &rw.User.CreatedAt,
			&revID, &revEmail, &revName); err != nil {
			return nil, err
		}
		if comment != nil {
			rw.ReviewComment = *comment
		}
		if revID != nil {
			rw.Reviewer = &models.UserPublic{ID: *revID}
			if revEmail != nil {
				rw.Reviewer.Email = *revEmail
			}
			if revName != nil {
				rw.Reviewer.Name = *revName
			}
		}
		list = append(list, rw)
	}
	return list, rows.Err()
}

// ListOrganizers returns users holding the organizer role with their
// profiles and event counts, most recent first.
func (r *Repository) ListOrganizers(ctx context.Context, organizerRoleID int) ([]OrganizerSummary, error) {
	const q = `SELECT u.id, u.email, u.name, u.role_id, u.status, u.organizer_status, COALESCE(u.image,''), u.created_at,
		p.user_id, p.name, COALESCE(p.description,''), COALESCE(p.website,''), COALESCE(p.phone,''),
		(SELECT COUNT(*) FROM events e WHERE e.user_id = u.id)
		FROM users u
		LEFT JOIN organizer_profiles p ON p.user_id = u.id
		WHERE u.role_id = $1
		ORDER BY u.created_at DESC`
	rows, err := r.pool.Query(ctx, q, organizerRoleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []OrganizerSummary
	for rows.Next() {
		var s OrganizerSummary
		var profileUserID *uuid.UUID
		var pName, pDesc, pSite, pPhone *string
		if err := rows.Scan(&s.User.ID, &s.User.Email, &s.User.Name, &s.User.RoleID, &s.User.Status,
			&s.User.OrganizerStatus, &s.User.Image, &s.User.CreatedAt,
			&profileUserID, &pName, &pDesc, &pSite, &pPhone, &s.EventCount); err != nil {
			return nil, err
		}
		if profileUserID != nil {
			s.Profile = &models.OrganizerProfile{UserID: *profileUserID}
			if pName != nil {
				s.Profile.Name = *pName
			}
			if pDesc != nil {
				s.Profile.Description = *pDesc
			}
			if pSite != nil {
				s.Profile.Website = *pSite
			}
			if pPhone != nil {
				s.Profile.Phone = *pPhone
			}
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
