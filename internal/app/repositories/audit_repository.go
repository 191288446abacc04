package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

// AuditRepository persists workflow audit events. Writes happen on the
// notification path, so they run against a detached context and callers
// treat failures as non-fatal.
type AuditRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db, timeout: defaultQueryTimeout}
}

// Insert records an audit event
func (r *AuditRepository) Insert(ctx context.Context, event *models.AuditEvent) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_events (
			course_id, course_code, actor_id, actor_role, action,
			from_status, to_status, reason, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		event.CourseID, event.CourseCode, event.ActorID, event.ActorRole,
		event.Action, event.FromStatus, event.ToStatus, event.Reason,
		event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		return r.mapError(err, "error inserting audit event")
	}

	return nil
}

// List retrieves audit events newest first, optionally filtered by course
func (r *AuditRepository) List(ctx context.Context, courseID *int64, limit, offset int) ([]*models.AuditEvent, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, course_id, course_code, actor_id, actor_role, action,
		       from_status, to_status, reason, created_at
		FROM audit_events
	`
	args := []interface{}{}
	if courseID != nil {
		args = append(args, *courseID)
		query += " WHERE course_id = $1"
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError(err, "error querying audit events")
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		var ev models.AuditEvent
		err := rows.Scan(
			&ev.ID, &ev.CourseID, &ev.CourseCode, &ev.ActorID, &ev.ActorRole,
			&ev.Action, &ev.FromStatus, &ev.ToStatus, &ev.Reason, &ev.CreatedAt,
		)
		if err != nil {
			return nil, r.mapError(err, "error scanning audit event row")
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapError(err, "error iterating audit event rows")
	}

	return events, nil
}

// Count reports the number of audit events, optionally filtered by course
func (r *AuditRepository) Count(ctx context.Context, courseID *int64) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `SELECT COUNT(*) FROM audit_events`
	args := []interface{}{}
	if courseID != nil {
		args = append(args, *courseID)
		query += " WHERE course_id = $1"
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, r.mapError(err, "error counting audit events")
	}
	return total, nil
}

func (r *AuditRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *AuditRepository) mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, apperrors.ErrRepositoryTimeout)
	}
	return fmt.Errorf("%s: %w: %v", msg, apperrors.ErrRepository, err)
}
