package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	"github.com/tsegaye25/load-tracking/internal/pkg/dberrors"
)

const userColumns = `
	id, email, password, first_name, last_name, role, department, school,
	is_active, hdp_hour, position_hour, batch_advisor, created_at, updated_at`

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, timeout: defaultQueryTimeout}
}

// Create inserts a new user account
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			email, password, first_name, last_name, role, department, school,
			is_active, hdp_hour, position_hour, batch_advisor, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		user.Email, user.Password, user.FirstName, user.LastName,
		user.Role, user.Department, user.School, user.IsActive,
		user.AddOns.HDPHour, user.AddOns.PositionHour, user.AddOns.BatchAdvisor,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return r.mapError(err, "error creating user")
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, r.mapError(err, "error retrieving user")
	}

	return user, nil
}

// ListByRole retrieves active users of a role, optionally scoped to a
// school and department
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role, school, department string) ([]*models.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var (
		conds = []string{"role = $1", "is_active = TRUE"}
		args  = []interface{}{role}
	)
	if school != "" {
		args = append(args, school)
		conds = append(conds, fmt.Sprintf("school = $%d", len(args)))
	}
	if department != "" {
		args = append(args, department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY last_name, first_name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError(err, "error querying users")
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, r.mapError(err, "error scanning user row")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapError(err, "error iterating user rows")
	}

	return users, nil
}

// UpdateAddOns persists the workload add-on hours of a user
func (r *UserRepository) UpdateAddOns(ctx context.Context, id int64, addOns models.HourAddOns) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET hdp_hour = $1, position_hour = $2, batch_advisor = $3, updated_at = $4
		WHERE id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query,
		addOns.HDPHour, addOns.PositionHour, addOns.BatchAdvisor,
		time.Now().UTC(), id,
	)
	if err != nil {
		return r.mapError(err, "error updating user add-ons")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *UserRepository) mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, apperrors.ErrRepositoryTimeout)
	}
	return fmt.Errorf("%s: %w: %v", msg, apperrors.ErrRepository, err)
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
		&user.Role, &user.Department, &user.School, &user.IsActive,
		&user.AddOns.HDPHour, &user.AddOns.PositionHour, &user.AddOns.BatchAdvisor,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
