package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/workflow"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

// defaultQueryTimeout bounds every repository call so a slow database
// surfaces as ErrRepositoryTimeout instead of hanging the state machine.
const defaultQueryTimeout = 5 * time.Second

const courseColumns = `
	c.id, c.code, c.title, c.department, c.school, c.class_year, c.semester,
	c.hourfor, c.number_of_sections, c.instructor_id, c.requested_by,
	c.status, c.rejected_by, c.rejection_reason, c.approval_history,
	c.rejected_requesters, c.created_at, c.updated_at,
	u.id, u.first_name, u.last_name, u.email, u.department, u.school, u.role,
	u.hdp_hour, u.position_hour, u.batch_advisor`

// CourseRepository handles database operations for course documents. It
// implements workflow.CourseStore.
type CourseRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db, timeout: defaultQueryTimeout}
}

// Create inserts a new course document
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	hourfor, sections, rejectedBy, history, err := marshalCourseDocs(course)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	query := `
		INSERT INTO courses (
			code, title, department, school, class_year, semester,
			hourfor, number_of_sections, instructor_id, requested_by,
			status, rejected_by, rejection_reason, approval_history,
			rejected_requesters, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`

	err = r.db.QueryRow(ctx, query,
		course.Code, course.Title, course.Department, course.School,
		course.ClassYear, course.Semester,
		hourfor, sections, course.InstructorID, course.RequestedByID,
		course.Status, rejectedBy, course.RejectionReason, history,
		course.RejectedRequesters, course.CreatedAt, course.UpdatedAt,
	).Scan(&course.ID)
	if err != nil {
		return r.mapError(err, "error creating course")
	}

	return nil
}

// GetByID retrieves a course with its instructor relation populated
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s
		FROM courses c
		LEFT JOIN users u ON u.id = c.instructor_id
		WHERE c.id = $1
	`, courseColumns)

	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, r.mapError(err, "error retrieving course")
	}

	return course, nil
}

// Find retrieves courses matching the filter, instructor relation included
func (r *CourseRepository) Find(ctx context.Context, filter workflow.CourseFilter) ([]*models.Course, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.School != "" {
		conds = append(conds, "c.school = "+arg(filter.School))
	}
	if filter.Department != "" {
		conds = append(conds, "c.department = "+arg(filter.Department))
	}
	if filter.Status != "" {
		conds = append(conds, "c.status = "+arg(filter.Status))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		conds = append(conds, "c.status = ANY("+arg(statuses)+")")
	}
	if filter.InstructorID != nil {
		conds = append(conds, "c.instructor_id = "+arg(*filter.InstructorID))
	}
	if filter.RequestedBy != nil {
		conds = append(conds, "c.requested_by = "+arg(*filter.RequestedBy))
	}
	if filter.ClassYear != "" {
		conds = append(conds, "c.class_year = "+arg(filter.ClassYear))
	}
	if filter.Semester != "" {
		conds = append(conds, "c.semester = "+arg(filter.Semester))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM courses c
		LEFT JOIN users u ON u.id = c.instructor_id
	`, courseColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.code"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError(err, "error querying courses")
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, r.mapError(err, "error scanning course row")
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapError(err, "error iterating course rows")
	}

	return courses, nil
}

// Update persists the course with compare-and-swap on updated_at. A zero
// row count with an existing row means a concurrent writer won the race;
// the caller gets ErrStaleWrite and decides whether to refetch and retry.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, expectedUpdatedAt time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	hourfor, sections, rejectedBy, history, err := marshalCourseDocs(course)
	if err != nil {
		return err
	}

	query := `
		UPDATE courses SET
			code = $1, title = $2, department = $3, school = $4,
			class_year = $5, semester = $6, hourfor = $7,
			number_of_sections = $8, instructor_id = $9, requested_by = $10,
			status = $11, rejected_by = $12, rejection_reason = $13,
			approval_history = $14, rejected_requesters = $15, updated_at = $16
		WHERE id = $17 AND updated_at = $18
	`

	cmdTag, err := r.db.Exec(ctx, query,
		course.Code, course.Title, course.Department, course.School,
		course.ClassYear, course.Semester, hourfor,
		sections, course.InstructorID, course.RequestedByID,
		course.Status, rejectedBy, course.RejectionReason,
		history, course.RejectedRequesters, course.UpdatedAt,
		course.ID, expectedUpdatedAt,
	)
	if err != nil {
		return r.mapError(err, "error updating course")
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`, course.ID,
		).Scan(&exists); err != nil {
			return r.mapError(err, "error checking course existence")
		}
		if !exists {
			return apperrors.ErrCourseNotFound
		}
		return apperrors.ErrStaleWrite
	}

	return nil
}

// Delete removes a course document
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return r.mapError(err, "error deleting course")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}

func (r *CourseRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *CourseRepository) mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, apperrors.ErrRepositoryTimeout)
	}
	return fmt.Errorf("%s: %w: %v", msg, apperrors.ErrRepository, err)
}

func marshalCourseDocs(course *models.Course) (hourfor, sections, rejectedBy, history []byte, err error) {
	if hourfor, err = json.Marshal(course.HourFor); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("error marshaling hourfor: %w", err)
	}
	if sections, err = json.Marshal(course.NumberOfSections); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("error marshaling sections: %w", err)
	}
	if course.RejectedBy != nil {
		if rejectedBy, err = json.Marshal(course.RejectedBy); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("error marshaling rejectedBy: %w", err)
		}
	}
	if course.ApprovalHistory == nil {
		course.ApprovalHistory = []models.ApprovalEntry{}
	}
	if history, err = json.Marshal(course.ApprovalHistory); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("error marshaling approval history: %w", err)
	}
	return hourfor, sections, rejectedBy, history, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var (
		course       models.Course
		hourfor      []byte
		sections     []byte
		rejectedBy   []byte
		history      []byte
		instructorID *int64
		firstName    *string
		lastName     *string
		email        *string
		department   *string
		school       *string
		role         *string
		hdp          *float64
		position     *float64
		batchAdvisor *float64
	)

	err := row.Scan(
		&course.ID, &course.Code, &course.Title, &course.Department,
		&course.School, &course.ClassYear, &course.Semester,
		&hourfor, &sections, &course.InstructorID, &course.RequestedByID,
		&course.Status, &rejectedBy, &course.RejectionReason, &history,
		&course.RejectedRequesters, &course.CreatedAt, &course.UpdatedAt,
		&instructorID, &firstName, &lastName, &email, &department, &school, &role,
		&hdp, &position, &batchAdvisor,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(hourfor, &course.HourFor); err != nil {
		return nil, fmt.Errorf("error unmarshaling hourfor: %w", err)
	}
	if err := json.Unmarshal(sections, &course.NumberOfSections); err != nil {
		return nil, fmt.Errorf("error unmarshaling sections: %w", err)
	}
	if len(rejectedBy) > 0 {
		course.RejectedBy = &models.RejectionActor{}
		if err := json.Unmarshal(rejectedBy, course.RejectedBy); err != nil {
			return nil, fmt.Errorf("error unmarshaling rejectedBy: %w", err)
		}
	}
	if err := json.Unmarshal(history, &course.ApprovalHistory); err != nil {
		return nil, fmt.Errorf("error unmarshaling approval history: %w", err)
	}

	if instructorID != nil {
		course.Instructor = &models.Instructor{
			ID:   *instructorID,
			Role: models.RoleInstructor,
		}
		if firstName != nil && lastName != nil {
			course.Instructor.Name = *firstName + " " + *lastName
		}
		if email != nil {
			course.Instructor.Email = *email
		}
		if department != nil {
			course.Instructor.Department = *department
		}
		if school != nil {
			course.Instructor.School = *school
		}
		if role != nil {
			course.Instructor.Role = models.Role(*role)
		}
		if hdp != nil {
			course.Instructor.AddOns.HDPHour = *hdp
		}
		if position != nil {
			course.Instructor.AddOns.PositionHour = *position
		}
		if batchAdvisor != nil {
			course.Instructor.AddOns.BatchAdvisor = *batchAdvisor
		}
	}

	return &course, nil
}
