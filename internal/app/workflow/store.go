package workflow

import (
	"context"
	"time"

	"github.com/tsegaye25/load-tracking/internal/app/models"
)

// CourseFilter narrows a course query. Zero-valued fields are ignored.
type CourseFilter struct {
	School       string
	Department   string
	Status       models.CourseStatus
	Statuses     []models.CourseStatus
	InstructorID *int64
	RequestedBy  *int64
	ClassYear    string
	Semester     models.Semester
}

// CourseStore is the repository contract the workflow core consumes. In a
// deployment it is backed by PostgreSQL; tests substitute an in-memory fake.
// Implementations must surface apperrors sentinels: ErrCourseNotFound for
// missing rows, ErrStaleWrite for failed compare-and-swap updates, and
// ErrRepositoryTimeout when the underlying call exceeds its deadline.
type CourseStore interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	Find(ctx context.Context, filter CourseFilter) ([]*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	// Update persists the course only if the stored row still carries
	// expectedUpdatedAt; a mismatch means another reviewer won the race and
	// the write is rejected with ErrStaleWrite.
	Update(ctx context.Context, course *models.Course, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
}
