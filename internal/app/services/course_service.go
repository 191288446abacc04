package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/app/notify"
	"github.com/tsegaye25/load-tracking/internal/app/workflow"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	"github.com/tsegaye25/load-tracking/internal/pkg/logger"
	"github.com/tsegaye25/load-tracking/internal/pkg/validation"
)

// maxTransitionAttempts bounds the re-fetch/re-apply loop used when a
// compare-and-swap update loses to a concurrent reviewer.
const maxTransitionAttempts = 3

// AuditLog is the read side of the audit trail.
type AuditLog interface {
	List(ctx context.Context, courseID *int64, limit, offset int) ([]*models.AuditEvent, error)
	Count(ctx context.Context, courseID *int64) (int64, error)
}

// TransitionOutcome is the per-course result of a bulk transition. Either
// Course or Err is set, never both.
type TransitionOutcome struct {
	CourseID int64
	Course   *models.Course
	Err      error
}

// CourseService owns course CRUD and every workflow transition. All status
// changes funnel through the state machine; the service adds persistence,
// retries and notification on top.
type CourseService struct {
	store   workflow.CourseStore
	audits  AuditLog
	machine *workflow.Machine
	emitter notify.Emitter
}

// NewCourseService creates a new course service
func NewCourseService(store workflow.CourseStore, audits AuditLog, emitter notify.Emitter) *CourseService {
	if emitter == nil {
		emitter = notify.NopEmitter{}
	}
	return &CourseService{
		store:   store,
		audits:  audits,
		machine: workflow.NewMachine(),
		emitter: emitter,
	}
}

// Create adds a new unassigned course in the caller's department
func (s *CourseService) Create(ctx context.Context, user *models.User, req *dto.CreateCourseRequest) (*models.Course, error) {
	if !canManageCourses(user) {
		return nil, apperrors.NewPermissionDeniedError("only department heads and admins may create courses")
	}
	if err := validation.ValidateCourseCode(req.Code); err != nil {
		return nil, err
	}
	if !req.Semester.Valid() {
		return nil, apperrors.NewValidationError("semester", "semester must be I or II")
	}
	if user.Role == models.RoleDepartmentHead &&
		(req.Department != user.Department || req.School != user.School) {
		return nil, apperrors.NewPermissionDeniedError("department heads may only create courses in their own department")
	}

	course := &models.Course{
		Code:             req.Code,
		Title:            req.Title,
		Department:       req.Department,
		School:           req.School,
		ClassYear:        req.ClassYear,
		Semester:         req.Semester,
		HourFor:          req.HourFor,
		NumberOfSections: req.Sections,
		Status:           models.StatusUnassigned,
		ApprovalHistory:  []models.ApprovalEntry{},
	}

	if err := s.store.Create(ctx, course); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("courseId", course.ID).
		Str("code", course.Code).
		Int64("userId", user.ID).
		Msg("Course created")

	return course, nil
}

// Get retrieves a single course visible to the caller
func (s *CourseService) Get(ctx context.Context, user *models.User, id int64) (*models.Course, error) {
	course, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkReadScope(user, course); err != nil {
		return nil, err
	}
	return course, nil
}

// List retrieves courses matching the filter, scoped to the caller's school
func (s *CourseService) List(ctx context.Context, user *models.User, filter workflow.CourseFilter) ([]*models.Course, error) {
	scopeFilter(user, &filter)
	return s.store.Find(ctx, filter)
}

// Update applies a partial edit to a course document. Workflow fields are
// untouchable here; only transitions move them.
func (s *CourseService) Update(ctx context.Context, user *models.User, id int64, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := course.UpdatedAt

	if !workflow.AllowedActions(user, course).Contains(workflow.ActionEdit) {
		if canManageCourses(user) {
			return nil, apperrors.NewConflictError(apperrors.ConflictCourseImmutable,
				fmt.Sprintf("course %s is past the editable stages", course.Code)).WithCourse(course.ID)
		}
		return nil, apperrors.NewPermissionDeniedError("not allowed to edit this course").WithCourse(course.ID)
	}

	if req.Code != "" {
		if err := validation.ValidateCourseCode(req.Code); err != nil {
			return nil, err
		}
		course.Code = req.Code
	}
	if req.Title != "" {
		course.Title = req.Title
	}
	if req.ClassYear != "" {
		course.ClassYear = req.ClassYear
	}
	if req.Semester != "" {
		if !req.Semester.Valid() {
			return nil, apperrors.NewValidationError("semester", "semester must be I or II")
		}
		course.Semester = req.Semester
	}
	if req.HourFor != nil {
		course.HourFor = *req.HourFor
	}
	if req.Sections != nil {
		course.NumberOfSections = *req.Sections
	}

	course.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, course, expected); err != nil {
		return nil, err
	}

	return course, nil
}

// Delete removes a course still in an editable stage
func (s *CourseService) Delete(ctx context.Context, user *models.User, id int64) error {
	course, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !workflow.AllowedActions(user, course).Contains(workflow.ActionDelete) {
		if canManageCourses(user) {
			return apperrors.NewConflictError(apperrors.ConflictCourseImmutable,
				fmt.Sprintf("course %s is past the deletable stages", course.Code)).WithCourse(course.ID)
		}
		return apperrors.NewPermissionDeniedError("not allowed to delete this course").WithCourse(course.ID)
	}

	return s.store.Delete(ctx, id)
}

// AllowedActions resolves the caller's legal actions on a course
func (s *CourseService) AllowedActions(ctx context.Context, user *models.User, id int64) (workflow.ActionSet, error) {
	course, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return workflow.AllowedActions(user, course), nil
}

// Transition applies one workflow action to a course. The write uses
// compare-and-swap on updatedAt; if a concurrent reviewer commits first the
// course is re-fetched and the action re-validated against the new state.
// After the attempts are exhausted the caller gets ErrTransitionFailed.
func (s *CourseService) Transition(ctx context.Context, user *models.User, courseID int64, action workflow.Action, payload workflow.Payload) (*models.Course, error) {
	var lastErr error

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		course, err := s.store.GetByID(ctx, courseID)
		if err != nil {
			if retryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		from := course.Status
		expected := course.UpdatedAt
		if err := s.machine.Apply(user, course, action, payload); err != nil {
			return nil, err
		}

		if err := s.store.Update(ctx, course, expected); err != nil {
			if retryable(err) {
				lastErr = err
				logger.Debug().
					Err(err).
					Int64("courseId", courseID).
					Int("attempt", attempt).
					Msg("Transition write lost the race, retrying")
				continue
			}
			return nil, err
		}

		s.emitter.Emit(notify.Event{
			Course:     course,
			Actor:      user,
			Action:     string(action),
			FromStatus: from,
			ToStatus:   course.Status,
			Reason:     payload.Reason,
		})

		logger.Info().
			Int64("courseId", course.ID).
			Str("action", string(action)).
			Str("from", string(from)).
			Str("to", string(course.Status)).
			Int64("userId", user.ID).
			Msg("Course transitioned")

		return course, nil
	}

	return nil, fmt.Errorf("course %d: %w: %v", courseID, apperrors.ErrTransitionFailed, lastErr)
}

// BulkTransition applies one action to many courses independently. A failed
// course never aborts the batch; each course reports its own outcome.
func (s *CourseService) BulkTransition(ctx context.Context, user *models.User, courseIDs []int64, action workflow.Action, payload workflow.Payload) []TransitionOutcome {
	outcomes := make([]TransitionOutcome, 0, len(courseIDs))
	for _, id := range courseIDs {
		course, err := s.Transition(ctx, user, id, action, payload)
		outcomes = append(outcomes, TransitionOutcome{CourseID: id, Course: course, Err: err})
	}
	return outcomes
}

// ReviewQueue lists the courses currently awaiting the caller's role
func (s *CourseService) ReviewQueue(ctx context.Context, user *models.User) ([]*models.Course, error) {
	filter := workflow.CourseFilter{School: user.School}

	switch user.Role {
	case models.RoleInstructor:
		// Courses the instructor could claim or re-open.
		filter.Statuses = []models.CourseStatus{models.StatusUnassigned, models.StatusRejected}
	case models.RoleDepartmentHead:
		filter.Department = user.Department
		filter.Statuses = []models.CourseStatus{models.StatusPending}
	case models.RoleSchoolDean:
		filter.Statuses = []models.CourseStatus{
			models.StatusDeanReview,
			models.StatusDepartmentHeadApproved,
			models.StatusViceDirectorRejected,
		}
	case models.RoleViceScientificDirector:
		filter.Statuses = []models.CourseStatus{
			models.StatusDeanApproved,
			models.StatusViceDirectorRejected,
			models.StatusScientificDirectorRejected,
		}
	case models.RoleScientificDirector:
		filter.Statuses = []models.CourseStatus{models.StatusViceDirectorApproved}
	case models.RoleFinance:
		filter.Statuses = []models.CourseStatus{
			models.StatusScientificDirectorApproved,
			models.StatusFinanceReview,
		}
	case models.RoleAdmin:
		filter.School = ""
	default:
		return nil, apperrors.NewPermissionDeniedError("unknown role")
	}

	return s.store.Find(ctx, filter)
}

// GroupByInstructor returns the caller's visible courses bucketed per
// instructor, with aggregate status and workload per bucket
func (s *CourseService) GroupByInstructor(ctx context.Context, user *models.User, filter workflow.CourseFilter) (map[string]*workflow.InstructorGroup, error) {
	courses, err := s.List(ctx, user, filter)
	if err != nil {
		return nil, err
	}
	return workflow.GroupByInstructor(courses), nil
}

// History returns the append-only approval history of a course
func (s *CourseService) History(ctx context.Context, user *models.User, id int64) ([]models.ApprovalEntry, error) {
	course, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return course.ApprovalHistory, nil
}

// AuditEvents lists persisted audit events with the total count, admin only
func (s *CourseService) AuditEvents(ctx context.Context, user *models.User, courseID *int64, limit, offset int) ([]*models.AuditEvent, int64, error) {
	if user.Role != models.RoleAdmin {
		return nil, 0, apperrors.NewPermissionDeniedError("only admins may read the audit trail")
	}
	events, err := s.audits.List(ctx, courseID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.audits.Count(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func canManageCourses(user *models.User) bool {
	return user.Role == models.RoleDepartmentHead || user.Role == models.RoleAdmin
}

func checkReadScope(user *models.User, course *models.Course) error {
	if user.Role == models.RoleAdmin {
		return nil
	}
	if course.School != user.School {
		return apperrors.NewPermissionDeniedError("course belongs to another school").WithCourse(course.ID)
	}
	return nil
}

func scopeFilter(user *models.User, filter *workflow.CourseFilter) {
	if user.Role == models.RoleAdmin {
		return
	}
	filter.School = user.School
	if user.Role == models.RoleDepartmentHead {
		filter.Department = user.Department
	}
}

func retryable(err error) bool {
	return errors.Is(err, apperrors.ErrStaleWrite) || errors.Is(err, apperrors.ErrRepositoryTimeout)
}
