package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/app/notify"
	"github.com/tsegaye25/load-tracking/internal/app/workflow"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

// fakeCourseStore is an in-memory CourseStore with the same
// compare-and-swap semantics as the PostgreSQL repository.
type fakeCourseStore struct {
	mu      sync.Mutex
	courses map[int64]*models.Course
	nextID  int64

	// failUpdates makes the next n Update calls fail with failErr.
	failUpdates int
	failErr     error
	updateCalls int
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: make(map[int64]*models.Course), nextID: 1}
}

func (f *fakeCourseStore) put(c *models.Course) *models.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	}
	cp := *c
	f.courses[c.ID] = &cp
	return c
}

func (f *fakeCourseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *c
	cp.ApprovalHistory = append([]models.ApprovalEntry(nil), c.ApprovalHistory...)
	return &cp, nil
}

func (f *fakeCourseStore) Find(_ context.Context, filter workflow.CourseFilter) ([]*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Course
	for _, c := range f.courses {
		if filter.School != "" && c.School != filter.School {
			continue
		}
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.InstructorID != nil && (c.InstructorID == nil || *c.InstructorID != *filter.InstructorID) {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if c.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCourseStore) Create(_ context.Context, c *models.Course) error {
	f.put(c)
	return nil
}

func (f *fakeCourseStore) Update(_ context.Context, c *models.Course, expected time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdates > 0 {
		f.failUpdates--
		return f.failErr
	}
	stored, ok := f.courses[c.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if !stored.UpdatedAt.Equal(expected) {
		return apperrors.ErrStaleWrite
	}
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeCourseStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(f.courses, id)
	return nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingEmitter) Emit(e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func deanUser() *models.User {
	return &models.User{
		ID:     7,
		Role:   models.RoleSchoolDean,
		School: "School of Computing",
	}
}

func deanReviewCourse(id int64) *models.Course {
	iid := int64(42)
	return &models.Course{
		ID:              id,
		Code:            "SWEG3104",
		Title:           "Software Project Management",
		Department:      "Software Engineering",
		School:          "School of Computing",
		Status:          models.StatusDeanReview,
		InstructorID:    &iid,
		ApprovalHistory: []models.ApprovalEntry{},
		UpdatedAt:       time.Now().UTC().Add(-time.Hour),
	}
}

func TestTransitionPersistsAndEmits(t *testing.T) {
	store := newFakeCourseStore()
	store.put(deanReviewCourse(1))
	emitter := &recordingEmitter{}
	svc := NewCourseService(store, nil, emitter)

	course, err := svc.Transition(context.Background(), deanUser(), 1, workflow.ActionApprove, workflow.Payload{})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if course.Status != models.StatusDeanApproved {
		t.Fatalf("status = %q, want %q", course.Status, models.StatusDeanApproved)
	}

	stored, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.StatusDeanApproved {
		t.Fatalf("stored status = %q, want %q", stored.Status, models.StatusDeanApproved)
	}
	if len(stored.ApprovalHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(stored.ApprovalHistory))
	}
	if emitter.count() != 1 {
		t.Fatalf("emitted %d events, want 1", emitter.count())
	}
	if got := emitter.events[0]; got.FromStatus != models.StatusDeanReview || got.ToStatus != models.StatusDeanApproved {
		t.Fatalf("event statuses = %q -> %q", got.FromStatus, got.ToStatus)
	}
}

func TestTransitionRetriesStaleWrite(t *testing.T) {
	store := newFakeCourseStore()
	store.put(deanReviewCourse(1))
	store.failUpdates = 1
	store.failErr = apperrors.ErrStaleWrite
	svc := NewCourseService(store, nil, nil)

	course, err := svc.Transition(context.Background(), deanUser(), 1, workflow.ActionApprove, workflow.Payload{})
	if err != nil {
		t.Fatalf("Transition after one stale write: %v", err)
	}
	if course.Status != models.StatusDeanApproved {
		t.Fatalf("status = %q, want %q", course.Status, models.StatusDeanApproved)
	}
	if store.updateCalls != 2 {
		t.Fatalf("update calls = %d, want 2", store.updateCalls)
	}
}

func TestTransitionExhaustedRetries(t *testing.T) {
	store := newFakeCourseStore()
	store.put(deanReviewCourse(1))
	store.failUpdates = maxTransitionAttempts
	store.failErr = apperrors.ErrStaleWrite
	emitter := &recordingEmitter{}
	svc := NewCourseService(store, nil, emitter)

	_, err := svc.Transition(context.Background(), deanUser(), 1, workflow.ActionApprove, workflow.Payload{})
	if !errors.Is(err, apperrors.ErrTransitionFailed) {
		t.Fatalf("err = %v, want ErrTransitionFailed", err)
	}
	if emitter.count() != 0 {
		t.Fatalf("emitted %d events after failure, want 0", emitter.count())
	}
}

func TestTransitionPermissionErrorNotRetried(t *testing.T) {
	store := newFakeCourseStore()
	store.put(deanReviewCourse(1))
	svc := NewCourseService(store, nil, nil)

	wrongRole := &models.User{ID: 9, Role: models.RoleFinance, School: "School of Computing"}
	_, err := svc.Transition(context.Background(), wrongRole, 1, workflow.ActionApprove, workflow.Payload{})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if store.updateCalls != 0 {
		t.Fatalf("update calls = %d, want 0", store.updateCalls)
	}
}

func TestBulkTransitionNeverAborts(t *testing.T) {
	store := newFakeCourseStore()
	store.put(deanReviewCourse(1))
	terminal := deanReviewCourse(2)
	terminal.Status = models.StatusFinanceApproved
	store.put(terminal)
	store.put(deanReviewCourse(3))
	svc := NewCourseService(store, nil, nil)

	outcomes := svc.BulkTransition(context.Background(), deanUser(), []int64{1, 2, 3},
		workflow.ActionApprove, workflow.Payload{})

	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	if outcomes[0].Err != nil {
		t.Fatalf("course 1 failed: %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, apperrors.ErrInvalidTransition) {
		t.Fatalf("course 2 err = %v, want ErrInvalidTransition", outcomes[1].Err)
	}
	if outcomes[2].Err != nil {
		t.Fatalf("course 3 failed: %v", outcomes[2].Err)
	}

	third, _ := store.GetByID(context.Background(), 3)
	if third.Status != models.StatusDeanApproved {
		t.Fatalf("course 3 status = %q, want %q", third.Status, models.StatusDeanApproved)
	}
}

func TestUpdateImmutableCourseConflicts(t *testing.T) {
	store := newFakeCourseStore()
	course := deanReviewCourse(1)
	store.put(course)
	svc := NewCourseService(store, nil, nil)

	head := &models.User{
		ID:         3,
		Role:       models.RoleDepartmentHead,
		Department: "Software Engineering",
		School:     "School of Computing",
	}
	_, err := svc.Update(context.Background(), head, 1, &dto.UpdateCourseRequest{Title: "Renamed"})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if code := apperrors.ConflictCode(err); code != apperrors.ConflictCourseImmutable {
		t.Fatalf("conflict code = %q, want %q", code, apperrors.ConflictCourseImmutable)
	}
}

func TestReviewQueueScopesByRole(t *testing.T) {
	store := newFakeCourseStore()
	store.put(deanReviewCourse(1))
	pending := deanReviewCourse(2)
	pending.Status = models.StatusPending
	pending.InstructorID = nil
	store.put(pending)
	otherSchool := deanReviewCourse(3)
	otherSchool.School = "School of Civil Engineering"
	store.put(otherSchool)
	svc := NewCourseService(store, nil, nil)

	queue, err := svc.ReviewQueue(context.Background(), deanUser())
	if err != nil {
		t.Fatalf("ReviewQueue: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != 1 {
		t.Fatalf("dean queue = %v, want just course 1", queue)
	}
}

func TestCreateCourseStartsUnassigned(t *testing.T) {
	store := newFakeCourseStore()
	svc := NewCourseService(store, nil, nil)

	head := &models.User{
		ID:         3,
		Role:       models.RoleDepartmentHead,
		Department: "Software Engineering",
		School:     "School of Computing",
	}
	course, err := svc.Create(context.Background(), head, &dto.CreateCourseRequest{
		Code:       "SWEG3104",
		Title:      "Software Project Management",
		Department: "Software Engineering",
		School:     "School of Computing",
		ClassYear:  "3",
		Semester:   models.SemesterOne,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if course.Status != models.StatusUnassigned {
		t.Fatalf("status = %q, want %q", course.Status, models.StatusUnassigned)
	}
	if course.ApprovalHistory == nil || len(course.ApprovalHistory) != 0 {
		t.Fatalf("new course history = %v, want empty non-nil", course.ApprovalHistory)
	}

	instructor := &models.User{ID: 4, Role: models.RoleInstructor, School: "School of Computing"}
	if _, err := svc.Create(context.Background(), instructor, &dto.CreateCourseRequest{
		Code: "SWEG3104", Title: "x", Department: "d", School: "s", ClassYear: "3", Semester: models.SemesterOne,
	}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("instructor create err = %v, want ErrPermissionDenied", err)
	}
}
