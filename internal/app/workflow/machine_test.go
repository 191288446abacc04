package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

func testMachine() *Machine {
	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	tick := 0
	return NewMachineWithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
}

func testUser(id int64, role models.Role) *models.User {
	return &models.User{
		ID:         id,
		Role:       role,
		Department: "Software Engineering",
		School:     "School of Computing",
		FirstName:  "Test",
		LastName:   string(role),
	}
}

func testCourse(status models.CourseStatus) *models.Course {
	return &models.Course{
		ID:         7,
		Code:       "SWEG3104",
		Title:      "Compiler Design",
		Department: "Software Engineering",
		School:     "School of Computing",
		ClassYear:  "3rd",
		Semester:   models.SemesterOne,
		HourFor:    models.HourFor{CreditHours: 5, Lecture: 3, Lab: 3},
		NumberOfSections: models.SectionCount{
			Lecture: 1,
			Lab:     2,
		},
		Status: status,
	}
}

func TestSelfAssign_SetsRequesterAndPending(t *testing.T) {
	m := testMachine()
	instructor := testUser(10, models.RoleInstructor)
	course := testCourse(models.StatusUnassigned)

	if err := m.Apply(instructor, course, ActionSelfAssign, Payload{}); err != nil {
		t.Fatalf("self-assign failed: %v", err)
	}
	if course.Status != models.StatusPending {
		t.Fatalf("status = %q, want pending", course.Status)
	}
	if course.RequestedByID == nil || *course.RequestedByID != 10 {
		t.Fatalf("requestedBy = %v, want 10", course.RequestedByID)
	}
	if course.InstructorID != nil {
		t.Fatalf("instructor must stay unset until approved, got %v", *course.InstructorID)
	}
	if len(course.ApprovalHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(course.ApprovalHistory))
	}
}

func TestSelfAssign_TwiceConflicts(t *testing.T) {
	m := testMachine()
	instructor := testUser(10, models.RoleInstructor)
	course := testCourse(models.StatusUnassigned)

	if err := m.Apply(instructor, course, ActionSelfAssign, Payload{}); err != nil {
		t.Fatalf("first self-assign failed: %v", err)
	}
	err := m.Apply(instructor, course, ActionSelfAssign, Payload{})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("second self-assign error = %v, want ErrConflict", err)
	}
	if apperrors.ConflictCode(err) != apperrors.ConflictPendingElsewhere {
		t.Fatalf("conflict code = %q, want %q", apperrors.ConflictCode(err), apperrors.ConflictPendingElsewhere)
	}
	if len(course.ApprovalHistory) != 1 {
		t.Fatalf("refused transition must not append history, length = %d", len(course.ApprovalHistory))
	}
}

func TestSelfAssign_RefusedForPreviouslyRejectedInstructor(t *testing.T) {
	m := testMachine()
	instructor := testUser(10, models.RoleInstructor)
	course := testCourse(models.StatusRejected)
	course.RejectedRequesters = []int64{10}

	err := m.Apply(instructor, course, ActionSelfAssign, Payload{})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if apperrors.ConflictCode(err) != apperrors.ConflictPreviouslyRejected {
		t.Fatalf("conflict code = %q, want %q", apperrors.ConflictCode(err), apperrors.ConflictPreviouslyRejected)
	}
}

func TestSelfAssign_RefusedWhenAlreadyAssigned(t *testing.T) {
	m := testMachine()
	instructor := testUser(10, models.RoleInstructor)
	other := int64(11)
	course := testCourse(models.StatusDeanReview)
	course.InstructorID = &other

	err := m.Apply(instructor, course, ActionSelfAssign, Payload{})
	if apperrors.ConflictCode(err) != apperrors.ConflictAlreadyAssigned {
		t.Fatalf("conflict code = %q, want %q", apperrors.ConflictCode(err), apperrors.ConflictAlreadyAssigned)
	}
}

func TestReject_RequiresReason(t *testing.T) {
	m := testMachine()
	head := testUser(20, models.RoleDepartmentHead)
	requester := int64(10)
	course := testCourse(models.StatusPending)
	course.RequestedByID = &requester

	err := m.Apply(head, course, ActionReject, Payload{})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("error = %v, want ErrValidationFailed", err)
	}
	if course.Status != models.StatusPending {
		t.Fatalf("status changed on refused transition: %q", course.Status)
	}
}

func TestRejectionRoundTrip_HistoryAndCacheStayConsistent(t *testing.T) {
	m := testMachine()
	instructor := testUser(10, models.RoleInstructor)
	head := testUser(20, models.RoleDepartmentHead)

	course := testCourse(models.StatusUnassigned)
	if err := m.Apply(instructor, course, ActionSelfAssign, Payload{}); err != nil {
		t.Fatalf("self-assign: %v", err)
	}
	if err := m.Apply(head, course, ActionReject, Payload{Reason: "X"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if course.Status != models.StatusRejected {
		t.Fatalf("status = %q, want rejected", course.Status)
	}
	if course.RejectedBy == nil || course.RejectedBy.ID != 20 || course.RejectedBy.Role != models.RoleDepartmentHead {
		t.Fatalf("rejectedBy = %+v, want department head 20", course.RejectedBy)
	}
	if course.RejectionReason != "X" {
		t.Fatalf("rejectionReason = %q, want X", course.RejectionReason)
	}

	// The instructor re-requests and the department head approves this time.
	if err := m.Apply(instructor, course, ActionRequestApproval, Payload{}); err != nil {
		t.Fatalf("request-approval: %v", err)
	}
	if err := m.Apply(head, course, ActionApprove, Payload{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rejections := 0
	for _, entry := range course.ApprovalHistory {
		if entry.Status.IsRejection() {
			rejections++
			if entry.Comment != "X" {
				t.Fatalf("rejection comment = %q, want X", entry.Comment)
			}
		}
	}
	if rejections != 1 {
		t.Fatalf("history rejection entries = %d, want exactly 1", rejections)
	}

	// The approval must not touch the denormalized rejection cache.
	if course.RejectedBy == nil || course.RejectedBy.ID != 20 || course.RejectionReason != "X" {
		t.Fatalf("rejection cache mutated by approval: rejectedBy=%+v reason=%q",
			course.RejectedBy, course.RejectionReason)
	}
	if course.InstructorID == nil || *course.InstructorID != 10 {
		t.Fatalf("instructor = %v, want 10 after approval", course.InstructorID)
	}
	if course.RequestedByID != nil {
		t.Fatalf("requestedBy must be cleared after approval, got %v", *course.RequestedByID)
	}
}

func TestEndToEndApprovalChain(t *testing.T) {
	m := testMachine()
	head := testUser(20, models.RoleDepartmentHead)
	dean := testUser(30, models.RoleSchoolDean)
	vice := testUser(40, models.RoleViceScientificDirector)
	director := testUser(50, models.RoleScientificDirector)
	finance := testUser(60, models.RoleFinance)

	instructorID := int64(10)
	course := testCourse(models.StatusUnassigned)
	course.HourFor = models.HourFor{CreditHours: 4, Lecture: 4}
	course.NumberOfSections = models.SectionCount{Lecture: 1}

	steps := []struct {
		user   *models.User
		action Action
		want   models.CourseStatus
	}{
		{head, ActionAssign, models.StatusDeanReview},
		{dean, ActionApprove, models.StatusDeanApproved},
		{vice, ActionApprove, models.StatusViceDirectorApproved},
		{director, ActionApprove, models.StatusScientificDirectorApproved},
		{finance, ActionFinanceIntake, models.StatusFinanceReview},
		{finance, ActionApprove, models.StatusFinanceApproved},
	}
	for i, step := range steps {
		payload := Payload{}
		if step.action == ActionAssign {
			payload.TargetInstructorID = &instructorID
		}
		if err := m.Apply(step.user, course, step.action, payload); err != nil {
			t.Fatalf("step %d (%s by %s): %v", i, step.action, step.user.Role, err)
		}
		if course.Status != step.want {
			t.Fatalf("step %d: status = %q, want %q", i, course.Status, step.want)
		}
	}

	if !course.Status.IsTerminal() {
		t.Fatalf("finance-approved must be terminal")
	}
	if len(course.ApprovalHistory) != len(steps) {
		t.Fatalf("history length = %d, want %d (one entry per explicit transition)",
			len(course.ApprovalHistory), len(steps))
	}
	for i, entry := range course.ApprovalHistory {
		if entry.Status != steps[i].want {
			t.Fatalf("history[%d].status = %q, want %q", i, entry.Status, steps[i].want)
		}
		if entry.ActorID != steps[i].user.ID {
			t.Fatalf("history[%d].actorId = %d, want %d", i, entry.ActorID, steps[i].user.ID)
		}
	}
}

func TestApply_TerminalStateRefusesEverything(t *testing.T) {
	m := testMachine()
	finance := testUser(60, models.RoleFinance)
	course := testCourse(models.StatusFinanceApproved)

	err := m.Apply(finance, course, ActionApprove, Payload{})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
}

func TestApply_WrongRoleIsPermissionDenied(t *testing.T) {
	m := testMachine()
	dean := testUser(30, models.RoleSchoolDean)
	requester := int64(10)
	course := testCourse(models.StatusPending)
	course.RequestedByID = &requester

	err := m.Apply(dean, course, ActionApprove, Payload{})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestResubmit_TargetIsExplicit(t *testing.T) {
	m := testMachine()
	vice := testUser(40, models.RoleViceScientificDirector)

	course := testCourse(models.StatusViceDirectorRejected)
	err := m.Apply(vice, course, ActionResubmit, Payload{Target: models.StatusDeanReview})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("wrong target: error = %v, want ErrValidationFailed", err)
	}

	if err := m.Apply(vice, course, ActionResubmit, Payload{Target: models.StatusDeanApproved}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if course.Status != models.StatusDeanApproved {
		t.Fatalf("status = %q, want dean-approved (back in vice-director queue)", course.Status)
	}
}

func TestReturnToDean_TargetSelectsStage(t *testing.T) {
	m := testMachine()
	vice := testUser(40, models.RoleViceScientificDirector)

	course := testCourse(models.StatusScientificDirectorRejected)
	if err := m.Apply(vice, course, ActionReturnToDean, Payload{Reason: "revise hours"}); err != nil {
		t.Fatalf("return-to-dean: %v", err)
	}
	if course.Status != models.StatusDeanRejected {
		t.Fatalf("status = %q, want dean-rejected by default", course.Status)
	}

	course = testCourse(models.StatusScientificDirectorRejected)
	err := m.Apply(vice, course, ActionReturnToDean, Payload{
		Reason: "needs department rework",
		Target: models.StatusDepartmentHeadRejected,
	})
	if err != nil {
		t.Fatalf("return-to-dean with explicit target: %v", err)
	}
	if course.Status != models.StatusDepartmentHeadRejected {
		t.Fatalf("status = %q, want department-head-rejected", course.Status)
	}
	if course.RejectedBy == nil || course.RejectedBy.Role != models.RoleViceScientificDirector {
		t.Fatalf("rejectedBy = %+v, want vice director snapshot", course.RejectedBy)
	}
}

func TestResubmitToDean_OnlyAfterDeanRejection(t *testing.T) {
	m := testMachine()
	instructor := testUser(10, models.RoleInstructor)

	course := testCourse(models.StatusRejected)
	course.ApprovalHistory = []models.ApprovalEntry{
		{Status: models.StatusRejected, ActorID: 20, Role: models.RoleDepartmentHead, Comment: "no"},
	}
	err := m.Apply(instructor, course, ActionResubmit, Payload{Target: models.StatusDeanReview})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied without a dean rejection on record", err)
	}

	course.ApprovalHistory = append(course.ApprovalHistory, models.ApprovalEntry{
		Status: models.StatusDeanRejected, ActorID: 30, Role: models.RoleSchoolDean, Comment: "fix sections",
	})
	if err := m.Apply(instructor, course, ActionResubmit, Payload{Target: models.StatusDeanReview}); err != nil {
		t.Fatalf("resubmit after dean rejection: %v", err)
	}
	if course.Status != models.StatusDeanReview {
		t.Fatalf("status = %q, want dean-review", course.Status)
	}
}

func TestApply_LegacyDepartmentHeadApprovedSitsInDeanQueue(t *testing.T) {
	m := testMachine()
	dean := testUser(30, models.RoleSchoolDean)
	course := testCourse(models.StatusDepartmentHeadApproved)

	if err := m.Apply(dean, course, ActionApprove, Payload{}); err != nil {
		t.Fatalf("dean approve on legacy status: %v", err)
	}
	if course.Status != models.StatusDeanApproved {
		t.Fatalf("status = %q, want dean-approved", course.Status)
	}
}
