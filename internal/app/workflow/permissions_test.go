package workflow

import (
	"testing"

	"github.com/tsegaye25/load-tracking/internal/app/models"
)

func TestAllowedActions_NoLeaksAcrossSchoolBoundaries(t *testing.T) {
	course := testCourse(models.StatusPending)
	requester := int64(10)
	course.RequestedByID = &requester

	roles := []models.Role{
		models.RoleInstructor,
		models.RoleDepartmentHead,
		models.RoleSchoolDean,
		models.RoleViceScientificDirector,
		models.RoleScientificDirector,
		models.RoleFinance,
	}
	for _, role := range roles {
		outsider := testUser(99, role)
		outsider.School = "School of Civil Engineering"
		outsider.Department = "Civil Engineering"

		// Run the outsider against every status so no stage leaks.
		for _, status := range models.AllStatuses {
			c := testCourse(status)
			if got := AllowedActions(outsider, c); len(got) != 0 {
				t.Fatalf("role %s from another school got %v on status %q", role, got.List(), status)
			}
		}
	}
}

func TestAllowedActions_DepartmentBoundaryForHead(t *testing.T) {
	course := testCourse(models.StatusPending)
	requester := int64(10)
	course.RequestedByID = &requester

	head := testUser(20, models.RoleDepartmentHead)
	head.Department = "Information Systems" // same school, other department
	if got := AllowedActions(head, course); len(got) != 0 {
		t.Fatalf("department head of another department got %v", got.List())
	}
}

func TestAllowedActions_DepartmentHeadOnPending(t *testing.T) {
	course := testCourse(models.StatusPending)
	requester := int64(10)
	course.RequestedByID = &requester

	head := testUser(20, models.RoleDepartmentHead)
	got := AllowedActions(head, course)
	for _, want := range []Action{ActionApprove, ActionReject, ActionEdit, ActionDelete} {
		if !got.Contains(want) {
			t.Fatalf("missing %q for department head on pending course, got %v", want, got.List())
		}
	}
	if got.Contains(ActionAssign) {
		t.Fatalf("assign must not be offered while a request is pending")
	}
}

func TestAllowedActions_AssignOnlyWhenCompletelyUnclaimed(t *testing.T) {
	head := testUser(20, models.RoleDepartmentHead)

	course := testCourse(models.StatusUnassigned)
	if got := AllowedActions(head, course); !got.Contains(ActionAssign) {
		t.Fatalf("expected assign on unclaimed course, got %v", got.List())
	}

	requester := int64(10)
	course.RequestedByID = &requester
	if got := AllowedActions(head, course); got.Contains(ActionAssign) {
		t.Fatalf("assign offered despite an open request")
	}
}

func TestAllowedActions_InstructorSelfAssign(t *testing.T) {
	instructor := testUser(10, models.RoleInstructor)

	course := testCourse(models.StatusUnassigned)
	if got := AllowedActions(instructor, course); !got.Contains(ActionSelfAssign) {
		t.Fatalf("expected self-assign on unassigned course, got %v", got.List())
	}

	pending := testCourse(models.StatusPending)
	other := int64(11)
	pending.RequestedByID = &other
	if got := AllowedActions(instructor, pending); got.Contains(ActionSelfAssign) {
		t.Fatalf("self-assign offered on a pending course")
	}

	rejected := testCourse(models.StatusRejected)
	rejected.RejectedRequesters = []int64{10}
	got := AllowedActions(instructor, rejected)
	if got.Contains(ActionSelfAssign) {
		t.Fatalf("self-assign offered to previously rejected instructor")
	}
	if !got.Contains(ActionRequestApproval) {
		t.Fatalf("request-approval must stay open on rejected courses, got %v", got.List())
	}
}

func TestAllowedActions_DeanQueueIncludesLegacyStatus(t *testing.T) {
	dean := testUser(30, models.RoleSchoolDean)
	for _, status := range []models.CourseStatus{models.StatusDeanReview, models.StatusDepartmentHeadApproved} {
		course := testCourse(status)
		got := AllowedActions(dean, course)
		if !got.Contains(ActionApprove) || !got.Contains(ActionReject) {
			t.Fatalf("dean on %q got %v, want approve and reject", status, got.List())
		}
	}
}

func TestAllowedActions_DepartmentHeadEditPolicy(t *testing.T) {
	head := testUser(20, models.RoleDepartmentHead)
	instructorID := int64(10)

	locked := testCourse(models.StatusDeanApproved)
	locked.InstructorID = &instructorID
	if got := AllowedActions(head, locked); got.Contains(ActionEdit) || got.Contains(ActionDelete) {
		t.Fatalf("edit/delete offered on a course past the dean stage: %v", got.List())
	}

	reopened := testCourse(models.StatusDeanRejected)
	reopened.InstructorID = &instructorID
	if got := AllowedActions(head, reopened); !got.Contains(ActionEdit) {
		t.Fatalf("edit must reopen on dean-rejected courses, got %v", got.List())
	}
}

func TestAllowedActions_StageRolesSeeOnlyTheirStage(t *testing.T) {
	cases := []struct {
		role   models.Role
		status models.CourseStatus
		want   []Action
	}{
		{models.RoleViceScientificDirector, models.StatusDeanApproved, []Action{ActionApprove, ActionReject}},
		{models.RoleScientificDirector, models.StatusViceDirectorApproved, []Action{ActionApprove, ActionReject}},
		{models.RoleFinance, models.StatusScientificDirectorApproved, []Action{ActionFinanceIntake}},
		{models.RoleFinance, models.StatusFinanceReview, []Action{ActionApprove, ActionReject}},
	}
	for _, tc := range cases {
		user := testUser(77, tc.role)
		got := AllowedActions(user, testCourse(tc.status))
		if len(got) != len(tc.want) {
			t.Fatalf("%s on %q: got %v, want %v", tc.role, tc.status, got.List(), tc.want)
		}
		for _, a := range tc.want {
			if !got.Contains(a) {
				t.Fatalf("%s on %q: missing %q in %v", tc.role, tc.status, a, got.List())
			}
		}

		// One stage earlier or later the same role sees nothing.
		if got := AllowedActions(user, testCourse(models.StatusUnassigned)); len(got) != 0 {
			t.Fatalf("%s leaked %v onto unassigned courses", tc.role, got.List())
		}
	}
}
