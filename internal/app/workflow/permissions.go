package workflow

import "github.com/tsegaye25/load-tracking/internal/app/models"

// AllowedActions resolves the set of legal actions for a user on a course.
// Pure and side-effect free; safe for any number of concurrent callers. The
// state machine re-checks membership on every transition, so callers that
// skip this resolver still cannot bypass the guards.
func AllowedActions(user *models.User, course *models.Course) ActionSet {
	actions := make(ActionSet)
	if user == nil || course == nil {
		return actions
	}

	switch user.Role {
	case models.RoleInstructor:
		if course.School != user.School {
			return actions
		}
		if canSelfAssign(user, course) {
			actions.add(ActionSelfAssign)
		}
		if course.Status == models.StatusRejected {
			actions.add(ActionRequestApproval)
			// Resubmission straight to the dean queue is only open when the
			// dean was the stage that rejected.
			if hasRejectionAtStage(course, models.StatusDeanRejected) {
				actions.add(ActionResubmit)
			}
		}

	case models.RoleDepartmentHead:
		if course.Department != user.Department || course.School != user.School {
			return actions
		}
		if course.Status == models.StatusPending {
			actions.add(ActionApprove, ActionReject)
		}
		if course.Status == models.StatusUnassigned && !course.Assigned() && course.RequestedByID == nil {
			actions.add(ActionAssign)
		}
		if departmentHeadMayMutate(course) {
			actions.add(ActionEdit, ActionDelete)
		}

	case models.RoleSchoolDean:
		if course.School != user.School {
			return actions
		}
		if atDeanReview(course.Status) {
			actions.add(ActionApprove, ActionReject)
		}
		if course.Status == models.StatusViceDirectorRejected {
			actions.add(ActionResubmit, ActionReturnToDepartment)
		}

	case models.RoleViceScientificDirector:
		if course.School != user.School {
			return actions
		}
		switch course.Status {
		case models.StatusDeanApproved:
			actions.add(ActionApprove, ActionReject)
		case models.StatusViceDirectorRejected:
			actions.add(ActionResubmit, ActionReturnToDepartment)
		case models.StatusScientificDirectorRejected:
			actions.add(ActionResubmit, ActionReturnToDean)
		}

	case models.RoleScientificDirector:
		if course.School != user.School {
			return actions
		}
		if course.Status == models.StatusViceDirectorApproved {
			actions.add(ActionApprove, ActionReject)
		}

	case models.RoleFinance:
		if course.School != user.School {
			return actions
		}
		switch course.Status {
		case models.StatusScientificDirectorApproved:
			actions.add(ActionFinanceIntake)
		case models.StatusFinanceReview:
			actions.add(ActionApprove, ActionReject)
		}

	case models.RoleAdmin:
		actions.add(ActionEdit, ActionDelete)
		if course.Status == models.StatusUnassigned && !course.Assigned() && course.RequestedByID == nil {
			actions.add(ActionAssign)
		}
	}

	return actions
}

// canSelfAssign: the course has no instructor, is in
// the caller's school, is not pending for anyone, and the caller was not
// already rejected for this exact course.
func canSelfAssign(user *models.User, course *models.Course) bool {
	if course.Assigned() || course.Status == models.StatusPending {
		return false
	}
	if course.Status != models.StatusUnassigned && course.Status != models.StatusRejected {
		return false
	}
	if course.Status == models.StatusRejected && course.RejectedForUser(user.ID) {
		return false
	}
	return true
}

// departmentHeadMayMutate enforces the edit/delete policy: once a course has
// cleared the department-head and dean stages it is immutable to department
// heads except via the formal reject/resubmit transitions.
func departmentHeadMayMutate(course *models.Course) bool {
	if !course.Assigned() {
		return true
	}
	switch course.Status {
	case models.StatusPending, models.StatusRejected, models.StatusDeanRejected,
		models.StatusDepartmentHeadRejected:
		return true
	}
	return false
}

// atDeanReview treats the legacy department-head-approved status as already
// being in the dean queue.
func atDeanReview(s models.CourseStatus) bool {
	return s == models.StatusDeanReview || s == models.StatusDepartmentHeadApproved
}

func hasRejectionAtStage(course *models.Course, stage models.CourseStatus) bool {
	for _, entry := range course.ApprovalHistory {
		if entry.Status == stage {
			return true
		}
	}
	return false
}
