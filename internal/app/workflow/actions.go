package workflow

import (
	"sort"

	"github.com/tsegaye25/load-tracking/internal/app/models"
)

// Action identifies a workflow operation a user may perform on a course.
type Action string

const (
	// ActionSelfAssign is an instructor requesting an unassigned course.
	ActionSelfAssign Action = "self-assign"
	// ActionAssign is a department head assigning an instructor directly.
	ActionAssign Action = "assign"
	// ActionApprove advances a course one stage; the target stage depends on
	// the course's current status.
	ActionApprove Action = "approve"
	// ActionReject moves a course to the rejection state of its current stage.
	ActionReject Action = "reject"
	// ActionRequestApproval re-opens a department-head-rejected request.
	ActionRequestApproval Action = "request-approval"
	// ActionResubmit re-enters a review queue after a rejection. The target
	// stage is an explicit payload parameter, never inferred from context.
	ActionResubmit Action = "resubmit"
	// ActionReturnToDepartment sends a vice-director-rejected course back to
	// the department head.
	ActionReturnToDepartment Action = "return-to-department"
	// ActionReturnToDean sends a scientific-director-rejected course back to
	// the dean or the department head.
	ActionReturnToDean Action = "return-to-dean"
	// ActionFinanceIntake moves a fully approved course into finance review.
	ActionFinanceIntake Action = "finance-intake"

	// ActionEdit and ActionDelete are not status transitions; the resolver
	// reports them so callers can gate course mutation endpoints.
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Payload carries the optional parameters of a transition.
type Payload struct {
	// Reason is required for every rejection and return action.
	Reason string `json:"reason,omitempty"`
	// TargetInstructorID is required for ActionAssign.
	TargetInstructorID *int64 `json:"targetInstructorId,omitempty"`
	// Target names the destination stage of ActionResubmit and
	// ActionReturnToDean.
	Target models.CourseStatus `json:"target,omitempty"`
}

// ActionSet is the set of actions legal for a user on a course. Absence of
// permission is modeled as absence from the set, never as an error.
type ActionSet map[Action]struct{}

// Contains reports whether the set includes the action.
func (s ActionSet) Contains(a Action) bool {
	_, ok := s[a]
	return ok
}

func (s ActionSet) add(actions ...Action) {
	for _, a := range actions {
		s[a] = struct{}{}
	}
}

// List returns the actions in a stable order for serialization.
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
