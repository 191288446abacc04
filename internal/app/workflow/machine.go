package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

// transitionRule describes one legal (status, action) pair.
type transitionRule struct {
	needsReason bool
	// resolve validates the payload and returns the destination status.
	resolve func(course *models.Course, p Payload) (models.CourseStatus, error)
	// apply performs side effects beyond the status change itself.
	apply func(course *models.Course, user *models.User, p Payload)
}

func fixedTarget(target models.CourseStatus) func(*models.Course, Payload) (models.CourseStatus, error) {
	return func(*models.Course, Payload) (models.CourseStatus, error) { return target, nil }
}

// transitionTable is the single owner of the approval-chain topology. Guards
// on who may trigger each row live in AllowedActions; this table owns where
// each action leads.
var transitionTable = map[models.CourseStatus]map[Action]transitionRule{
	models.StatusUnassigned: {
		ActionSelfAssign: {
			resolve: fixedTarget(models.StatusPending),
			apply: func(c *models.Course, u *models.User, _ Payload) {
				c.RequestedByID = &u.ID
			},
		},
		ActionAssign: {
			resolve: func(_ *models.Course, p Payload) (models.CourseStatus, error) {
				if p.TargetInstructorID == nil {
					return "", apperrors.NewValidationError("targetInstructorId", "an instructor must be named for a direct assignment")
				}
				return models.StatusDeanReview, nil
			},
			apply: func(c *models.Course, _ *models.User, p Payload) {
				c.InstructorID = p.TargetInstructorID
			},
		},
	},
	models.StatusPending: {
		ActionApprove: {
			resolve: func(c *models.Course, _ Payload) (models.CourseStatus, error) {
				if c.RequestedByID == nil {
					return "", apperrors.NewInvalidTransitionError("pending course has no requester to approve")
				}
				return models.StatusDeanReview, nil
			},
			apply: func(c *models.Course, _ *models.User, _ Payload) {
				c.InstructorID = c.RequestedByID
				c.RequestedByID = nil
			},
		},
		ActionReject: {
			needsReason: true,
			resolve:     fixedTarget(models.StatusRejected),
			apply: func(c *models.Course, _ *models.User, _ Payload) {
				if c.RequestedByID != nil {
					c.RejectedRequesters = append(c.RejectedRequesters, *c.RequestedByID)
					c.RequestedByID = nil
				}
			},
		},
	},
	models.StatusRejected: {
		ActionSelfAssign: {
			resolve: fixedTarget(models.StatusPending),
			apply: func(c *models.Course, u *models.User, _ Payload) {
				c.RequestedByID = &u.ID
			},
		},
		ActionRequestApproval: {
			resolve: fixedTarget(models.StatusPending),
			apply: func(c *models.Course, u *models.User, _ Payload) {
				c.RequestedByID = &u.ID
			},
		},
		ActionResubmit: {
			resolve: func(c *models.Course, p Payload) (models.CourseStatus, error) {
				if p.Target != models.StatusDeanReview {
					return "", apperrors.NewValidationError("target", "resubmission from this stage must target dean-review")
				}
				if !hasRejectionAtStage(c, models.StatusDeanRejected) {
					return "", apperrors.NewInvalidTransitionError("course was never rejected by the dean")
				}
				return models.StatusDeanReview, nil
			},
		},
	},
	models.StatusDeanReview: {
		ActionApprove: {resolve: fixedTarget(models.StatusDeanApproved)},
		ActionReject:  {needsReason: true, resolve: fixedTarget(models.StatusDeanRejected)},
	},
	models.StatusDeanApproved: {
		ActionApprove: {resolve: fixedTarget(models.StatusViceDirectorApproved)},
		ActionReject:  {needsReason: true, resolve: fixedTarget(models.StatusViceDirectorRejected)},
	},
	models.StatusViceDirectorRejected: {
		ActionResubmit: {
			resolve: func(_ *models.Course, p Payload) (models.CourseStatus, error) {
				if p.Target != models.StatusDeanApproved {
					return "", apperrors.NewValidationError("target", "resubmission from this stage must target dean-approved")
				}
				return models.StatusDeanApproved, nil
			},
		},
		ActionReturnToDepartment: {
			needsReason: true,
			resolve:     fixedTarget(models.StatusDepartmentHeadRejected),
		},
	},
	models.StatusViceDirectorApproved: {
		ActionApprove: {resolve: fixedTarget(models.StatusScientificDirectorApproved)},
		ActionReject:  {needsReason: true, resolve: fixedTarget(models.StatusScientificDirectorRejected)},
	},
	models.StatusScientificDirectorRejected: {
		ActionResubmit: {
			resolve: func(_ *models.Course, p Payload) (models.CourseStatus, error) {
				if p.Target != models.StatusDeanApproved {
					return "", apperrors.NewValidationError("target", "resubmission from this stage must target dean-approved")
				}
				return models.StatusDeanApproved, nil
			},
		},
		ActionReturnToDean: {
			needsReason: true,
			resolve: func(_ *models.Course, p Payload) (models.CourseStatus, error) {
				switch p.Target {
				case "", models.StatusDeanRejected:
					return models.StatusDeanRejected, nil
				case models.StatusDepartmentHeadRejected:
					return models.StatusDepartmentHeadRejected, nil
				}
				return "", apperrors.NewValidationError("target", "return target must be dean-rejected or department-head-rejected")
			},
		},
	},
	models.StatusScientificDirectorApproved: {
		ActionFinanceIntake: {resolve: fixedTarget(models.StatusFinanceReview)},
	},
	models.StatusFinanceReview: {
		ActionApprove: {resolve: fixedTarget(models.StatusFinanceApproved)},
		ActionReject:  {needsReason: true, resolve: fixedTarget(models.StatusFinanceRejected)},
	},
}

func init() {
	// The legacy department-head-approved status sits in the dean queue.
	transitionTable[models.StatusDepartmentHeadApproved] = transitionTable[models.StatusDeanReview]
}

// Machine validates and applies status transitions. It is stateless apart
// from the clock and safe for concurrent use.
type Machine struct {
	now func() time.Time
}

// NewMachine creates a state machine using the wall clock.
func NewMachine() *Machine {
	return &Machine{now: time.Now}
}

// NewMachineWithClock creates a state machine with an injected clock.
func NewMachineWithClock(now func() time.Time) *Machine {
	return &Machine{now: now}
}

// Apply validates the transition and mutates the course in place: status,
// side effects, one appended approval-history entry, the denormalized
// rejection cache and updatedAt. The caller owns persistence.
func (m *Machine) Apply(user *models.User, course *models.Course, action Action, payload Payload) error {
	if user == nil || course == nil {
		return apperrors.NewValidationError("", "user and course are required")
	}
	if course.Status.IsTerminal() {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("course %s is in terminal state %q", course.Code, course.Status),
		).WithCourse(course.ID)
	}

	// Self-assignment reports its refusals as conflicts with a sub-reason so
	// the UI can render a targeted message.
	if action == ActionSelfAssign {
		if err := checkSelfAssignConflicts(user, course); err != nil {
			return err
		}
	}

	// Defense in depth: the resolver result is authoritative even for callers
	// that already consulted it.
	if !AllowedActions(user, course).Contains(action) {
		return apperrors.NewPermissionDeniedError(
			fmt.Sprintf("%s may not %s course %s in state %q", user.Role, action, course.Code, course.Status),
		).WithCourse(course.ID)
	}

	rules, ok := transitionTable[course.Status]
	if !ok {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("no transitions from state %q", course.Status),
		).WithCourse(course.ID)
	}
	rule, ok := rules[action]
	if !ok {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("action %q is not legal from state %q", action, course.Status),
		).WithCourse(course.ID)
	}

	if rule.needsReason && payload.Reason == "" {
		return apperrors.NewValidationError("reason", "a rejection reason is required").WithCourse(course.ID)
	}

	target, err := rule.resolve(course, payload)
	if err != nil {
		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			ce.WithCourse(course.ID)
		}
		return err
	}

	if rule.apply != nil {
		rule.apply(course, user, payload)
	}

	now := m.now().UTC()
	entry := models.ApprovalEntry{
		ID:        uuid.New().String(),
		Status:    target,
		ActorID:   user.ID,
		Role:      user.Role,
		Comment:   payload.Reason,
		Timestamp: now,
	}
	course.ApprovalHistory = append(course.ApprovalHistory, entry)
	course.Status = target
	course.UpdatedAt = now

	// The top-level rejection fields are a projection of the newest rejection
	// entry; approvals leave them untouched.
	if target.IsRejection() {
		course.RejectedBy = &models.RejectionActor{ID: user.ID, Role: user.Role}
		course.RejectionReason = payload.Reason
	}

	return nil
}

func checkSelfAssignConflicts(user *models.User, course *models.Course) error {
	switch {
	case course.Assigned():
		return apperrors.NewConflictError(apperrors.ConflictAlreadyAssigned,
			"course already has an instructor").WithCourse(course.ID)
	case course.Status == models.StatusPending:
		return apperrors.NewConflictError(apperrors.ConflictPendingElsewhere,
			"course already has a pending assignment request").WithCourse(course.ID)
	case course.RejectedForUser(user.ID):
		return apperrors.NewConflictError(apperrors.ConflictPreviouslyRejected,
			"a previous request by this instructor was rejected for this course").WithCourse(course.ID)
	}
	return nil
}
