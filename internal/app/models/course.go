package models

import "time"

// HourFor holds the weekly contact hours of a course. The JSON key casing
// ("Hourfor") is inherited from the deployed document shape.
type HourFor struct {
	CreditHours float64 `json:"creditHours"`
	Lecture     float64 `json:"lecture"`
	Lab         float64 `json:"lab"`
	Tutorial    float64 `json:"tutorial"`
}

// SectionCount holds how many parallel sections of each kind a course runs.
type SectionCount struct {
	Lecture  int `json:"lecture"`
	Lab      int `json:"lab"`
	Tutorial int `json:"tutorial"`
}

// RejectionActor is a snapshot of who performed the most recent rejection.
type RejectionActor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// ApprovalEntry is one record in a course's append-only approval history.
// Entries are never mutated or removed; the history is the audit trail and
// the source of truth for who rejected when and why.
type ApprovalEntry struct {
	ID        string       `json:"id"`
	Status    CourseStatus `json:"status"`
	ActorID   int64        `json:"actorId"`
	Role      Role         `json:"role"`
	Comment   string       `json:"comment,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Course represents a course document moving through the approval chain.
type Course struct {
	ID         int64    `json:"id" db:"id"`
	Code       string   `json:"code" db:"code"`
	Title      string   `json:"title" db:"title"`
	Department string   `json:"department" db:"department"`
	School     string   `json:"school" db:"school"`
	ClassYear  string   `json:"classYear" db:"class_year"`
	Semester   Semester `json:"semester" db:"semester"`

	HourFor          HourFor      `json:"Hourfor" db:"hourfor"`
	NumberOfSections SectionCount `json:"numberOfSections" db:"number_of_sections"`

	// InstructorID is set once the department head has approved (or directly
	// assigned) an instructor. RequestedByID is set only while a self-assign
	// request is awaiting review.
	InstructorID  *int64 `json:"instructorId,omitempty" db:"instructor_id"`
	RequestedByID *int64 `json:"requestedBy,omitempty" db:"requested_by"`

	Status CourseStatus `json:"status" db:"status"`

	// RejectedBy and RejectionReason are a denormalized cache of the latest
	// rejection entry in ApprovalHistory, overwritten on every rejection.
	RejectedBy      *RejectionActor `json:"rejectedBy,omitempty" db:"rejected_by"`
	RejectionReason string          `json:"rejectionReason,omitempty" db:"rejection_reason"`

	ApprovalHistory []ApprovalEntry `json:"approvalHistory" db:"approval_history"`

	// RejectedRequesters lists instructors whose self-assign requests were
	// rejected for this course, so the same instructor cannot re-request
	// without a department-head override.
	RejectedRequesters []int64 `json:"rejectedRequesters,omitempty" db:"rejected_requesters"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Instructor *Instructor `json:"instructor,omitempty"`
}

// LastRejection returns the most recent rejection entry in the approval
// history, or nil if the course has never been rejected.
func (c *Course) LastRejection() *ApprovalEntry {
	for i := len(c.ApprovalHistory) - 1; i >= 0; i-- {
		if c.ApprovalHistory[i].Status.IsRejection() {
			return &c.ApprovalHistory[i]
		}
	}
	return nil
}

// RejectedForUser reports whether a self-assign request by the given
// instructor was previously rejected for this course.
func (c *Course) RejectedForUser(userID int64) bool {
	for _, id := range c.RejectedRequesters {
		if id == userID {
			return true
		}
	}
	return false
}

// Assigned reports whether the course currently has an active instructor.
func (c *Course) Assigned() bool {
	return c.InstructorID != nil
}
