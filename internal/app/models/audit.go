package models

import "time"

// AuditEvent records one workflow action against a course. Events are
// written asynchronously after a transition commits and are never updated.
type AuditEvent struct {
	ID         int64        `json:"id" db:"id"`
	CourseID   int64        `json:"courseId" db:"course_id"`
	CourseCode string       `json:"courseCode" db:"course_code"`
	ActorID    int64        `json:"actorId" db:"actor_id"`
	ActorRole  Role         `json:"actorRole" db:"actor_role"`
	Action     string       `json:"action" db:"action"`
	FromStatus CourseStatus `json:"fromStatus" db:"from_status"`
	ToStatus   CourseStatus `json:"toStatus" db:"to_status"`
	Reason     string       `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
}
