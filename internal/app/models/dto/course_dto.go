package dto

import (
	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/workflow"
)

// CreateCourseRequest carries the fields of a new course document. New
// courses always start unassigned; status is never client-supplied.
type CreateCourseRequest struct {
	Code       string              `json:"code" binding:"required"`
	Title      string              `json:"title" binding:"required"`
	Department string              `json:"department" binding:"required"`
	School     string              `json:"school" binding:"required"`
	ClassYear  string              `json:"classYear" binding:"required"`
	Semester   models.Semester     `json:"semester" binding:"required"`
	HourFor    models.HourFor      `json:"Hourfor"`
	Sections   models.SectionCount `json:"numberOfSections"`
}

// UpdateCourseRequest carries editable course fields. Workflow fields
// (status, instructor, history) can only change through transitions.
type UpdateCourseRequest struct {
	Code      string               `json:"code,omitempty"`
	Title     string               `json:"title,omitempty"`
	ClassYear string               `json:"classYear,omitempty"`
	Semester  models.Semester      `json:"semester,omitempty"`
	HourFor   *models.HourFor      `json:"Hourfor,omitempty"`
	Sections  *models.SectionCount `json:"numberOfSections,omitempty"`
}

// TransitionRequest invokes one workflow action on a course.
type TransitionRequest struct {
	Action  workflow.Action  `json:"action" binding:"required"`
	Payload workflow.Payload `json:"payload"`
}

// BulkTransitionRequest applies one action to many courses.
type BulkTransitionRequest struct {
	CourseIDs []int64          `json:"courseIds" binding:"required,min=1"`
	Action    workflow.Action  `json:"action" binding:"required"`
	Payload   workflow.Payload `json:"payload"`
}

// BulkTransitionResult is the per-course outcome of a bulk transition. The
// batch endpoint never fails as a whole; each course carries its own result.
type BulkTransitionResult struct {
	CourseID int64               `json:"courseId"`
	Success  bool                `json:"success"`
	Status   models.CourseStatus `json:"status,omitempty"`
	Error    *ErrorDetail        `json:"error,omitempty"`
}

// AllowedActionsResponse lists the legal actions for the caller on a course.
type AllowedActionsResponse struct {
	CourseID int64             `json:"courseId"`
	Actions  []workflow.Action `json:"actions"`
}
