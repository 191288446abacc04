package dto

import (
	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/workflow"
)

// InstructorWorkloadResponse is one instructor's derived teaching load.
type InstructorWorkloadResponse struct {
	Instructor *models.Instructor `json:"instructor"`
	Courses    []*models.Course   `json:"courses,omitempty"`
	Workload   workflow.Workload  `json:"workload"`
}

// UpdateAddOnsRequest sets an instructor's fixed administrative hour
// credits. Admin only; negative values are rejected.
type UpdateAddOnsRequest struct {
	HDPHour      *float64 `json:"hdpHour,omitempty"`
	PositionHour *float64 `json:"positionHour,omitempty"`
	BatchAdvisor *float64 `json:"batchAdvisor,omitempty"`
}
