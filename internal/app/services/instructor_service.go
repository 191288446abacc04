package services

import (
	"context"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/app/workflow"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	"github.com/tsegaye25/load-tracking/internal/pkg/logger"
	"github.com/tsegaye25/load-tracking/internal/pkg/validation"
)

// UserStore is the user access the instructor service needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role, school, department string) ([]*models.User, error)
	UpdateAddOns(ctx context.Context, id int64, addOns models.HourAddOns) error
}

// InstructorService derives teaching loads and manages instructor hour
// add-ons. The load itself is never stored; it is recomputed from the
// instructor's current course assignments on every read.
type InstructorService struct {
	users   UserStore
	courses workflow.CourseStore
}

// NewInstructorService creates a new instructor service
func NewInstructorService(users UserStore, courses workflow.CourseStore) *InstructorService {
	return &InstructorService{users: users, courses: courses}
}

// Workload computes one instructor's current teaching load
func (s *InstructorService) Workload(ctx context.Context, user *models.User, instructorID int64) (*dto.InstructorWorkloadResponse, error) {
	instructor, err := s.users.GetByID(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin && user.ID != instructorID && instructor.School != user.School {
		return nil, apperrors.NewPermissionDeniedError("instructor belongs to another school")
	}

	courses, err := s.courses.Find(ctx, workflow.CourseFilter{InstructorID: &instructorID})
	if err != nil {
		return nil, err
	}

	return &dto.InstructorWorkloadResponse{
		Instructor: instructor.AsInstructor(),
		Courses:    courses,
		Workload:   workflow.ComputeWorkload(courses, instructor.AddOns),
	}, nil
}

// ListWithWorkloads computes loads for every instructor visible to the caller
func (s *InstructorService) ListWithWorkloads(ctx context.Context, user *models.User) ([]*dto.InstructorWorkloadResponse, error) {
	school := user.School
	department := ""
	if user.Role == models.RoleAdmin {
		school = ""
	}
	if user.Role == models.RoleDepartmentHead {
		department = user.Department
	}

	instructors, err := s.users.ListByRole(ctx, models.RoleInstructor, school, department)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.InstructorWorkloadResponse, 0, len(instructors))
	for _, instructor := range instructors {
		id := instructor.ID
		courses, err := s.courses.Find(ctx, workflow.CourseFilter{InstructorID: &id})
		if err != nil {
			return nil, err
		}
		out = append(out, &dto.InstructorWorkloadResponse{
			Instructor: instructor.AsInstructor(),
			Courses:    courses,
			Workload:   workflow.ComputeWorkload(courses, instructor.AddOns),
		})
	}

	return out, nil
}

// UpdateAddOns sets an instructor's administrative hour credits, admin only
func (s *InstructorService) UpdateAddOns(ctx context.Context, user *models.User, instructorID int64, req *dto.UpdateAddOnsRequest) (*models.User, error) {
	if user.Role != models.RoleAdmin {
		return nil, apperrors.NewPermissionDeniedError("only admins may change hour add-ons")
	}

	instructor, err := s.users.GetByID(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	addOns := instructor.AddOns
	if req.HDPHour != nil {
		if err := validation.ValidateHours("hdpHour", *req.HDPHour); err != nil {
			return nil, err
		}
		addOns.HDPHour = *req.HDPHour
	}
	if req.PositionHour != nil {
		if err := validation.ValidateHours("positionHour", *req.PositionHour); err != nil {
			return nil, err
		}
		addOns.PositionHour = *req.PositionHour
	}
	if req.BatchAdvisor != nil {
		if err := validation.ValidateHours("batchAdvisor", *req.BatchAdvisor); err != nil {
			return nil, err
		}
		addOns.BatchAdvisor = *req.BatchAdvisor
	}

	if err := s.users.UpdateAddOns(ctx, instructorID, addOns); err != nil {
		return nil, err
	}
	instructor.AddOns = addOns

	logger.Info().
		Int64("instructorId", instructorID).
		Int64("adminId", user.ID).
		Msg("Instructor hour add-ons updated")

	return instructor, nil
}
