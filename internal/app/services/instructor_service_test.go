package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

type fakeUserStore struct {
	users map[int64]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[int64]*models.User)}
	for _, u := range users {
		cp := *u
		f.users[u.ID] = &cp
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) ListByRole(_ context.Context, role models.Role, school, department string) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.users {
		if u.Role != role {
			continue
		}
		if school != "" && u.School != school {
			continue
		}
		if department != "" && u.Department != department {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateAddOns(_ context.Context, id int64, addOns models.HourAddOns) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.AddOns = addOns
	return nil
}

func sampleInstructor() *models.User {
	return &models.User{
		ID:         42,
		Email:      "instructor@load-tracking.local",
		FirstName:  "Abebe",
		LastName:   "Bekele",
		Role:       models.RoleInstructor,
		Department: "Software Engineering",
		School:     "School of Computing",
		IsActive:   true,
		AddOns:     models.HourAddOns{HDPHour: 3},
	}
}

func TestWorkloadDerivedFromAssignments(t *testing.T) {
	instructor := sampleInstructor()
	users := newFakeUserStore(instructor)

	courses := newFakeCourseStore()
	course := deanReviewCourse(1)
	course.HourFor = models.HourFor{Lecture: 2, Lab: 1, Tutorial: 1}
	course.NumberOfSections = models.SectionCount{Lecture: 3, Lab: 2, Tutorial: 1}
	courses.put(course)

	svc := NewInstructorService(users, courses)

	resp, err := svc.Workload(context.Background(), instructor, instructor.ID)
	if err != nil {
		t.Fatalf("Workload: %v", err)
	}
	if len(resp.Courses) != 1 {
		t.Fatalf("courses = %d, want 1", len(resp.Courses))
	}
	// 2*3 + 1*0.67*2 + 1*0.67*1 = 8.01, plus 3 add-on hours.
	if resp.Workload.Total != 11.01 {
		t.Fatalf("total = %v, want 11.01", resp.Workload.Total)
	}
	if resp.Workload.Overload != 0 {
		t.Fatalf("overload = %v, want 0", resp.Workload.Overload)
	}
}

func TestWorkloadSchoolBoundary(t *testing.T) {
	instructor := sampleInstructor()
	users := newFakeUserStore(instructor)
	svc := NewInstructorService(users, newFakeCourseStore())

	outsider := &models.User{ID: 9, Role: models.RoleSchoolDean, School: "School of Civil Engineering"}
	if _, err := svc.Workload(context.Background(), outsider, instructor.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestUpdateAddOnsAdminOnly(t *testing.T) {
	instructor := sampleInstructor()
	users := newFakeUserStore(instructor)
	svc := NewInstructorService(users, newFakeCourseStore())

	hdp := 5.0
	req := &dto.UpdateAddOnsRequest{HDPHour: &hdp}

	if _, err := svc.UpdateAddOns(context.Background(), instructor, instructor.ID, req); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("self update err = %v, want ErrPermissionDenied", err)
	}

	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	updated, err := svc.UpdateAddOns(context.Background(), admin, instructor.ID, req)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.AddOns.HDPHour != 5 {
		t.Fatalf("hdpHour = %v, want 5", updated.AddOns.HDPHour)
	}

	negative := -1.0
	if _, err := svc.UpdateAddOns(context.Background(), admin, instructor.ID,
		&dto.UpdateAddOnsRequest{PositionHour: &negative}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("negative hours err = %v, want ErrValidationFailed", err)
	}
}
