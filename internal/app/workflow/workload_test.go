package workflow

import (
	"testing"

	"github.com/tsegaye25/load-tracking/internal/app/models"
)

func TestComputeWorkload_InstitutionalExample(t *testing.T) {
	courses := []*models.Course{
		{
			HourFor:          models.HourFor{Lecture: 3, Lab: 2, Tutorial: 1},
			NumberOfSections: models.SectionCount{Lecture: 2, Lab: 1, Tutorial: 1},
		},
	}
	addOns := models.HourAddOns{HDPHour: 2, PositionHour: 1, BatchAdvisor: 0}

	got := ComputeWorkload(courses, addOns)
	if got.Total != 11.01 {
		t.Fatalf("total = %v, want 11.01", got.Total)
	}
	if got.Overload != 0 {
		t.Fatalf("overload = %v, want 0", got.Overload)
	}
}

func TestPerCourseLoad_LabTutorialDiscount(t *testing.T) {
	c := &models.Course{
		HourFor:          models.HourFor{Lecture: 3, Lab: 2, Tutorial: 1},
		NumberOfSections: models.SectionCount{Lecture: 2, Lab: 1, Tutorial: 1},
	}
	got := round2(PerCourseLoad(c))
	if got != 8.01 {
		t.Fatalf("per-course load = %v, want 8.01", got)
	}
}

func TestComputeWorkload_OverloadAboveBaseline(t *testing.T) {
	courses := []*models.Course{
		{
			HourFor:          models.HourFor{Lecture: 4},
			NumberOfSections: models.SectionCount{Lecture: 3},
		},
	}
	got := ComputeWorkload(courses, models.HourAddOns{PositionHour: 2})
	if got.Total != 14 {
		t.Fatalf("total = %v, want 14", got.Total)
	}
	if got.Overload != 2 {
		t.Fatalf("overload = %v, want 2", got.Overload)
	}
}

func TestComputeWorkload_OverloadNeverNegative(t *testing.T) {
	cases := []struct {
		name    string
		courses []*models.Course
		addOns  models.HourAddOns
	}{
		{name: "no courses, no add-ons"},
		{
			name: "single light course",
			courses: []*models.Course{
				{HourFor: models.HourFor{Lecture: 2}, NumberOfSections: models.SectionCount{Lecture: 1}},
			},
		},
		{
			name:   "add-ons only",
			addOns: models.HourAddOns{HDPHour: 3, BatchAdvisor: 1},
		},
		{
			name: "fractional hours just under baseline",
			courses: []*models.Course{
				{HourFor: models.HourFor{Lab: 5.5}, NumberOfSections: models.SectionCount{Lab: 3}},
			},
			addOns: models.HourAddOns{PositionHour: 0.9},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeWorkload(tc.courses, tc.addOns)
			if got.Overload < 0 {
				t.Fatalf("overload = %v, must never be negative", got.Overload)
			}
			if got.Total < OverloadBaseline && got.Overload != 0 {
				t.Fatalf("total %v is under baseline but overload = %v", got.Total, got.Overload)
			}
		})
	}
}

func TestComputeWorkload_MissingFieldsCountZero(t *testing.T) {
	courses := []*models.Course{
		{HourFor: models.HourFor{Lecture: 3}}, // sections all zero
		{NumberOfSections: models.SectionCount{Lecture: 2, Lab: 4}},
		nil,
	}
	got := ComputeWorkload(courses, models.HourAddOns{})
	if got.Total != 0 {
		t.Fatalf("total = %v, want 0 when hours or sections are missing", got.Total)
	}
}
