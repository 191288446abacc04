package workflow

import (
	"math"

	"github.com/tsegaye25/load-tracking/internal/app/models"
)

// OverloadBaseline is the institutional full teaching load in weekly hours;
// anything above it is paid overload.
const OverloadBaseline = 12.0

// labTutorialFactor reflects institutional policy that lab and tutorial
// contact hours count at 67% of lecture-hour weight.
const labTutorialFactor = 0.67

// Workload is an instructor's computed teaching load.
type Workload struct {
	Total    float64 `json:"total"`
	Overload float64 `json:"overload"`
}

// PerCourseLoad computes the weekly load one course contributes. Missing
// hour or section fields are zero-valued and contribute nothing.
func PerCourseLoad(c *models.Course) float64 {
	if c == nil {
		return 0
	}
	return c.HourFor.Lecture*float64(c.NumberOfSections.Lecture) +
		c.HourFor.Lab*labTutorialFactor*float64(c.NumberOfSections.Lab) +
		c.HourFor.Tutorial*labTutorialFactor*float64(c.NumberOfSections.Tutorial)
}

// ComputeWorkload sums the load of the given courses plus the fixed hour
// add-ons. Total and overload are rounded to two decimals, half away from
// zero; overload is clamped so it is never negative. Pure and deterministic,
// reusable for single-instructor summaries and dashboard aggregates alike.
func ComputeWorkload(courses []*models.Course, addOns models.HourAddOns) Workload {
	total := addOns.HDPHour + addOns.PositionHour + addOns.BatchAdvisor
	for _, c := range courses {
		total += PerCourseLoad(c)
	}

	total = round2(total)
	overload := round2(total - OverloadBaseline)
	if overload < 0 {
		overload = 0
	}
	return Workload{Total: total, Overload: overload}
}

// round2 rounds to two decimal places, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
