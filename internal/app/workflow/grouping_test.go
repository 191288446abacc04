package workflow

import (
	"testing"

	"github.com/tsegaye25/load-tracking/internal/app/models"
)

func groupedCourse(code string, status models.CourseStatus, instructor *models.Instructor) *models.Course {
	c := testCourse(status)
	c.Code = code
	if instructor != nil {
		c.InstructorID = &instructor.ID
		c.Instructor = instructor
	}
	return c
}

func TestGroupByInstructor_MixedStagesDisableBulkActions(t *testing.T) {
	abebe := &models.Instructor{ID: 10, Name: "Abebe Bekele"}
	courses := []*models.Course{
		groupedCourse("SWEG3101", models.StatusDeanApproved, abebe),
		groupedCourse("SWEG3102", models.StatusDeanApproved, abebe),
		groupedCourse("SWEG3103", models.StatusViceDirectorApproved, abebe),
	}

	groups := GroupByInstructor(courses)
	group, ok := groups["10"]
	if !ok {
		t.Fatalf("missing group for instructor 10, got keys %v", keysOf(groups))
	}
	if group.AggregateStatus != AggregateMixed {
		t.Fatalf("aggregateStatus = %q, want %q", group.AggregateStatus, AggregateMixed)
	}
	if len(group.Courses) != 3 {
		t.Fatalf("group size = %d, want 3", len(group.Courses))
	}
}

func TestGroupByInstructor_UniformStage(t *testing.T) {
	abebe := &models.Instructor{ID: 10, Name: "Abebe Bekele"}
	courses := []*models.Course{
		groupedCourse("SWEG3101", models.StatusDeanApproved, abebe),
		groupedCourse("SWEG3102", models.StatusDeanApproved, abebe),
	}

	groups := GroupByInstructor(courses)
	if got := groups["10"].AggregateStatus; got != string(models.StatusDeanApproved) {
		t.Fatalf("aggregateStatus = %q, want dean-approved", got)
	}
}

func TestGroupByInstructor_UnassignedSentinel(t *testing.T) {
	courses := []*models.Course{
		groupedCourse("SWEG2101", models.StatusUnassigned, nil),
		groupedCourse("SWEG2102", models.StatusRejected, nil),
		nil, // must be tolerated, not raised on
	}

	groups := GroupByInstructor(courses)
	group, ok := groups[UnassignedGroupKey]
	if !ok {
		t.Fatalf("missing unassigned sentinel group, got keys %v", keysOf(groups))
	}
	if group.Instructor != nil {
		t.Fatalf("unassigned group must carry no instructor")
	}
	if len(group.Courses) != 2 {
		t.Fatalf("unassigned group size = %d, want 2", len(group.Courses))
	}
	if group.AggregateStatus != AggregateMixed {
		t.Fatalf("aggregateStatus = %q, want %q", group.AggregateStatus, AggregateMixed)
	}
}

func TestGroupByInstructor_WorkloadUsesInstructorAddOns(t *testing.T) {
	almaz := &models.Instructor{
		ID:     12,
		Name:   "Almaz Tesfaye",
		AddOns: models.HourAddOns{HDPHour: 2, PositionHour: 1},
	}
	course := groupedCourse("SWEG3104", models.StatusDeanApproved, almaz)
	course.HourFor = models.HourFor{Lecture: 3, Lab: 2, Tutorial: 1}
	course.NumberOfSections = models.SectionCount{Lecture: 2, Lab: 1, Tutorial: 1}

	groups := GroupByInstructor([]*models.Course{course})
	got := groups["12"].Workload
	if got.Total != 11.01 {
		t.Fatalf("group total = %v, want 11.01", got.Total)
	}
	if got.Overload != 0 {
		t.Fatalf("group overload = %v, want 0", got.Overload)
	}
}

func keysOf(groups map[string]*InstructorGroup) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	return keys
}
