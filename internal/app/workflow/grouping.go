package workflow

import (
	"sort"
	"strconv"

	"github.com/tsegaye25/load-tracking/internal/app/models"
)

// UnassignedGroupKey is the sentinel group for courses without an instructor.
const UnassignedGroupKey = "unassigned"

// AggregateMixed marks a group whose courses sit at different stages; bulk
// actions must be disabled for such a group and each course handled alone.
const AggregateMixed = "mixed"

// InstructorGroup is one instructor's bucket in a grouped review view.
type InstructorGroup struct {
	Key             string             `json:"key"`
	Instructor      *models.Instructor `json:"instructor,omitempty"`
	Courses         []*models.Course   `json:"courses"`
	AggregateStatus string             `json:"aggregateStatus"`
	Workload        Workload           `json:"workload"`
}

// GroupByInstructor buckets courses by their assigned instructor. Courses
// with no instructor land in the unassigned sentinel group instead of
// raising. Each group carries an aggregate status ("mixed" unless every
// course sits at the same stage) and the group's computed workload; the
// unassigned group's workload counts no add-ons.
func GroupByInstructor(courses []*models.Course) map[string]*InstructorGroup {
	groups := make(map[string]*InstructorGroup)

	for _, course := range courses {
		if course == nil {
			continue
		}
		key := UnassignedGroupKey
		if course.InstructorID != nil {
			key = strconv.FormatInt(*course.InstructorID, 10)
		}

		group, ok := groups[key]
		if !ok {
			group = &InstructorGroup{Key: key}
			if key != UnassignedGroupKey {
				group.Instructor = course.Instructor
			}
			groups[key] = group
		}
		if group.Instructor == nil && course.Instructor != nil && key != UnassignedGroupKey {
			group.Instructor = course.Instructor
		}
		group.Courses = append(group.Courses, course)
	}

	for _, group := range groups {
		group.AggregateStatus = aggregateStatus(group.Courses)

		var addOns models.HourAddOns
		if group.Instructor != nil {
			addOns = group.Instructor.AddOns
		}
		group.Workload = ComputeWorkload(group.Courses, addOns)

		sort.Slice(group.Courses, func(i, j int) bool {
			return group.Courses[i].Code < group.Courses[j].Code
		})
	}

	return groups
}

func aggregateStatus(courses []*models.Course) string {
	if len(courses) == 0 {
		return ""
	}
	first := courses[0].Status
	for _, c := range courses[1:] {
		if c.Status != first {
			return AggregateMixed
		}
	}
	return string(first)
}
