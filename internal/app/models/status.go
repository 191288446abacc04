package models

// CourseStatus is the closed set of workflow states a course moves through.
// The string values are part of the persisted document shape and must not
// change; deployed clients compare against them.
type CourseStatus string

const (
	StatusUnassigned CourseStatus = "unassigned"
	// StatusPending means an instructor has requested the course and the
	// department head has not yet decided.
	StatusPending                    CourseStatus = "pending"
	StatusDepartmentHeadApproved     CourseStatus = "department-head-approved"
	StatusDeanReview                 CourseStatus = "dean-review"
	StatusDeanApproved               CourseStatus = "dean-approved"
	StatusViceDirectorApproved       CourseStatus = "vice-director-approved"
	StatusScientificDirectorApproved CourseStatus = "scientific-director-approved"
	StatusFinanceReview              CourseStatus = "finance-review"
	StatusFinanceApproved            CourseStatus = "finance-approved"

	// StatusRejected is the legacy self-assignment-level rejection issued by a
	// department head before any later stage has seen the course.
	StatusRejected                   CourseStatus = "rejected"
	StatusDepartmentHeadRejected     CourseStatus = "department-head-rejected"
	StatusDeanRejected               CourseStatus = "dean-rejected"
	StatusViceDirectorRejected       CourseStatus = "vice-director-rejected"
	StatusScientificDirectorRejected CourseStatus = "scientific-director-rejected"
	StatusFinanceRejected            CourseStatus = "finance-rejected"
)

// AllStatuses lists every valid course status.
var AllStatuses = []CourseStatus{
	StatusUnassigned,
	StatusPending,
	StatusDepartmentHeadApproved,
	StatusDeanReview,
	StatusDeanApproved,
	StatusViceDirectorApproved,
	StatusScientificDirectorApproved,
	StatusFinanceReview,
	StatusFinanceApproved,
	StatusRejected,
	StatusDepartmentHeadRejected,
	StatusDeanRejected,
	StatusViceDirectorRejected,
	StatusScientificDirectorRejected,
	StatusFinanceRejected,
}

// Valid reports whether s is a known status.
func (s CourseStatus) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsRejection reports whether s is any of the rejection states.
func (s CourseStatus) IsRejection() bool {
	switch s {
	case StatusRejected, StatusDepartmentHeadRejected, StatusDeanRejected,
		StatusViceDirectorRejected, StatusScientificDirectorRejected, StatusFinanceRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible absent an
// admin override.
func (s CourseStatus) IsTerminal() bool {
	return s == StatusFinanceApproved || s == StatusFinanceRejected
}
