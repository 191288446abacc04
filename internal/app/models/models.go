package models

// Role defines a user's position in the approval chain. The wire values are
// fixed; deployed clients match on them.
type Role string

const (
	RoleInstructor             Role = "instructor"
	RoleDepartmentHead         Role = "department-head"
	RoleSchoolDean             Role = "school-dean"
	RoleViceScientificDirector Role = "vice-scientific-director"
	RoleScientificDirector     Role = "scientific-director"
	RoleFinance                Role = "finance"
	RoleAdmin                  Role = "admin"
)

// AllRoles lists every valid role, used by validation and seeding.
var AllRoles = []Role{
	RoleInstructor,
	RoleDepartmentHead,
	RoleSchoolDean,
	RoleViceScientificDirector,
	RoleScientificDirector,
	RoleFinance,
	RoleAdmin,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// SchoolScoped reports whether the role reviews courses school-wide rather
// than per department.
func (r Role) SchoolScoped() bool {
	switch r {
	case RoleSchoolDean, RoleViceScientificDirector, RoleScientificDirector, RoleFinance, RoleAdmin:
		return true
	}
	return false
}

// Semester represents an academic semester
type Semester string

const (
	SemesterOne Semester = "I"
	SemesterTwo Semester = "II"
)

// Valid reports whether s is a known semester.
func (s Semester) Valid() bool {
	return s == SemesterOne || s == SemesterTwo
}
