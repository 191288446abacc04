package models

// HourAddOns are fixed administrative hour credits granted to an instructor
// by administration, counted into the workload independent of courses.
type HourAddOns struct {
	HDPHour      float64 `json:"hdpHour" db:"hdp_hour"`
	PositionHour float64 `json:"positionHour" db:"position_hour"`
	BatchAdvisor float64 `json:"batchAdvisor" db:"batch_advisor"`
}

// Instructor is the teaching-staff projection of a user. Workload and
// overload are derived on demand from assigned courses plus the add-ons and
// are never stored.
type Instructor struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Email      string     `json:"email" db:"email"`
	Department string     `json:"department" db:"department"`
	School     string     `json:"school" db:"school"`
	Role       Role       `json:"role" db:"role"`
	AddOns     HourAddOns `json:"addOns"`
}
