package models

import "time"

// User defines an actor who can perform workflow actions. Role, department
// and school together determine which transitions are legal for a course.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Password   string    `json:"-" db:"password"`
	FirstName  string    `json:"firstName" db:"first_name"`
	LastName   string    `json:"lastName" db:"last_name"`
	Role       Role      `json:"role" db:"role"`
	Department string    `json:"department" db:"department"`
	School     string    `json:"school" db:"school"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	// Instructor hour add-ons; meaningful only when Role is instructor.
	AddOns HourAddOns `json:"addOns,omitempty"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// AsInstructor returns the instructor projection of the user.
func (u *User) AsInstructor() *Instructor {
	return &Instructor{
		ID:         u.ID,
		Name:       u.FullName(),
		Email:      u.Email,
		Department: u.Department,
		School:     u.School,
		Role:       u.Role,
		AddOns:     u.AddOns,
	}
}
