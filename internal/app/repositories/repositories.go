package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all data access objects behind a single constructor
type Repositories struct {
	Courses *CourseRepository
	Users   *UserRepository
	Audits  *AuditRepository
	Tokens  *TokenRepository
}

// NewRepositories creates all repositories sharing one connection pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Courses: NewCourseRepository(db),
		Users:   NewUserRepository(db),
		Audits:  NewAuditRepository(db),
		Tokens:  NewTokenRepository(db),
	}
}
