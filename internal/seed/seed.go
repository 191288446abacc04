// Package seed creates the default accounts a fresh deployment needs.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/tsegaye25/load-tracking/internal/app/models"
	appRepos "github.com/tsegaye25/load-tracking/internal/app/repositories"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	pkgAuth "github.com/tsegaye25/load-tracking/internal/pkg/auth"
)

// defaultPassword is only for local development seeds; deployments change
// every seeded account on first login.
const defaultPassword = "ChangeMe123!"

var defaultAccounts = []appModels.User{
	{
		Email:     "admin@load-tracking.local",
		FirstName: "Default",
		LastName:  "Admin",
		Role:      appModels.RoleAdmin,
	},
	{
		Email:      "head.sweg@load-tracking.local",
		FirstName:  "Department",
		LastName:   "Head",
		Role:       appModels.RoleDepartmentHead,
		Department: "Software Engineering",
		School:     "School of Computing",
	},
	{
		Email:     "dean.computing@load-tracking.local",
		FirstName: "School",
		LastName:  "Dean",
		Role:      appModels.RoleSchoolDean,
		School:    "School of Computing",
	},
	{
		Email:     "vsd.computing@load-tracking.local",
		FirstName: "Vice Scientific",
		LastName:  "Director",
		Role:      appModels.RoleViceScientificDirector,
		School:    "School of Computing",
	},
	{
		Email:     "sd.computing@load-tracking.local",
		FirstName: "Scientific",
		LastName:  "Director",
		Role:      appModels.RoleScientificDirector,
		School:    "School of Computing",
	},
	{
		Email:     "finance.computing@load-tracking.local",
		FirstName: "Finance",
		LastName:  "Officer",
		Role:      appModels.RoleFinance,
		School:    "School of Computing",
	},
}

// CreateDefaultData creates one account per role if they don't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	hashed, err := pkgAuth.HashPassword(defaultPassword)
	if err != nil {
		return err
	}

	lgr.Info().Msg("Checking/Creating default accounts...")
	var finalErr error

	for _, account := range defaultAccounts {
		user := account
		user.Password = hashed
		user.IsActive = true

		err := userRepo.Create(ctx, &user)
		switch {
		case err == nil:
			lgr.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("Seeded account")
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			// Already seeded in a previous run.
		default:
			lgr.Error().Err(err).Str("email", user.Email).Msg("Error seeding account")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
