package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/sahasp/interntrack/internal/app/models"
	appRepos "github.com/sahasp/interntrack/internal/app/repositories"
)

// defaultAccount describes a seeded login. Account management is handled by
// the identity collaborator in production; these exist so a fresh database is
// immediately usable.
type defaultAccount struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      appModels.RoleType
}

var defaultAccounts = []defaultAccount{
	{"student@interntrack.edu", "Student123!", "Default", "Student", appModels.RoleStudent},
	{"teacher@interntrack.edu", "Teacher123!", "Default", "Teacher", appModels.RoleTeacher},
	{"admin@interntrack.edu", "Admin123!", "Default", "Admin", appModels.RoleAdmin},
}

// CreateDefaultData creates the default accounts if they don't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default accounts...")
	var finalErr error

	for _, account := range defaultAccounts {
		exists, err := userRepo.EmailExists(ctx, account.email)
		if err != nil {
			lgr.Error().Err(err).Str("email", account.email).Msg("Error checking if default account exists")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			lgr.Error().Err(err).Str("email", account.email).Msg("Error hashing default account password")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		user := &appModels.User{
			Email:     account.email,
			Password:  string(hashedPassword),
			FirstName: account.firstName,
			LastName:  account.lastName,
			RoleType:  account.role,
		}

		id, err := userRepo.Create(ctx, user)
		if err != nil {
			lgr.Error().Err(err).Str("email", account.email).Msg("Error creating default account")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		lgr.Info().Int64("userId", id).Str("email", account.email).Str("role", string(account.role)).Msg("Default account created")
	}

	return finalErr
}
