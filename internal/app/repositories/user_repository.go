package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
	"github.com/sahasp/interntrack/internal/pkg/dberrors"
)

// UserRepository is the minimal user directory: role lookups for the auth
// middleware and approver name resolution for the marksheet. Account
// management is owned by the identity collaborator.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func selectUserQuery() squirrel.SelectBuilder {
	return squirrel.Select("id", "email", "password", "first_name", "last_name", "role_type", "created_at").
		From("users").
		PlaceholderFormat(squirrel.Dollar)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.RoleType, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by id. Returns nil when no user exists.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := selectUserQuery().Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return u, nil
}

// GetByEmail retrieves a user by email. Returns nil when no user exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := selectUserQuery().Where("email = ?", email).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return u, nil
}

// Create inserts a new user and returns its id. Used by the seeder.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	sql, args, err := squirrel.Insert("users").
		Columns("email", "password", "first_name", "last_name", "role_type").
		Values(u.Email, u.Password, u.FirstName, u.LastName, u.RoleType).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return 0, apperrors.NewConflictError("email already exists")
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// EmailExists checks whether an email is already registered.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}
