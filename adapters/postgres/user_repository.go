package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizforge/domain/core"
	"quizforge/models"
	"quizforge/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// CreateUser inserts a new user, assigning its ID
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, username, hashed_password, is_active, created_at, updated_at)
		VALUES (:id, :email, :username, :hashed_password, :is_active, :created_at, :updated_at)
	`, user)

	if err != nil {
		// Unique constraint violation: the email or username is taken
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return core.NewInvalidRequestError("email or username already registered")
		}
		return err
	}

	return nil
}

// GetUserByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, username, hashed_password, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("user")
		}
		return nil, err
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, username, hashed_password, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("user")
		}
		return nil, err
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepositoryImpl) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, username, hashed_password, is_active, created_at, updated_at
		FROM users
		WHERE username = $1
	`, username)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("user")
		}
		return nil, err
	}

	return &user, nil
}
