package repository

import (
	"context"
	"errors"
	"fmt"

	"pizzeria-api/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const uniqueViolation = "23505"

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, phone, is_admin, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.Phone, user.IsAdmin, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `
		SELECT id, email, first_name, last_name, phone, is_admin, password_hash, created_at
		FROM users
		WHERE ` + where

	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.IsAdmin, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}
