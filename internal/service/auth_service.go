package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"pizzeria-api/internal/auth"
	"pizzeria-api/internal/model"
	"pizzeria-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// authService implements AuthService.
type authService struct {
	userRepo     repository.UserRepository
	tokens       *auth.TokenIssuer
	storeTimeout time.Duration
	logger       zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenIssuer, storeTimeout time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokens:       tokens,
		storeTimeout: storeTimeout,
		logger:       logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates a customer account and returns a token for it.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.ErrInvalidRegistration.WithDetail("request is empty", nil)
	}

	email, err := normaliseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.Password == "" || len(req.Password) > maxPasswordBytes {
		return nil, model.ErrInvalidRegistration.WithDetail("password must be between 1 and 72 bytes", nil)
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, model.ErrInvalidRegistration.WithDetail("first and last name are required", nil)
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	existing, err := s.userRepo.GetByEmail(storeCtx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up email")
		return nil, storeError("register user", err)
	}
	if existing != nil {
		return nil, model.ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(storeCtx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return nil, storeError("register user", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.respond(user)
}

// Login verifies credentials and returns a fresh token.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.ErrInvalidCredentials
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(storeCtx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, storeError("log in", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Debug().Msg("login rejected")
		return nil, model.ErrInvalidCredentials
	}

	return s.respond(user)
}

// Authenticate resolves a bearer token to its user.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, model.ErrUnauthorised
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(storeCtx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to load token subject")
		return nil, storeError("authenticate", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorised
	}
	return user, nil
}

// BootstrapAdmin creates the configured admin account if it does not exist yet.
// An empty email disables bootstrapping.
func (s *authService) BootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	existing, err := s.userRepo.GetByEmail(storeCtx, email)
	if err != nil {
		return storeError("bootstrap admin", err)
	}
	if existing != nil {
		if !existing.IsAdmin {
			s.logger.Warn().Str("email", email).Msg("bootstrap admin email belongs to a customer account")
		}
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &model.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    "Admin",
		LastName:     "User",
		IsAdmin:      true,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(storeCtx, admin); err != nil {
		return storeError("bootstrap admin", err)
	}

	s.logger.Info().Str("email", email).Msg("admin account created")
	return nil
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, err
	}
	return &model.AuthResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func normaliseEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", model.ErrInvalidRegistration.WithDetail("email address is invalid", err)
	}
	return email, nil
}
