package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repository-api/internal/auth"
	"github.com/spec-kit/repository-api/internal/config"
	"github.com/spec-kit/repository-api/internal/domain"
	"github.com/spec-kit/repository-api/internal/repository"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

// Expected session failures, caught at the endpoint boundary and rendered as
// generic 401 bodies. Anything else propagates as a server error.
var (
	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers expired, forged and orphaned refresh tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError carries field-level registration failures.
type ValidationError struct {
	Messages map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Session is a freshly minted token pair plus the caller-facing projection.
// Sessions are never persisted; the tokens are the session.
type Session struct {
	User           *domain.User
	Projection     Projection
	AccessToken    string
	RefreshToken   string
	AccessExpires  time.Time
	RefreshExpires time.Time
}

// SessionService coordinates credential verification, token issuance and
// rotation, and logout.
type SessionService struct {
	users       repository.UserRepository
	grants      repository.GrantRepository
	codec       *auth.Codec
	revocations *RevocationStore
	accessTTL   time.Duration
	refreshTTL  time.Duration
	bcryptCost  int
	now         func() time.Time
	logger      *zap.Logger
}

// SessionDependencies encapsulates collaborator requirements.
type SessionDependencies struct {
	UserRepo    repository.UserRepository
	GrantRepo   repository.GrantRepository
	Revocations *RevocationStore
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config, deps SessionDependencies, logger *zap.Logger) *SessionService {
	return &SessionService{
		users:       deps.UserRepo,
		grants:      deps.GrantRepo,
		codec:       auth.NewCodec(cfg.Auth.JWTSecret),
		revocations: deps.Revocations,
		accessTTL:   cfg.Auth.AccessTokenTTL(),
		refreshTTL:  cfg.Auth.RefreshTokenTTL(),
		bcryptCost:  cfg.Auth.BcryptCost,
		now:         time.Now,
		logger:      logger,
	}
}

// Login verifies credentials and mints a token pair. The failure value is
// identical whether the email is unknown or the password is wrong.
func (s *SessionService) Login(ctx context.Context, tc tenancy.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, tc.Schema(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, tc, user)
}

// Refresh rotates the token pair from refresh bearer material. The caller
// only ever reads the refresh slot; access tokens presented here still mint
// fresh-role pairs because roles are recomputed from the directory.
func (s *SessionService) Refresh(ctx context.Context, tc tenancy.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.codec.Decode(tc.Schema(), raw)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			s.logger.Info("refresh with expired token", zap.String("schema", tc.Schema()))
		} else {
			s.logger.Warn("refresh with malformed token", zap.String("schema", tc.Schema()))
		}
		return nil, ErrInvalidToken
	}

	if s.revocations != nil && claims.IssuedAt != nil &&
		s.revocations.Revoked(ctx, tc.Schema(), claims.UserID, claims.IssuedAt.Time) {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, tc.Schema(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return s.issue(ctx, tc, user)
}

// Current assembles the session projection without minting new tokens.
func (s *SessionService) Current(ctx context.Context, tc tenancy.Context, user *domain.User) (Projection, error) {
	return s.project(ctx, tc, user)
}

// Logout advances the user's revocation watermark so tokens minted earlier
// are rejected even if their cookies were copied elsewhere. Safe to call
// repeatedly.
func (s *SessionService) Logout(ctx context.Context, tc tenancy.Context, userID int64) error {
	if s.revocations == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, tc.Schema(), userID, s.now())
}

// Register creates a user account and mints a token pair for it.
func (s *SessionService) Register(ctx context.Context, tc tenancy.Context, email, password, confirmation string) (*Session, error) {
	messages := map[string][]string{}
	if email == "" {
		messages["email"] = append(messages["email"], "can't be blank")
	}
	if len(password) < 6 {
		messages["password"] = append(messages["password"], "is too short (minimum is 6 characters)")
	}
	if password != confirmation {
		messages["password_confirmation"] = append(messages["password_confirmation"], "doesn't match Password")
	}
	if len(messages) > 0 {
		return nil, &ValidationError{Messages: messages}
	}

	if _, err := s.users.GetByEmail(ctx, tc.Schema(), email); err == nil {
		return nil, &ValidationError{Messages: map[string][]string{"email": {"has already been taken"}}}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, tc.Schema(), user); err != nil {
		return nil, err
	}
	return s.issue(ctx, tc, user)
}

// issue mints an access/refresh pair bound to the user. The role snapshot in
// the access token is computed here, never carried over from a prior token;
// the refresh token carries no roles at all.
func (s *SessionService) issue(ctx context.Context, tc tenancy.Context, user *domain.User) (*Session, error) {
	now := s.now()
	accessExpires := now.Add(s.accessTTL)
	refreshExpires := now.Add(s.refreshTTL)

	access, err := s.codec.Encode(tc.Schema(), user.ID, user.Roles, now, accessExpires)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Encode(tc.Schema(), user.ID, nil, now, refreshExpires)
	if err != nil {
		return nil, err
	}

	projection, err := s.project(ctx, tc, user)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:           user,
		Projection:     projection,
		AccessToken:    access,
		RefreshToken:   refresh,
		AccessExpires:  accessExpires,
		RefreshExpires: refreshExpires,
	}, nil
}

// Codec exposes the token codec for middleware wiring.
func (s *SessionService) Codec() *auth.Codec {
	return s.codec
}
