package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/dashboard/internal/auth/domain"
	"github.com/smallbiznis/dashboard/internal/auth/password"
	"github.com/smallbiznis/dashboard/internal/clock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour

	minPasswordLength = 6
)

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	genID       *snowflake.Node
	clock       clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, sessionRepo domain.SessionRepository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:         log.Named("auth.service"),
		repo:        repo,
		sessionRepo: sessionRepo,
		genID:       genID,
		clock:       clk,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.repo.FindOne(ctx, domain.User{
		Email:    email,
		Provider: domain.ProviderLocal,
	}); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = defaultDisplayName(email)
	}
	user := &domain.User{
		ID:           s.genID.Generate(),
		ExternalID:   uuid.NewString(),
		Provider:     domain.ProviderLocal,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: &hashed,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindOne(ctx, domain.User{
		Email:    email,
		Provider: domain.ProviderLocal,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug("login rejected", zap.String("reason", "unknown_user"))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) {
		s.log.Debug("login rejected", zap.String("reason", "password_mismatch"), zap.String("user_id", user.ID.String()))
		return nil, domain.ErrInvalidCredentials
	}
	s.upgradePasswordHash(ctx, user.ID, req.Password, *user.PasswordHash)

	return s.createSession(ctx, user, domain.ProviderLocal, req.UserAgent, req.IPAddress, false)
}

// upgradePasswordHash re-hashes with the current cost settings after a
// successful sign-in. Failures only delay the upgrade to the next sign-in.
func (s *Service) upgradePasswordHash(ctx context.Context, userID snowflake.ID, plain, encoded string) {
	if !password.NeedsRehash(encoded) {
		return
	}
	hashed, err := password.Hash(plain)
	if err != nil {
		s.log.Warn("password rehash failed", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	if err := s.repo.UpdateFields(ctx, userID, map[string]any{
		"password_hash": hashed,
		"updated_at":    s.clock.Now(),
	}); err != nil {
		s.log.Warn("password rehash not stored", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	s.log.Info("password hash upgraded", zap.String("user_id", userID.String()))
}

func (s *Service) LoginWithIdentity(ctx context.Context, req domain.IdentityLoginRequest) (*domain.LoginResult, error) {
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	externalID := strings.TrimSpace(req.ExternalID)
	if provider == "" || provider == domain.ProviderLocal || externalID == "" {
		return nil, domain.ErrInvalidCredentials
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	created := false
	user, err := s.repo.FindByExternalID(ctx, provider, externalID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if !req.AllowSignUp {
			return nil, domain.ErrSignUpDisabled
		}
		displayName := strings.TrimSpace(req.DisplayName)
		if displayName == "" {
			displayName = defaultDisplayName(email)
		}
		user = &domain.User{
			ID:          s.genID.Generate(),
			ExternalID:  externalID,
			Provider:    provider,
			DisplayName: displayName,
			Email:       email,
			Metadata:    datatypes.JSONMap{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, err
		}
		created = true
	case err != nil:
		return nil, err
	default:
		updates := map[string]any{}
		if email != user.Email {
			updates["email"] = email
			user.Email = email
		}
		if name := strings.TrimSpace(req.DisplayName); name != "" && name != user.DisplayName {
			updates["display_name"] = name
			user.DisplayName = name
		}
		if len(updates) > 0 {
			updates["updated_at"] = now
			if err := s.repo.UpdateFields(ctx, user.ID, updates); err != nil {
				return nil, err
			}
		}
	}

	return s.createSession(ctx, user, provider, req.UserAgent, req.IPAddress, created)
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}
	if session.RevokedAt != nil {
		return nil
	}

	return s.sessionRepo.RevokeSession(ctx, session.ID, s.clock.Now())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := s.clock.Now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	session.User = user

	if err := s.sessionRepo.UpdateLastSeen(ctx, session.ID, now); err != nil {
		return nil, err
	}
	session.LastSeenAt = now

	return session, nil
}

func (s *Service) createSession(ctx context.Context, user *domain.User, provider, userAgent, ip string, created bool) (*domain.LoginResult, error) {
	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		Provider:         provider,
		UserAgent:        strings.TrimSpace(userAgent),
		IPAddress:        strings.TrimSpace(ip),
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	session.User = user

	return &domain.LoginResult{
		Session:   session,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		Created:   created,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func defaultDisplayName(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
