package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dashboard/internal/auth/domain"
	"github.com/smallbiznis/dashboard/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New returns one gorm-backed store serving both users and sessions.
func New(conn *gorm.DB) (domain.Repository, domain.SessionRepository) {
	r := &repo{db: conn}
	return r, r
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, db.Wrap("count users", err)
}

func (r *repo) Create(ctx context.Context, user *domain.User) error {
	return db.Wrap("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *repo) FindByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error) {
	return r.firstUser("find user by identity",
		r.db.WithContext(ctx).Where("provider = ? AND external_id = ?", provider, externalID))
}

func (r *repo) FindOne(ctx context.Context, user domain.User) (*domain.User, error) {
	return r.firstUser("find user", r.db.WithContext(ctx).Where(user))
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return r.firstUser("find user by id", r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) firstUser(op string, stmt *gorm.DB) (*domain.User, error) {
	var user domain.User
	err := stmt.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, db.Wrap(op, err)
	}
	return &user, nil
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	return affected("update user", tx, domain.ErrUserNotFound)
}

func (r *repo) CreateSession(ctx context.Context, session *domain.Session) error {
	return db.Wrap("create session", r.db.WithContext(ctx).Create(session).Error)
}

func (r *repo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).Where("session_token_hash = ?", tokenHash).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, db.Wrap("find session", err)
	}
	return &session, nil
}

func (r *repo) UpdateLastSeen(ctx context.Context, sessionID snowflake.ID, lastSeen time.Time) error {
	tx := r.db.WithContext(ctx).Model(&domain.Session{}).Where("id = ?", sessionID).Update("last_seen_at", lastSeen)
	return affected("touch session", tx, domain.ErrSessionNotFound)
}

func (r *repo) RevokeSession(ctx context.Context, sessionID snowflake.ID, revokedAt time.Time) error {
	tx := r.db.WithContext(ctx).Model(&domain.Session{}).Where("id = ?", sessionID).Update("revoked_at", revokedAt)
	return affected("revoke session", tx, domain.ErrSessionNotFound)
}

// affected maps an update that matched no row to notFound.
func affected(op string, tx *gorm.DB, notFound error) error {
	if tx.Error != nil {
		return db.Wrap(op, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return notFound
	}
	return nil
}
