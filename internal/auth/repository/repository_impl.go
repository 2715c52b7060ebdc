package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateAdmin(ctx context.Context, db *gorm.DB, admin *domain.Admin) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO admins (id, username, password_hash) VALUES (?, ?, ?)`,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
	).Error
}

func (r *repo) GetAdmin(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Admin, error) {
	var admin domain.Admin
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM admins WHERE id = ?`, id,
	).Scan(&admin).Error
	if err != nil {
		return nil, err
	}
	if admin.ID == 0 {
		return nil, nil
	}
	return &admin, nil
}

func (r *repo) GetAdminByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Admin, error) {
	var admin domain.Admin
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM admins WHERE username = ?`, username,
	).Scan(&admin).Error
	if err != nil {
		return nil, err
	}
	if admin.ID == 0 {
		return nil, nil
	}
	return &admin, nil
}

func (r *repo) UpdateAdminPassword(ctx context.Context, db *gorm.DB, id snowflake.ID, passwordHash string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE admins SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash,
		id,
	).Error
}

func (r *repo) CreateSession(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sessions (token, principal_id, role, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.Token,
		session.PrincipalID,
		session.Role,
		session.ExpiresAt,
		session.CreatedAt,
	).Error
}

func (r *repo) GetSession(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM sessions WHERE token = ?`, token,
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM sessions WHERE token = ?`, token,
	).Error
}

func (r *repo) DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM sessions WHERE expires_at < ?`, now,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
