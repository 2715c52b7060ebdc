package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/auth/domain"
	"github.com/smallbiznis/orderdesk/internal/auth/password"
	"github.com/smallbiznis/orderdesk/internal/clock"
	customerdomain "github.com/smallbiznis/orderdesk/internal/customer/domain"
	"github.com/smallbiznis/orderdesk/internal/principal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTTL        = 7 * 24 * time.Hour
	minPasswordLength = 8
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("auth.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) Login(ctx context.Context, username, pass string) (domain.LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || pass == "" {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	var p principal.Principal
	var hash string

	admin, err := s.repo.GetAdminByUsername(ctx, s.db, username)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if admin != nil {
		p = principal.Principal{ID: admin.ID, Role: principal.RoleAdmin}
		hash = admin.PasswordHash
	} else {
		customer, err := s.customerRepo.GetByUsername(ctx, s.db, username)
		if err != nil {
			return domain.LoginResult{}, err
		}
		if customer == nil {
			return domain.LoginResult{}, domain.ErrInvalidCredentials
		}
		p = principal.Principal{ID: customer.ID, Role: principal.RoleCustomer}
		hash = customer.PasswordHash
	}

	if !password.Verify(pass, hash) {
		s.log.Warn("login rejected", zap.String("username", username))
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return domain.LoginResult{}, err
	}

	now := s.clock.Now()
	session := domain.Session{
		Token:       token,
		PrincipalID: p.ID,
		Role:        p.Role,
		ExpiresAt:   now.Add(sessionTTL),
		CreatedAt:   now,
	}
	if err := s.repo.CreateSession(ctx, s.db, &session); err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{Session: session, Principal: p}, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (principal.Principal, error) {
	if token == "" {
		return principal.Principal{}, domain.ErrSessionExpired
	}

	session, err := s.repo.GetSession(ctx, s.db, token)
	if err != nil {
		return principal.Principal{}, err
	}
	if session == nil {
		return principal.Principal{}, domain.ErrSessionExpired
	}
	if session.ExpiresAt.Before(s.clock.Now()) {
		_ = s.repo.DeleteSession(ctx, s.db, token)
		return principal.Principal{}, domain.ErrSessionExpired
	}
	return principal.Principal{ID: session.PrincipalID, Role: session.Role}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, s.db, token)
}

func (s *Service) ChangePassword(ctx context.Context, p principal.Principal, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	switch p.Role {
	case principal.RoleAdmin:
		admin, err := s.repo.GetAdmin(ctx, s.db, p.ID)
		if err != nil {
			return err
		}
		if admin == nil || !password.Verify(currentPassword, admin.PasswordHash) {
			return domain.ErrInvalidCredentials
		}
		hash, err := password.Hash(newPassword)
		if err != nil {
			return err
		}
		return s.repo.UpdateAdminPassword(ctx, s.db, p.ID, hash)

	default:
		customer, err := s.customerRepo.Get(ctx, s.db, p.ID)
		if err != nil {
			return err
		}
		if customer == nil || !password.Verify(currentPassword, customer.PasswordHash) {
			return domain.ErrInvalidCredentials
		}
		hash, err := password.Hash(newPassword)
		if err != nil {
			return err
		}
		customer.PasswordHash = hash
		return s.customerRepo.Update(ctx, s.db, customer)
	}
}

func (s *Service) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.db, s.clock.Now())
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
