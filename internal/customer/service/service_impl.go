package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/auth/password"
	catalogdomain "github.com/smallbiznis/orderdesk/internal/catalog/domain"
	"github.com/smallbiznis/orderdesk/internal/customer/domain"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
	ledgerdomain "github.com/smallbiznis/orderdesk/internal/ledger/domain"
	"github.com/smallbiznis/orderdesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	LedgerRepo  ledgerdomain.Repository
	HistoryRepo historydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	ledgerRepo  ledgerdomain.Repository
	historyRepo historydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("customer.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		ledgerRepo:  p.LedgerRepo,
		historyRepo: p.HistoryRepo,
	}
}

func (s *Service) Create(ctx context.Context, in domain.CreateInput) (domain.Customer, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return domain.Customer{}, domain.ErrInvalidUsername
	}
	if in.Password == "" {
		return domain.Customer{}, domain.ErrInvalidPassword
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return domain.Customer{}, err
	}

	customer := domain.Customer{
		ID:           s.genID.Generate(),
		Username:     username,
		Name:         in.Name,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, s.db, &customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrConflict
		}
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Customer, error) {
	customer, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	customer, err := s.repo.GetByUsername(ctx, s.db, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, in domain.UpdateInput) (domain.Customer, error) {
	existing, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if existing == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	existing.Name = in.Name
	if in.Password != "" {
		hash, err := password.Hash(in.Password)
		if err != nil {
			return domain.Customer{}, err
		}
		existing.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Customer{}, err
	}
	return *existing, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	existing, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.historyRepo.DeleteByCustomer(ctx, tx, id); err != nil {
			return err
		}
		if err := s.ledgerRepo.DeleteByCustomer(ctx, tx, id); err != nil {
			return err
		}
		if err := s.catalogRepo.DeleteByCustomer(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("customer deleted", zap.String("customer_id", id.String()))
	return nil
}
