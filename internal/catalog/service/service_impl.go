package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/catalog/domain"
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
	LedgerRepo  ledgerdomain.Repository
	HistoryRepo historydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	ledgerRepo  ledgerdomain.Repository
	historyRepo historydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("catalog.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		ledgerRepo:  p.LedgerRepo,
		historyRepo: p.HistoryRepo,
	}
}

func (s *Service) CreateMaster(ctx context.Context, in domain.MasterProductInput) (domain.MasterProduct, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return domain.MasterProduct{}, domain.ErrInvalidSKU
	}

	product := domain.MasterProduct{
		ID:    s.genID.Generate(),
		SKU:   sku,
		Name:  in.Name,
		Price: in.Price,
		Unit:  in.Unit,
	}
	if err := s.repo.CreateMaster(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.MasterProduct{}, domain.ErrConflict
		}
		return domain.MasterProduct{}, err
	}
	return product, nil
}

func (s *Service) GetMaster(ctx context.Context, id snowflake.ID) (*domain.MasterProduct, error) {
	product, err := s.repo.GetMaster(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) ListMaster(ctx context.Context) ([]*domain.MasterProduct, error) {
	return s.repo.ListMaster(ctx, s.db)
}

func (s *Service) UpdateMaster(ctx context.Context, id snowflake.ID, in domain.MasterProductInput) (domain.MasterProduct, error) {
	existing, err := s.repo.GetMaster(ctx, s.db, id)
	if err != nil {
		return domain.MasterProduct{}, err
	}
	if existing == nil {
		return domain.MasterProduct{}, domain.ErrNotFound
	}

	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return domain.MasterProduct{}, domain.ErrInvalidSKU
	}

	existing.SKU = sku
	existing.Name = in.Name
	existing.Price = in.Price
	existing.Unit = in.Unit
	if err := s.repo.UpdateMaster(ctx, s.db, existing); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.MasterProduct{}, domain.ErrConflict
		}
		return domain.MasterProduct{}, err
	}
	return *existing, nil
}

func (s *Service) DeleteMaster(ctx context.Context, id snowflake.ID) error {
	existing, err := s.repo.GetMaster(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	return s.repo.DeleteMaster(ctx, s.db, id)
}

func (s *Service) Assign(ctx context.Context, customerID snowflake.ID, masterProductIDs []snowflake.ID) (domain.AssignResult, error) {
	result := domain.AssignResult{Items: make([]domain.AssignItemResult, 0, len(masterProductIDs))}

	for _, masterID := range masterProductIDs {
		item := domain.AssignItemResult{MasterProductID: masterID}

		master, err := s.repo.GetMaster(ctx, s.db, masterID)
		if err == nil && master == nil {
			err = domain.ErrNotFound
		}
		if err == nil {
			product := domain.Product{
				ID:         s.genID.Generate(),
				CustomerID: customerID,
				SKU:        master.SKU,
				Name:       master.Name,
				Price:      master.Price,
				Unit:       master.Unit,
			}
			if createErr := s.repo.Create(ctx, s.db, &product); createErr != nil {
				if db.IsDuplicateKeyErr(createErr) {
					err = domain.ErrConflict
				} else {
					err = createErr
				}
			} else {
				item.ProductID = product.ID
			}
		}

		if err != nil {
			s.log.Warn("assign item failed",
				zap.String("customer_id", customerID.String()),
				zap.String("master_product_id", masterID.String()),
				zap.Error(err),
			)
			item.Err = err
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

func (s *Service) CreateForCustomer(ctx context.Context, customerID snowflake.ID, in domain.ProductInput) (domain.Product, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return domain.Product{}, domain.ErrInvalidSKU
	}

	product := domain.Product{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		SKU:        sku,
		Name:       in.Name,
		Price:      in.Price,
		Unit:       in.Unit,
	}
	if err := s.repo.Create(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrConflict
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, customerID, productID snowflake.ID) (*domain.Product, error) {
	product, err := s.repo.Get(ctx, s.db, customerID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID snowflake.ID) ([]*domain.Product, error) {
	return s.repo.ListByCustomer(ctx, s.db, customerID)
}

func (s *Service) UpdateForCustomer(ctx context.Context, customerID, productID snowflake.ID, in domain.ProductInput) (domain.Product, error) {
	existing, err := s.repo.Get(ctx, s.db, customerID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if existing == nil {
		return domain.Product{}, domain.ErrNotFound
	}

	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return domain.Product{}, domain.ErrInvalidSKU
	}

	existing.SKU = sku
	existing.Name = in.Name
	existing.Price = in.Price
	existing.Unit = in.Unit
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrConflict
		}
		return domain.Product{}, err
	}
	return *existing, nil
}

func (s *Service) RemoveFromCustomer(ctx context.Context, customerID, productID snowflake.ID) error {
	existing, err := s.repo.Get(ctx, s.db, customerID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, customerID, productID); err != nil {
			return err
		}
		if err := s.ledgerRepo.DeleteByProduct(ctx, tx, customerID, productID); err != nil {
			return err
		}
		return s.historyRepo.DeleteByProduct(ctx, tx, customerID, productID)
	})
}
