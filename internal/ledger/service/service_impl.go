package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"github.com/smallbiznis/orderdesk/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) SaveDraft(ctx context.Context, customerID, productID snowflake.ID, amount float64) (domain.OrderRecord, error) {
	record, err := s.saveDraftAt(ctx, customerID, productID, amount, s.clock.Now())
	if err != nil {
		return domain.OrderRecord{}, err
	}
	return *record, nil
}

func (s *Service) SaveDraftBatch(ctx context.Context, customerID snowflake.ID, items []domain.DraftItem) (domain.SaveDraftBatchResult, error) {
	// One timestamp for the whole batch so callers can tell which
	// drafts moved together. Items are applied independently; a failed
	// item does not roll back the ones before it.
	now := s.clock.Now()
	result := domain.SaveDraftBatchResult{UpdatedAt: now}

	failed := 0
	for _, item := range items {
		_, err := s.saveDraftAt(ctx, customerID, item.ProductID, item.Amount, now)
		if err != nil {
			s.log.Warn("draft batch item failed",
				zap.String("customer_id", customerID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			failed++
		}
		result.Items = append(result.Items, domain.DraftItemResult{
			ProductID: item.ProductID,
			Err:       err,
		})
	}

	if failed > 0 {
		return result, &domain.PartialBatchError{Failed: failed, Total: len(result.Items)}
	}
	return result, nil
}

func (s *Service) saveDraftAt(ctx context.Context, customerID, productID snowflake.ID, amount float64, at time.Time) (*domain.OrderRecord, error) {
	if customerID == 0 || productID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if amount < 0 {
		return nil, domain.ErrInvalidAmount
	}

	record := domain.OrderRecord{
		ID:             s.genID.Generate(),
		CustomerID:     customerID,
		ProductID:      productID,
		DraftAmount:    amount,
		DraftUpdatedAt: &at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if err := s.repo.UpsertDraft(ctx, s.db, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) RecordSubmission(ctx context.Context, customerID, productID snowflake.ID, amount float64, batchID snowflake.ID, submittedAt time.Time) error {
	if customerID == 0 || productID == 0 {
		return domain.ErrInvalidProduct
	}
	if amount < 0 {
		return domain.ErrInvalidAmount
	}

	record := domain.OrderRecord{
		ID:                   s.genID.Generate(),
		CustomerID:           customerID,
		ProductID:            productID,
		DraftAmount:          0,
		DraftUpdatedAt:       &submittedAt,
		LastSubmittedAmount:  amount,
		LastSubmittedAt:      &submittedAt,
		LastSubmittedBatchID: &batchID,
		CreatedAt:            submittedAt,
		UpdatedAt:            submittedAt,
	}
	return s.repo.UpsertSubmission(ctx, s.db, &record)
}

func (s *Service) ClearSubmission(ctx context.Context, customerID, productID snowflake.ID, previousSubmittedAt time.Time) (bool, error) {
	return s.repo.ClearSubmission(ctx, s.db, customerID, productID, previousSubmittedAt, s.clock.Now())
}

func (s *Service) Get(ctx context.Context, customerID, productID snowflake.ID) (*domain.OrderRecord, error) {
	return s.repo.Get(ctx, s.db, customerID, productID)
}

func (s *Service) ListForCustomer(ctx context.Context, customerID snowflake.ID) ([]*domain.OrderRecord, error) {
	return s.repo.ListByCustomer(ctx, s.db, customerID)
}

func (s *Service) DeleteOrphans(ctx context.Context) (int64, error) {
	return s.repo.DeleteOrphans(ctx, s.db)
}
