package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"github.com/smallbiznis/orderdesk/internal/history/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultListLimit = 100

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
		log:   p.Log.Named("history.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, req domain.AppendRequest) (domain.Snapshot, error) {
	if req.Amount <= 0 {
		return domain.Snapshot{}, domain.ErrInvalidAmount
	}
	if req.CustomerID == 0 || req.ProductID == 0 || req.BatchID == 0 {
		return domain.Snapshot{}, domain.ErrNotFound
	}

	snapshot := domain.Snapshot{
		ID:          s.genID.Generate(),
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		BatchID:     req.BatchID,
		OrderAmount: req.Amount,
		SubmittedAt: req.SubmittedAt,
		Details:     req.Details,
	}
	if err := s.repo.Insert(ctx, s.db, &snapshot); err != nil {
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

func (s *Service) MostRecentActiveBatch(ctx context.Context, customerID snowflake.ID) (*domain.BatchRef, error) {
	return s.repo.MostRecentActiveBatch(ctx, s.db, customerID)
}

func (s *Service) ListBeforeBatch(ctx context.Context, customerID snowflake.ID, beforeTimestamp time.Time, limit int) ([]domain.Batch, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	snapshots, err := s.repo.ListBefore(ctx, s.db, customerID, beforeTimestamp, limit)
	if err != nil {
		return nil, err
	}
	return groupByBatch(snapshots), nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID snowflake.ID, limit int) ([]domain.Batch, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	snapshots, err := s.repo.ListByCustomer(ctx, s.db, customerID, limit)
	if err != nil {
		return nil, err
	}
	return groupByBatch(snapshots), nil
}

func (s *Service) ArchiveBatch(ctx context.Context, customerID snowflake.ID, submittedAt time.Time) (domain.ArchiveResult, error) {
	archivedAt := s.clock.Now()
	snapshots, err := s.repo.MarkArchived(ctx, s.db, customerID, submittedAt, archivedAt)
	if err != nil {
		return domain.ArchiveResult{}, err
	}
	if len(snapshots) == 0 {
		return domain.ArchiveResult{}, domain.ErrNotFound
	}

	result := domain.ArchiveResult{ModifiedCount: len(snapshots)}
	for _, snapshot := range snapshots {
		result.ProductIDs = append(result.ProductIDs, snapshot.ProductID)
	}

	s.log.Info("batch archived",
		zap.String("customer_id", customerID.String()),
		zap.Time("submitted_at", submittedAt),
		zap.Int("modified_count", result.ModifiedCount),
	)
	return result, nil
}

func (s *Service) PurgeOlderThan(ctx context.Context, ageDays int) (int64, error) {
	cutoff := s.clock.Now().AddDate(0, 0, -ageDays)
	deleted, err := s.repo.DeleteArchivedBefore(ctx, s.db, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("purged archived history",
			zap.Int64("deleted", deleted),
			zap.Int("age_days", ageDays),
		)
	}
	return deleted, nil
}

func (s *Service) DeleteOrphans(ctx context.Context) (int64, error) {
	return s.repo.DeleteOrphans(ctx, s.db)
}

// groupByBatch folds rows (already newest-first) into batches keyed by
// batch id. Rows predating the batch id column fall back to grouping
// by exact submission timestamp.
func groupByBatch(snapshots []*domain.Snapshot) []domain.Batch {
	batches := make([]domain.Batch, 0)
	index := make(map[snowflake.ID]int)
	tsIndex := make(map[time.Time]int)

	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}

		var pos int
		var ok bool
		if snapshot.BatchID != 0 {
			pos, ok = index[snapshot.BatchID]
		} else {
			pos, ok = tsIndex[snapshot.SubmittedAt]
		}
		if !ok {
			batches = append(batches, domain.Batch{
				BatchID:     snapshot.BatchID,
				SubmittedAt: snapshot.SubmittedAt,
				IsArchived:  snapshot.IsArchived,
			})
			pos = len(batches) - 1
			if snapshot.BatchID != 0 {
				index[snapshot.BatchID] = pos
			} else {
				tsIndex[snapshot.SubmittedAt] = pos
			}
		}
		batches[pos].Items = append(batches[pos].Items, *snapshot)
	}

	return batches
}
