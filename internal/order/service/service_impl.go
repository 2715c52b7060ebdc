package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/orderdesk/internal/catalog/domain"
	"github.com/smallbiznis/orderdesk/internal/clock"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
	ledgerdomain "github.com/smallbiznis/orderdesk/internal/ledger/domain"
	"github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/principal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Catalog catalogdomain.Service
	Ledger  ledgerdomain.Service
	History historydomain.Service
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	catalog catalogdomain.Service
	ledger  ledgerdomain.Service
	history historydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		catalog: p.Catalog,
		ledger:  p.Ledger,
		history: p.History,
	}
}

func (s *Service) SaveDraft(ctx context.Context, p principal.Principal, productID snowflake.ID, amount float64) (ledgerdomain.OrderRecord, error) {
	if err := principal.RequireCustomer(p); err != nil {
		return ledgerdomain.OrderRecord{}, err
	}
	if _, err := s.catalog.GetProduct(ctx, p.ID, productID); err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			return ledgerdomain.OrderRecord{}, domain.ErrNotFound
		}
		return ledgerdomain.OrderRecord{}, err
	}
	return s.ledger.SaveDraft(ctx, p.ID, productID, amount)
}

func (s *Service) SaveDraftBatch(ctx context.Context, p principal.Principal, items []ledgerdomain.DraftItem) (ledgerdomain.SaveDraftBatchResult, error) {
	if err := principal.RequireCustomer(p); err != nil {
		return ledgerdomain.SaveDraftBatchResult{}, err
	}
	return s.ledger.SaveDraftBatch(ctx, p.ID, items)
}

func (s *Service) SubmitAll(ctx context.Context, p principal.Principal, items []ledgerdomain.DraftItem) (domain.SubmitResult, error) {
	if err := principal.RequireCustomer(p); err != nil {
		return domain.SubmitResult{}, err
	}

	result := domain.SubmitResult{
		BatchID:     s.genID.Generate(),
		SubmittedAt: s.clock.Now(),
	}

	for _, line := range items {
		item := domain.SubmitItemResult{
			ProductID: line.ProductID,
			Amount:    line.Amount,
		}

		// Zero and negative amounts stay out of history and keep the
		// pair's previous submitted state.
		if line.Amount <= 0 {
			item.Outcome = domain.OutcomeSkipped
			result.SkippedCount++
			result.Items = append(result.Items, item)
			continue
		}

		if err := s.submitLine(ctx, p.ID, line.ProductID, line.Amount, result.BatchID, result.SubmittedAt); err != nil {
			s.log.Warn("submit line failed",
				zap.String("customer_id", p.ID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.Error(err),
			)
			item.Outcome = domain.OutcomeFailed
			item.Err = err
			result.FailedCount++
		} else {
			item.Outcome = domain.OutcomeSubmitted
			result.SubmittedCount++
		}
		result.Items = append(result.Items, item)
	}

	if result.FailedCount > 0 {
		return result, &domain.PartialBatchError{Failed: result.FailedCount, Total: len(result.Items)}
	}
	return result, nil
}

// submitLine freezes the product's current details into a history
// snapshot, then stamps the ledger. History first: a crash between the
// two leaves a snapshot without a ledger stamp, which the next archive
// or reconcile pass tolerates, while the reverse order could claim a
// submission that was never recorded.
func (s *Service) submitLine(ctx context.Context, customerID, productID snowflake.ID, amount float64, batchID snowflake.ID, submittedAt time.Time) error {
	product, err := s.catalog.GetProduct(ctx, customerID, productID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	_, err = s.history.Append(ctx, historydomain.AppendRequest{
		CustomerID:  customerID,
		ProductID:   productID,
		BatchID:     batchID,
		Amount:      amount,
		SubmittedAt: submittedAt,
		Details: historydomain.Details{
			SKU:   product.SKU,
			Name:  product.Name,
			Price: product.Price,
			Unit:  product.Unit,
		},
	})
	if err != nil {
		return err
	}

	return s.ledger.RecordSubmission(ctx, customerID, productID, amount, batchID, submittedAt)
}

func (s *Service) DraftView(ctx context.Context, p principal.Principal) ([]domain.DraftLine, error) {
	if err := principal.RequireCustomer(p); err != nil {
		return nil, err
	}

	products, err := s.catalog.ListForCustomer(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ListForCustomer(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[snowflake.ID]*ledgerdomain.OrderRecord, len(records))
	for _, record := range records {
		byProduct[record.ProductID] = record
	}

	lines := make([]domain.DraftLine, 0, len(products))
	for _, product := range products {
		line := domain.DraftLine{Product: *product}
		if record, ok := byProduct[product.ID]; ok {
			line.DraftAmount = record.DraftAmount
			line.DraftUpdatedAt = record.DraftUpdatedAt
			line.LastSubmittedAmount = record.LastSubmittedAmount
			line.LastSubmittedAt = record.LastSubmittedAt
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Service) CustomerHistory(ctx context.Context, p principal.Principal, limit int) ([]historydomain.Batch, error) {
	if err := principal.RequireCustomer(p); err != nil {
		return nil, err
	}
	return s.history.ListForCustomer(ctx, p.ID, limit)
}

func (s *Service) AdminHistory(ctx context.Context, p principal.Principal, customerID snowflake.ID, limit int) ([]historydomain.Batch, error) {
	if err := principal.RequireAdmin(p); err != nil {
		return nil, err
	}

	latest, err := s.history.MostRecentActiveBatch(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return []historydomain.Batch{}, nil
	}
	return s.history.ListBeforeBatch(ctx, customerID, latest.SubmittedAt, limit)
}

func (s *Service) ArchiveOrder(ctx context.Context, p principal.Principal, customerID snowflake.ID, submittedAt time.Time) (domain.ArchiveOrderResult, error) {
	if err := principal.RequireAdmin(p); err != nil {
		return domain.ArchiveOrderResult{}, err
	}

	archived, err := s.history.ArchiveBatch(ctx, customerID, submittedAt)
	if err != nil {
		if errors.Is(err, historydomain.ErrNotFound) {
			return domain.ArchiveOrderResult{}, domain.ErrNotFound
		}
		return domain.ArchiveOrderResult{}, err
	}

	result := domain.ArchiveOrderResult{
		ModifiedCount: archived.ModifiedCount,
		Items:         make([]domain.ArchiveItemResult, 0, len(archived.ProductIDs)),
	}

	failed := 0
	for _, productID := range archived.ProductIDs {
		item := domain.ArchiveItemResult{ProductID: productID}
		cleared, err := s.ledger.ClearSubmission(ctx, customerID, productID, submittedAt)
		if err != nil {
			s.log.Warn("ledger clear failed",
				zap.String("customer_id", customerID.String()),
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
			item.Err = err
			failed++
		} else {
			// cleared=false means a newer submission owns the pair
			// now; the archive still stands.
			item.Cleared = cleared
		}
		result.Items = append(result.Items, item)
	}

	if failed > 0 {
		return result, &domain.PartialBatchError{Failed: failed, Total: len(result.Items)}
	}
	return result, nil
}
