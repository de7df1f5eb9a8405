package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/filestore"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/observability"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService drives the order lifecycle. All transitions on one order are
// serialized through a per-order lock, so concurrent proof uploads, admin
// resolutions and cancellations cannot interleave.
type OrderService struct {
	orders    repository.Orders
	catalog   *CatalogService
	pricing   *PricingService
	quotes    *QuoteService
	validator *Validator
	files     filestore.Store
	feePct    decimal.Decimal
	locks     *keyedMutex
	now       func() time.Time
}

func NewOrderService(
	orders repository.Orders,
	catalog *CatalogService,
	pricing *PricingService,
	quotes *QuoteService,
	validator *Validator,
	files filestore.Store,
	feePct decimal.Decimal,
	now func() time.Time,
) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		orders:    orders,
		catalog:   catalog,
		pricing:   pricing,
		quotes:    quotes,
		validator: validator,
		files:     files,
		feePct:    feePct,
		locks:     newKeyedMutex(),
		now:       now,
	}
}

// CreateOrderRequest carries everything the user submits when committing
// to a trade. QuoteID is optional; without one the order prices at the
// live rate.
type CreateOrderRequest struct {
	UserID      uuid.UUID
	Direction   string
	Symbol      string
	Amount      decimal.Decimal
	Unit        string
	QuoteID     uuid.UUID
	Network     string
	BankDetails *models.BankDetails
}

// Create validates the request, snapshots the price and settlement target
// and persists the order in its initial awaiting state.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if req.Direction != domain.DirectionBuy && req.Direction != domain.DirectionSell {
		return nil, fmt.Errorf("unknown direction %q: %w", req.Direction, models.ErrInvalidRequest)
	}
	if req.Unit == "" {
		req.Unit = domain.UnitCrypto
	}
	if req.Unit != domain.UnitCrypto && req.Unit != domain.UnitFiat {
		return nil, fmt.Errorf("unknown unit %q: %w", req.Unit, models.ErrInvalidRequest)
	}

	asset, err := s.catalog.GetActiveAsset(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	unitPrice, marginPct, err := s.resolvePrice(ctx, req, asset)
	if err != nil {
		return nil, err
	}

	cryptoAmount, fiatAmount, err := splitAmounts(req.Amount, req.Unit, unitPrice)
	if err != nil {
		return nil, err
	}

	settlement, err := s.validator.Validate(ctx, req.UserID, req.Direction, asset, cryptoAmount, req.Network, req.BankDetails)
	if err != nil {
		return nil, err
	}

	created := s.now()
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          req.UserID,
		Direction:       req.Direction,
		Symbol:          asset.Symbol,
		RequestedAmount: req.Amount,
		RequestedUnit:   req.Unit,
		CryptoAmount:    cryptoAmount,
		FiatAmountNGN:   fiatAmount,
		UnitPriceNGN:    unitPrice,
		MarginPct:       marginPct,
		FeeNGN:          domain.RoundFiat(domain.ApplyPercent(fiatAmount, s.feePct)),
		Status:          domain.InitialStatus(req.Direction),
		BankAccount:     settlement.BankAccount,
		Wallet:          settlement.Wallet,
		Network:         req.Network,
		BankDetails:     req.BankDetails,
		QuoteID:         req.QuoteID,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	if order.Wallet != nil && order.Network == "" {
		order.Network = order.Wallet.Network
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	observability.IncrementOrderCreated(order.Direction)
	zap.L().Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.String("direction", order.Direction),
		zap.String("symbol", order.Symbol),
		zap.String("status", order.Status),
		zap.String("fiat_amount_ngn", order.FiatAmountNGN.String()),
	)
	return order, nil
}

// resolvePrice redeems the quote token when one is supplied, otherwise
// prices at the live rate. The live path skips the enablement gate so a
// disabled direction reaches the validator and accumulates with the other
// failed checks.
func (s *OrderService) resolvePrice(ctx context.Context, req CreateOrderRequest, asset *models.Asset) (decimal.Decimal, decimal.Decimal, error) {
	if req.QuoteID != uuid.Nil {
		quote, err := s.quotes.Redeem(ctx, req.QuoteID, asset.Symbol, req.Direction)
		if err != nil {
			observability.IncrementQuoteEvent("rejected")
			return decimal.Decimal{}, decimal.Decimal{}, err
		}
		observability.IncrementQuoteEvent("redeemed")
		return quote.UnitPriceNGN, quote.MarginPct, nil
	}

	unitPrice, margin := s.pricing.resolve(asset, req.Direction)
	return unitPrice, margin, nil
}

// splitAmounts derives both denominations of the trade from the requested
// amount and its unit.
func splitAmounts(amount decimal.Decimal, unit string, unitPrice decimal.Decimal) (crypto, fiat decimal.Decimal, err error) {
	converted, err := Convert(amount, unit, unitPrice)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	if unit == domain.UnitFiat {
		return converted, domain.RoundFiat(amount), nil
	}
	return domain.RoundCrypto(amount), converted, nil
}

// Get returns an order. A non-nil userID restricts the lookup to that
// user's own orders; admin callers pass uuid.Nil.
func (s *OrderService) Get(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != uuid.Nil && order.UserID != userID {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

// List returns orders matching the filter, newest first.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	return s.orders.List(ctx, filter)
}

// AttachProof stores the proof-of-payment blob and moves the order to
// under_review. Both the file and the payment reference are required; the
// upload and the status change land as one update so a crash between them
// cannot leave a reviewed order without its evidence.
func (s *OrderService) AttachProof(ctx context.Context, id, userID uuid.UUID, filename string, blob []byte, reference string) (*models.Order, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	order, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(order.Status, domain.OrderStatusUnderReview); err != nil {
		return nil, err
	}
	if len(blob) == 0 || filename == "" || reference == "" {
		return nil, fmt.Errorf("proof file and payment reference are both required: %w", models.ErrIncompleteProof)
	}

	ref, err := s.files.Save(ctx, filename, blob)
	if err != nil {
		return nil, fmt.Errorf("store proof for order %s: %w", id, err)
	}

	from := order.Status
	now := s.now()
	order.Proof = &models.Proof{FileRef: ref, Reference: reference, SubmittedAt: now}
	order.Status = domain.OrderStatusUnderReview
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}

	observability.IncrementOrderTransition(from, order.Status)
	zap.L().Info("proof attached",
		zap.String("order_id", order.ID.String()),
		zap.String("file_ref", ref),
	)
	return order, nil
}

// Resolve records the admin verdict. Completion stamps CompletedAt; failure
// requires a reason the user will see.
func (s *OrderService) Resolve(ctx context.Context, id uuid.UUID, outcome, notes, failureReason string) (*models.Order, error) {
	var target string
	switch outcome {
	case domain.OutcomeCompleted:
		target = domain.OrderStatusCompleted
	case domain.OutcomeFailed:
		if failureReason == "" {
			return nil, fmt.Errorf("failure reason is required: %w", models.ErrInvalidRequest)
		}
		target = domain.OrderStatusFailed
	default:
		return nil, fmt.Errorf("unknown outcome %q: %w", outcome, models.ErrInvalidRequest)
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(order.Status, target); err != nil {
		return nil, err
	}

	from := order.Status
	now := s.now()
	order.Status = target
	order.AdminNotes = notes
	order.FailureReason = failureReason
	order.UpdatedAt = now
	if target == domain.OrderStatusCompleted {
		order.CompletedAt = &now
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}

	observability.IncrementOrderTransition(from, order.Status)
	zap.L().Info("order resolved",
		zap.String("order_id", order.ID.String()),
		zap.String("outcome", order.Status),
	)
	return order, nil
}

// Cancel moves a non-terminal order to cancelled. Cancelling an already
// cancelled order is a no-op success; cancelling a completed or failed one
// is an invalid transition.
func (s *OrderService) Cancel(ctx context.Context, id, userID uuid.UUID, reason string) (*models.Order, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	order, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCancelled {
		return order, nil
	}
	if err := checkTransition(order.Status, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}

	from := order.Status
	order.Status = domain.OrderStatusCancelled
	order.CancelReason = reason
	order.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}

	observability.IncrementOrderTransition(from, order.Status)
	zap.L().Info("order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("reason", reason),
	)
	return order, nil
}

// ExpireStale cancels awaiting orders older than maxAge, in batches of
// limit. It returns how many orders were cancelled.
func (s *OrderService) ExpireStale(ctx context.Context, maxAge time.Duration, limit int) (int, error) {
	cutoff := s.now().Add(-maxAge)
	stale, err := s.orders.ListAwaitingBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale orders: %w", err)
	}

	expired := 0
	for i := range stale {
		if _, err := s.Cancel(ctx, stale[i].ID, uuid.Nil, "expired"); err != nil {
			zap.L().Warn("expire order failed",
				zap.String("order_id", stale[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}
	if expired > 0 {
		observability.IncrementExpiredOrders(expired)
	}
	return expired, nil
}
