package service

import (
	"context"
	"fmt"

	"github.com/damilare/otc-exchange/internal/directory"
	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/observability"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/shopspring/decimal"
)

// ComputeStats folds an order set into the dashboard projection. Pure
// function: volume and revenue sum over every order regardless of status,
// matching how the dashboard has always reported them.
func ComputeStats(orders []models.Order, pendingKYC int) models.Stats {
	stats := models.Stats{
		ByStatus:        make(map[string]int),
		TotalVolumeNGN:  decimal.Zero,
		TotalRevenueNGN: decimal.Zero,
		PendingKYC:      pendingKYC,
	}

	for i := range orders {
		o := &orders[i]
		stats.TotalOrders++
		stats.ByStatus[o.Status]++
		stats.TotalVolumeNGN = stats.TotalVolumeNGN.Add(o.FiatAmountNGN)
		stats.TotalRevenueNGN = stats.TotalRevenueNGN.Add(o.FeeNGN)

		switch {
		case o.Status == domain.OrderStatusCompleted:
			stats.CompletedOrders++
		case o.Status == domain.OrderStatusFailed:
			stats.FailedOrders++
		case o.Status == domain.OrderStatusCancelled:
			stats.CancelledOrders++
		case domain.IsAwaiting(o.Status) || o.Status == domain.OrderStatusUnderReview:
			stats.ActiveTransactions++
		}
	}
	return stats
}

// StatsService materializes the projection from the order store and the
// user directory on demand. Nothing is cached.
type StatsService struct {
	orders    repository.Orders
	directory directory.UserDirectory
}

func NewStatsService(orders repository.Orders, dir directory.UserDirectory) *StatsService {
	return &StatsService{orders: orders, directory: dir}
}

func (s *StatsService) Compute(ctx context.Context) (*models.Stats, error) {
	orders, err := s.orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	pendingKYC, err := s.directory.CountPendingKYC(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pending kyc: %w", err)
	}

	stats := ComputeStats(orders, pendingKYC)
	observability.SetActiveOrders(int64(stats.ActiveTransactions))
	return &stats, nil
}
