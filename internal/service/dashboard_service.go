package service

import (
	"context"

	"github.com/google/uuid"

	"tricommerce/internal/model"
)

// LowStockThreshold marks products that need restocking on the dashboard.
const LowStockThreshold = 10

type SellerStats struct {
	PendingOrders   int64                         `json:"pending_orders"`
	LowStockCount   int64                         `json:"low_stock_count"`
	ProductsByState map[model.ProductStatus]int64 `json:"products_by_status"`
}

type DashboardService interface {
	SellerStats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error)
}

type dashboardService struct {
	core
}

func NewDashboardService(deps Deps) DashboardService {
	return &dashboardService{core: newCore(deps)}
}

func (s *dashboardService) SellerStats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error) {
	var stats SellerStats
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		if stats.PendingOrders, err = s.Store.Orders().CountForSeller(ctx, sellerID, model.OrderPending); err != nil {
			return err
		}
		if stats.LowStockCount, err = s.Store.Products().CountLowStock(ctx, sellerID, LowStockThreshold); err != nil {
			return err
		}
		stats.ProductsByState, err = s.Store.Products().CountByStatus(ctx, sellerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
