package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tricommerce/internal/model"
)

func TestSellerStats(t *testing.T) {
	c := newCheckoutFixture(t, 1)
	c.product("P-1", "1.00", 50, model.ProductPending, c.seller.ID)

	_, err := c.orders.PlaceOrder(c.ctx, c.customer.ID, "123 Main St")
	require.NoError(t, err)

	stats, err := NewDashboardService(c.deps).SellerStats(c.ctx, c.seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 2, stats.LowStockCount)
	assert.EqualValues(t, 2, stats.ProductsByState[model.ProductActive])
	assert.EqualValues(t, 1, stats.ProductsByState[model.ProductPending])
}
