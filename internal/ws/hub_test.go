package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tricommerce/internal/event"
)

func TestPublishQueuesJSON(t *testing.T) {
	h := NewHub(zap.NewNop())

	e := event.New(event.TypeOrder, event.ActionOrderPlaced, "placed", map[string]interface{}{"sku": "A"})
	require.NoError(t, h.Publish(context.Background(), e))

	var got event.Event
	require.NoError(t, json.Unmarshal(<-h.broadcast, &got))
	assert.Equal(t, event.ActionOrderPlaced, got.Action)
	assert.Equal(t, "A", got.Data["sku"])
}

func TestPublishAfterStop(t *testing.T) {
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	for i := 0; i < broadcastBuffer; i++ {
		h.broadcast <- []byte("{}")
	}
	err := h.Publish(context.Background(), event.New(event.TypeStock, event.ActionStockChanged, "", nil))
	require.ErrorIs(t, err, ErrHubStopped)
}

func TestPublishDropsWhenBacklogFull(t *testing.T) {
	h := NewHub(zap.NewNop())

	for i := 0; i < broadcastBuffer; i++ {
		require.NoError(t, h.Publish(context.Background(), event.New(event.TypeStock, event.ActionStockChanged, "", nil)))
	}

	errc := make(chan error, 1)
	go func() {
		errc <- h.Publish(context.Background(), event.New(event.TypeStock, event.ActionStockChanged, "", nil))
	}()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrHubBusy)
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full backlog")
	}
	assert.Len(t, h.broadcast, broadcastBuffer)
}

func TestUpgradeRejectsPlainHTTP(t *testing.T) {
	app := fiber.New()
	h := NewHub(zap.NewNop())
	app.Get("/ws", Upgrade, h.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
