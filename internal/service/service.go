package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tricommerce/internal/audit"
	"tricommerce/internal/event"
	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

const defaultTxTimeout = 5 * time.Second

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.Role, a.ID)
}

// Deps are the collaborators every service is built from.
type Deps struct {
	Store     repository.Store
	Events    event.Publisher
	Audit     audit.Recorder
	Logger    *zap.Logger
	TxTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = event.Nop{}
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.TxTimeout <= 0 {
		d.TxTimeout = defaultTxTimeout
	}
	return d
}

// core holds the plumbing shared by the services: bounded transactions,
// error translation, after-commit events and audit entries.
type core struct {
	Deps
}

func newCore(d Deps) core {
	return core{Deps: d.withDefaults()}
}

// transact runs fn in one transaction bounded by TxTimeout. fn must only use
// the repositories it is given.
func (c *core) transact(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.TxTimeout)
	defer cancel()

	err := c.Store.Transact(ctx, func(tx repository.Repositories) error {
		return fn(ctx, tx)
	})
	if err != nil && !isDomainError(err) && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
	return mapStorageError(err)
}

// call runs a single non-transactional repository call under the same timeout.
func (c *core) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.TxTimeout)
	defer cancel()
	return mapStorageError(fn(ctx))
}

// publish runs after commit; a failed delivery never undoes the operation.
func (c *core) publish(ctx context.Context, e event.Event) {
	if err := c.Events.Publish(ctx, e); err != nil {
		c.Logger.Warn("publish event", zap.String("action", e.Action), zap.Error(err))
	}
}

func (c *core) recordAudit(ctx context.Context, entry audit.Entry) {
	if err := c.Audit.Record(ctx, entry); err != nil {
		c.Logger.Warn("record audit entry",
			zap.String("entity", entry.Entity),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err))
	}
}
