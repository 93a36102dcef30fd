// Package board maintains the live in-memory view of open orders for the
// operator UI. Deltas from the change feed are applied by a single loop in
// arrival order, last-write-wins per order id; the list is never reordered
// by server timestamps. Financial truth lives in the store, not here.
package board

import (
	"context"
	"sync"

	"order-board-service/internal/feed"
	"order-board-service/internal/model"

	"go.uber.org/zap"
)

// Notifier is alerted on genuine inserts only, never on updates, deletes
// or resyncs.
type Notifier interface {
	NewOrder(o *model.Order)
}

// NopNotifier is used where alerting is not wired, e.g. in tests.
type NopNotifier struct{}

func (NopNotifier) NewOrder(*model.Order) {}

// Board owns the ordered order list, newest-first by arrival. Mutations
// happen only through Apply; reads take copies under a read lock because
// HTTP handlers snapshot concurrently with the delta loop.
type Board struct {
	log      *zap.Logger
	notifier Notifier

	mu     sync.RWMutex
	orders []*model.Order
}

func New(log *zap.Logger, notifier Notifier) *Board {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Board{log: log, notifier: notifier}
}

// Run consumes deltas until the context is cancelled.
func (b *Board) Run(ctx context.Context, deltas <-chan feed.Delta) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deltas:
			if !ok {
				return nil
			}
			b.Apply(d)
		}
	}
}

// Apply dispatches one delta. Exported so tests can drive the board
// without a live feed.
func (b *Board) Apply(d feed.Delta) {
	switch d.Kind {
	case feed.Inserted:
		b.applyInsert(d.Order)
	case feed.Updated:
		b.applyUpdate(d.Order)
	case feed.Deleted:
		b.applyDelete(d.OrderID)
	case feed.Resynced:
		b.applyResync(d.Orders)
	default:
		b.log.Warn("ignoring delta of unknown kind", zap.String("kind", string(d.Kind)))
	}
}

func (b *Board) indexOf(id string) int {
	for i, o := range b.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// applyInsert prepends an unseen order. A duplicate delivery of the same
// insert degrades to an update, keeping the operation idempotent.
func (b *Board) applyInsert(o *model.Order) {
	if o == nil {
		return
	}
	b.mu.Lock()
	if i := b.indexOf(o.ID); i >= 0 {
		b.orders[i] = o
		b.mu.Unlock()
		return
	}
	b.orders = append([]*model.Order{o}, b.orders...)
	b.mu.Unlock()

	b.log.Info("new order",
		zap.Int64("order_number", o.OrderNumber),
		zap.String("customer", o.CustomerName))
	b.notifier.NewOrder(o)
}

// applyUpdate replaces the matching entry in place; the position in the
// list is unchanged. An update for an absent id is a no-op, which covers
// out-of-order delivery after a delete.
func (b *Board) applyUpdate(o *model.Order) {
	if o == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(o.ID); i >= 0 {
		b.orders[i] = o
	}
}

func (b *Board) applyDelete(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		b.orders = append(b.orders[:i], b.orders[i+1:]...)
	}
}

// applyResync replaces the whole list with a fresh store snapshot. Unlike
// replaying inserts this also drops orders deleted while the feed was
// disconnected. Resyncs never fire alerts.
func (b *Board) applyResync(orders []*model.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append([]*model.Order(nil), orders...)
}

// Snapshot returns a copy of the current list for rendering.
func (b *Board) Snapshot() []*model.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*model.Order(nil), b.orders...)
}

// SnapshotByStatus returns the orders currently in the given status,
// preserving list order.
func (b *Board) SnapshotByStatus(s model.Status) []*model.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*model.Order, 0, len(b.orders))
	for _, o := range b.orders {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// Counts returns the number of orders per status plus the grand total
// under the "todos" key, feeding the board header stats.
func (b *Board) Counts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := map[string]int{"todos": len(b.orders)}
	for _, o := range b.orders {
		counts[string(o.Status)]++
	}
	return counts
}
