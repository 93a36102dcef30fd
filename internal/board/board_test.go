package board

import (
	"testing"

	"order-board-service/internal/feed"
	"order-board-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	seen []int64
}

func (r *recordingNotifier) NewOrder(o *model.Order) {
	r.seen = append(r.seen, o.OrderNumber)
}

func order(id string, number int64, status model.Status) *model.Order {
	return &model.Order{ID: id, OrderNumber: number, Status: status}
}

func newTestBoard() (*Board, *recordingNotifier) {
	n := &recordingNotifier{}
	return New(zap.NewNop(), n), n
}

func TestInsertPrependsNewestFirst(t *testing.T) {
	b, _ := newTestBoard()

	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("b", 2, model.StatusPending)})

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
	assert.Equal(t, "a", snap[1].ID)
}

func TestDuplicateInsertIsIdempotent(t *testing.T) {
	b, n := newTestBoard()

	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})
	dup := order("a", 1, model.StatusConfirmed)
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: dup})

	snap := b.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, model.StatusConfirmed, snap[0].Status)
	// the duplicate degraded to an update and fired no second alert
	assert.Equal(t, []int64{1}, n.seen)
}

func TestUpdateKeepsPosition(t *testing.T) {
	b, _ := newTestBoard()
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("b", 2, model.StatusPending)})

	b.Apply(feed.Delta{Kind: feed.Updated, Order: order("a", 1, model.StatusPreparing)})

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
	assert.Equal(t, "a", snap[1].ID)
	assert.Equal(t, model.StatusPreparing, snap[1].Status)
}

func TestUpdateForAbsentOrderIsNoop(t *testing.T) {
	b, n := newTestBoard()

	b.Apply(feed.Delta{Kind: feed.Updated, Order: order("ghost", 9, model.StatusReady)})

	assert.Empty(t, b.Snapshot())
	assert.Empty(t, n.seen)
}

func TestDeleteAfterUpdateRemoves(t *testing.T) {
	b, _ := newTestBoard()
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})

	b.Apply(feed.Delta{Kind: feed.Updated, Order: order("a", 1, model.StatusReady)})
	b.Apply(feed.Delta{Kind: feed.Deleted, OrderID: "a"})

	assert.Empty(t, b.Snapshot())
}

func TestUpdateAfterDeleteIsNoop(t *testing.T) {
	// arrival order wins: the late update does not resurrect the order
	b, _ := newTestBoard()
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})
	b.Apply(feed.Delta{Kind: feed.Deleted, OrderID: "a"})

	b.Apply(feed.Delta{Kind: feed.Updated, Order: order("a", 1, model.StatusReady)})

	assert.Empty(t, b.Snapshot())
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	b, _ := newTestBoard()
	b.Apply(feed.Delta{Kind: feed.Deleted, OrderID: "nope"})
	assert.Empty(t, b.Snapshot())
}

func TestResyncReplacesList(t *testing.T) {
	b, n := newTestBoard()
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("stale", 1, model.StatusPending)})

	b.Apply(feed.Delta{Kind: feed.Resynced, Orders: []*model.Order{
		order("x", 5, model.StatusPreparing),
		order("y", 4, model.StatusReady),
	}})

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "x", snap[0].ID)
	assert.Equal(t, "y", snap[1].ID)
	// resync never alerts
	assert.Equal(t, []int64{1}, n.seen)
}

func TestNotifierFiresOnGenuineInsertOnly(t *testing.T) {
	b, n := newTestBoard()

	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})
	b.Apply(feed.Delta{Kind: feed.Updated, Order: order("a", 1, model.StatusConfirmed)})
	b.Apply(feed.Delta{Kind: feed.Deleted, OrderID: "a"})
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("b", 2, model.StatusPending)})

	assert.Equal(t, []int64{1, 2}, n.seen)
}

func TestSnapshotByStatusAndCounts(t *testing.T) {
	b, _ := newTestBoard()
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("b", 2, model.StatusPreparing)})
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("c", 3, model.StatusPending)})

	pending := b.SnapshotByStatus(model.StatusPending)
	require.Len(t, pending, 2)
	assert.Equal(t, "c", pending[0].ID)

	counts := b.Counts()
	assert.Equal(t, 3, counts["todos"])
	assert.Equal(t, 2, counts["pending"])
	assert.Equal(t, 1, counts["preparing"])
}

func TestSnapshotIsACopy(t *testing.T) {
	b, _ := newTestBoard()
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: order("a", 1, model.StatusPending)})

	snap := b.Snapshot()
	snap[0] = order("tampered", 99, model.StatusReady)

	assert.Equal(t, "a", b.Snapshot()[0].ID)
}
