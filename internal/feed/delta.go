package feed

import "order-board-service/internal/model"

// Kind classifies a single change to one order.
type Kind string

const (
	Inserted Kind = "inserted"
	Updated  Kind = "updated"
	Deleted  Kind = "deleted"
	// Resynced carries a full store snapshot, emitted after (re)connecting
	// to the feed so consumers cover any events missed while disconnected.
	Resynced Kind = "resynced"
)

// Delta is a typed description of one change delivered via the feed.
// Order is set for Inserted/Updated, OrderID for Deleted, Orders for
// Resynced.
type Delta struct {
	Kind    Kind
	Order   *model.Order
	OrderID string
	Orders  []*model.Order
}
