package feed

import (
	"context"
	"fmt"
	"time"

	"order-board-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Store is the slice of the order repository the listener needs.
type Store interface {
	Watch(ctx context.Context) (*mongo.ChangeStream, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
}

// Listener wraps the raw change stream and translates its events into typed
// deltas. Delivery is at-least-once: after every (re)connect a full resync
// snapshot is emitted, so consumers must tolerate re-application of the
// same insert or update.
type Listener struct {
	store Store
	log   *zap.Logger
	out   chan Delta
}

func NewListener(store Store, log *zap.Logger) *Listener {
	return &Listener{
		store: store,
		log:   log,
		out:   make(chan Delta, 64),
	}
}

// Deltas is the outbound feed consumed by the board.
func (l *Listener) Deltas() <-chan Delta {
	return l.out
}

// Run keeps a change stream open until the context is cancelled. Stream
// failures are never surfaced to callers: the listener backs off, reopens
// the stream and resyncs.
func (l *Listener) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		stream, err := l.store.Watch(ctx)
		if err != nil {
			l.log.Warn("change stream open failed",
				zap.Error(err),
				zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff

		// The stream is open before the snapshot is read, so no write can
		// fall between the two.
		if err := l.resync(ctx); err != nil {
			l.log.Warn("resync failed", zap.Error(err))
		}

		l.pump(ctx, stream)
		_ = stream.Close(context.Background())

		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Warn("change stream closed, reconnecting")
	}
}

func (l *Listener) resync(ctx context.Context) error {
	orders, err := l.store.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	select {
	case l.out <- Delta{Kind: Resynced, Orders: orders}:
	case <-ctx.Done():
	}
	return nil
}

func (l *Listener) pump(ctx context.Context, stream *mongo.ChangeStream) {
	for stream.Next(ctx) {
		delta, err := decodeEvent(stream.Current)
		if err != nil {
			// best-effort feed: drop the event, the next resync is the
			// eventual-consistency backstop
			l.log.Warn("dropping malformed change event", zap.Error(err))
			continue
		}
		select {
		case l.out <- delta:
		case <-ctx.Done():
			return
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		l.log.Warn("change stream error", zap.Error(err))
	}
}

// changeEvent mirrors the parts of a change stream document we consume.
type changeEvent struct {
	OperationType string       `bson:"operationType"`
	FullDocument  *model.Order `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

func decodeEvent(raw bson.Raw) (Delta, error) {
	var ev changeEvent
	if err := bson.Unmarshal(raw, &ev); err != nil {
		return Delta{}, fmt.Errorf("decode change event: %w", err)
	}

	switch ev.OperationType {
	case "insert":
		if ev.FullDocument == nil {
			return Delta{}, fmt.Errorf("insert event without document")
		}
		return Delta{Kind: Inserted, Order: ev.FullDocument}, nil
	case "update", "replace":
		// the post-image lookup can come back empty when the document was
		// deleted right after the update; the delete event follows anyway
		if ev.FullDocument == nil {
			return Delta{}, fmt.Errorf("update event without post-image")
		}
		return Delta{Kind: Updated, Order: ev.FullDocument}, nil
	case "delete":
		if ev.DocumentKey.ID == "" {
			return Delta{}, fmt.Errorf("delete event without document key")
		}
		return Delta{Kind: Deleted, OrderID: ev.DocumentKey.ID}, nil
	default:
		return Delta{}, fmt.Errorf("unsupported operation type %q", ev.OperationType)
	}
}
