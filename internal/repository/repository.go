package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-board-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrVersionConflict means the optimistic precondition failed: someone
	// else wrote the order between our read and our write. Retryable.
	ErrVersionConflict = errors.New("order version conflict")
	// ErrInvalidTransition is returned by the validating write path when a
	// status write would bypass the workflow's legal edge set.
	ErrInvalidTransition = errors.New("invalid status transition")
)

const (
	ordersCollection   = "online_orders"
	countersCollection = "counters"
	orderNumberCounter = "order_number"
)

// Mongo implementation of the order store.
type MongoOrderRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		col:      db.Collection(ordersCollection),
		counters: db.Collection(countersCollection),
	}
}

// nextOrderNumber increments and returns the shared monotonic counter. The
// counter document is created on first use.
func (m *MongoOrderRepository) nextOrderNumber(ctx context.Context) (int64, error) {
	filter := bson.M{"_id": orderNumberCounter}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := m.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return doc.Seq, nil
}

// Create assigns the order number server-side and inserts the document.
func (m *MongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	n, err := m.nextOrderNumber(ctx)
	if err != nil {
		return err
	}
	o.OrderNumber = n

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if o.Version == 0 {
		o.Version = 1
	}

	if _, err := m.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoOrderRepository) FindByNumber(ctx context.Context, number int64) (*model.Order, error) {
	return m.findOne(ctx, bson.M{"order_number": number})
}

func (m *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*model.Order, error) {
	var o model.Order
	err := m.col.FindOne(ctx, filter).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindAll returns every order, newest-first by creation.
func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var o model.Order
		if err := cur.Decode(&o); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, cur.Err()
}

// UpdateStatus performs a compare-and-set on the status field. The legal
// edge set is enforced here, at the store boundary, so no caller can write
// a transition the workflow forbids. The filter pins the expected current
// status; a concurrent transition makes the write miss and surface as a
// conflict rather than silently clobbering.
func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, from, to model.Status) error {
	if !model.CanTransition(from, to) {
		return ErrInvalidTransition
	}

	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// distinguish a missing order from a lost race on status
		if _, ferr := m.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return ErrVersionConflict
	}
	return nil
}

// ReplaceItems writes items, totals and complement history in a single
// conditional update guarded by the order version. Either everything is
// applied or nothing is; a failed precondition leaves the caller free to
// retry from a fresh read.
func (m *MongoOrderRepository) ReplaceItems(
	ctx context.Context,
	id string,
	version int64,
	items []model.LineItem,
	subtotal, total model.Money,
	complements []model.ComplementRecord,
) error {
	filter := bson.M{"_id": id, "version": version}
	update := bson.M{
		"$set": bson.M{
			"items":       items,
			"subtotal":    subtotal,
			"total":       total,
			"complements": complements,
			"updated_at":  time.Now().UTC(),
		},
		"$inc": bson.M{"version": int64(1)},
	}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := m.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return ErrVersionConflict
	}
	return nil
}

func (m *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Watch opens a change stream over the orders collection. Updates are
// delivered with the full post-image so consumers never need a follow-up
// read.
func (m *MongoOrderRepository) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	return m.col.Watch(ctx, mongo.Pipeline{}, opts)
}
