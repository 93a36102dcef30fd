package alert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"order-board-service/internal/model"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	declared   string
	published  []amqp091.Publishing
	publishErr error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = name + "/" + kind
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:           "ord-1",
		OrderNumber:  42,
		CustomerName: "Maria",
		Total:        model.MustMoney("55.00"),
	}
}

func TestNewOrderPublishesAlert(t *testing.T) {
	ch := &fakeChannel{}
	e, err := NewEmitter(ch, "order_alerts", true, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "order_alerts/fanout", ch.declared)

	e.NewOrder(sampleOrder())

	require.Len(t, ch.published, 1)
	var got payload
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	assert.Equal(t, int64(42), got.OrderNumber)
	assert.Equal(t, "Maria", got.CustomerName)
	assert.Equal(t, "55.00", got.Total)
	assert.True(t, got.Sound)
	assert.True(t, got.Desktop)
}

func TestDesktopAlertGatedOnPermission(t *testing.T) {
	ch := &fakeChannel{}
	e, err := NewEmitter(ch, "order_alerts", false, zap.NewNop())
	require.NoError(t, err)

	e.NewOrder(sampleOrder())

	require.Len(t, ch.published, 1)
	var got payload
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	// audible cue still goes out, banner suppressed
	assert.True(t, got.Sound)
	assert.False(t, got.Desktop)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("broker gone")}
	e, err := NewEmitter(ch, "order_alerts", true, zap.NewNop())
	require.NoError(t, err)

	// must not panic or propagate
	e.NewOrder(sampleOrder())
	assert.Empty(t, ch.published)
}
