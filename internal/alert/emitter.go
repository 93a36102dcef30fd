// Package alert turns new-order events into operator alerts. Alerts ride a
// RabbitMQ fanout exchange consumed by the front-of-house devices (board
// screens, kitchen tablet); delivery is best-effort and never blocks or
// fails an order mutation.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-board-service/internal/model"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// channel is the slice of *amqp091.Channel the emitter uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// payload is what front-of-house devices receive. Sound is always cued;
// the desktop banner is gated on the operator-granted permission.
type payload struct {
	OrderNumber  int64  `json:"orderNumber"`
	CustomerName string `json:"customerName"`
	Total        string `json:"total"`
	Sound        bool   `json:"sound"`
	Desktop      bool   `json:"desktop"`
}

type Emitter struct {
	ch       channel
	exchange string
	desktop  bool
	log      *zap.Logger
}

// NewEmitter declares the fanout exchange and returns the emitter. desktop
// reflects whether visual alerts were permitted; when false only the
// audible cue goes out.
func NewEmitter(ch channel, exchange string, desktop bool, log *zap.Logger) (*Emitter, error) {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare alert exchange: %w", err)
	}
	return &Emitter{ch: ch, exchange: exchange, desktop: desktop, log: log}, nil
}

// NewOrder publishes the alert for a freshly inserted order. Publish
// failures are logged and swallowed: a missed chime must never surface as
// an error to the operator or roll back state.
func (e *Emitter) NewOrder(o *model.Order) {
	body, err := json.Marshal(payload{
		OrderNumber:  o.OrderNumber,
		CustomerName: o.CustomerName,
		Total:        o.Total.Display(),
		Sound:        true,
		Desktop:      e.desktop,
	})
	if err != nil {
		e.log.Warn("alert payload marshal failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = e.ch.PublishWithContext(ctx, e.exchange, "", false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		e.log.Warn("alert publish failed",
			zap.Int64("order_number", o.OrderNumber),
			zap.Error(err))
	}
}
