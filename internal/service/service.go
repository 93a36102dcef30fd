package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-board-service/internal/model"
	"order-board-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Interface the repository must implement.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByNumber(ctx context.Context, number int64) (*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to model.Status) error
	ReplaceItems(ctx context.Context, id string, version int64, items []model.LineItem, subtotal, total model.Money, complements []model.ComplementRecord) error
	Delete(ctx context.Context, id string) error
}

// Business errors exported for the controller.
var (
	ErrOrderNotFound    = errors.New("pedido não encontrado")
	ErrEmptyOrder       = errors.New("pedido sem itens")
	ErrMissingContact   = errors.New("nome e telefone são obrigatórios")
	ErrMissingAddress   = errors.New("endereço é obrigatório para delivery")
	ErrMissingPayment   = errors.New("forma de pagamento é obrigatória")
	ErrInvalidDelivery  = errors.New("tipo de entrega inválido")
	ErrInvalidPayment   = errors.New("forma de pagamento inválida")
	ErrInvalidItem      = errors.New("item com quantidade ou preço inválido")
	ErrChangeTooSmall   = errors.New("valor para troco menor que o total")
	ErrOrderClosed      = errors.New("pedido cancelado ou já entregue")
	ErrNoNextStatus     = errors.New("pedido já está no estado final")
	ErrCancelNotAllowed = errors.New("só é possível cancelar pedidos pendentes")
)

// mergeAttempts bounds the optimistic retry loop on complement writes.
const mergeAttempts = 3

// ItemInput is one line of a storefront cart.
type ItemInput struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   model.Money
}

// CheckoutInput carries everything the storefront collects at checkout.
type CheckoutInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	DeliveryType    model.DeliveryType
	PaymentMethod   model.PaymentMethod
	NeedsChange     bool
	ChangeFor       *model.Money
	Items           []ItemInput
	Notes           string
}

type OrderService struct {
	repo        OrderRepository
	deliveryFee model.Money
	log         *zap.Logger
}

func NewOrderService(repo OrderRepository, deliveryFee model.Money, log *zap.Logger) *OrderService {
	return &OrderService{repo: repo, deliveryFee: deliveryFee, log: log}
}

func buildItems(inputs []ItemInput) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity < 1 || in.UnitPrice.IsNegative() {
			return nil, ErrInvalidItem
		}
		it := model.LineItem{
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		}
		it.ComputeSubtotal()
		items = append(items, it)
	}
	return items, nil
}

// Checkout validates the storefront draft, computes totals server-side and
// persists a new pending order. The order number is assigned by the store.
func (s *OrderService) Checkout(ctx context.Context, in CheckoutInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if in.CustomerName == "" || in.CustomerPhone == "" {
		return nil, ErrMissingContact
	}
	if !in.DeliveryType.Valid() {
		return nil, ErrInvalidDelivery
	}
	if in.DeliveryType == model.DeliveryDelivery && in.CustomerAddress == "" {
		return nil, ErrMissingAddress
	}
	if in.PaymentMethod == "" {
		return nil, ErrMissingPayment
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPayment
	}

	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	// delivery fee only applies to deliveries, pickups go out at cost
	fee := model.ZeroMoney()
	if in.DeliveryType == model.DeliveryDelivery {
		fee = s.deliveryFee
	}

	o := &model.Order{
		ID:              uuid.NewString(),
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		DeliveryType:    in.DeliveryType,
		PaymentMethod:   in.PaymentMethod,
		Items:           items,
		DeliveryFee:     fee,
		Notes:           in.Notes,
		Status:          model.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	o.Recompute()

	// change breakdown only makes sense on cash payments
	if in.PaymentMethod == model.PaymentCash && in.NeedsChange {
		if in.ChangeFor == nil || in.ChangeFor.LessThan(o.Total) {
			return nil, ErrChangeTooSmall
		}
		o.NeedsChange = true
		o.ChangeFor = in.ChangeFor
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order placed",
		zap.Int64("order_number", o.OrderNumber),
		zap.String("delivery_type", string(o.DeliveryType)),
		zap.String("total", o.Total.Display()))
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) GetByNumber(ctx context.Context, number int64) (*model.Order, error) {
	o, err := s.repo.FindByNumber(ctx, number)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) ListAll(ctx context.Context) ([]*model.Order, error) {
	return s.repo.FindAll(ctx)
}

// UpdateStatus applies an explicit operator-picked status. Setting the
// current status again is a no-op; everything else goes through the
// store's validating write path.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to model.Status) error {
	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == to {
		return nil
	}
	return s.repo.UpdateStatus(ctx, id, o.Status, to)
}

// Advance moves the order one step along the strict forward sequence and
// returns the status it advanced to.
func (s *OrderService) Advance(ctx context.Context, id string) (model.Status, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	next, ok := o.Status.Next()
	if !ok {
		return "", ErrNoNextStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, o.Status, next); err != nil {
		return "", err
	}
	return next, nil
}

// Cancel is only offered while the order is still pending.
func (s *OrderService) Cancel(ctx context.Context, id string) error {
	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !o.Status.CanCancel() {
		return ErrCancelNotAllowed
	}
	return s.repo.UpdateStatus(ctx, id, o.Status, model.StatusCancelled)
}

// Delete hard-deletes the order regardless of status. Operator action only.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// AddComplement merges a new batch of items into an already-placed order,
// looked up by order number because that is all the customer knows. The
// merge is a single conditional write; on a version conflict the whole
// read-compute-write cycle is retried from fresh state.
func (s *OrderService) AddComplement(ctx context.Context, orderNumber int64, inputs []ItemInput) (*model.Order, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyOrder
	}
	newItems, err := buildItems(inputs)
	if err != nil {
		return nil, err
	}

	subtotalDelta := model.ZeroMoney()
	for _, it := range newItems {
		subtotalDelta = subtotalDelta.Add(it.LineSubtotal)
	}
	// the delivery fee is never re-charged on a complement
	totalDelta := subtotalDelta

	for attempt := 0; attempt < mergeAttempts; attempt++ {
		o, err := s.GetByNumber(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		if o.Status == model.StatusCancelled || o.Status == model.StatusDelivered {
			return nil, ErrOrderClosed
		}

		record := model.ComplementRecord{
			Timestamp:     time.Now().UTC(),
			Items:         newItems,
			SubtotalDelta: subtotalDelta,
			TotalDelta:    totalDelta,
		}

		merged := append(append([]model.LineItem(nil), o.Items...), newItems...)
		history := append(append([]model.ComplementRecord(nil), o.Complements...), record)
		subtotal := o.Subtotal.Add(subtotalDelta)
		total := o.Total.Add(totalDelta)

		err = s.repo.ReplaceItems(ctx, o.ID, o.Version, merged, subtotal, total, history)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.log.Warn("complement merge lost a race, retrying",
				zap.Int64("order_number", orderNumber),
				zap.Int("attempt", attempt+1))
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("merge complement: %w", err)
		}

		o.Items = merged
		o.Complements = history
		o.Subtotal = subtotal
		o.Total = total
		o.Version++
		o.UpdatedAt = record.Timestamp

		s.log.Info("complement merged",
			zap.Int64("order_number", orderNumber),
			zap.String("subtotal_delta", subtotalDelta.Display()))
		return o, nil
	}
	return nil, repository.ErrVersionConflict
}
