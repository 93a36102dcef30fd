package model

import "time"

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

func (d DeliveryType) Label() string {
	if d == DeliveryDelivery {
		return "Delivery"
	}
	return "Retirada no Local"
}

type PaymentMethod string

const (
	PaymentPix      PaymentMethod = "pix"
	PaymentCard     PaymentMethod = "card"
	PaymentCash     PaymentMethod = "cash"
	PaymentPayLater PaymentMethod = "pay_later"
)

var paymentLabels = map[PaymentMethod]string{
	PaymentPix:      "PIX",
	PaymentCard:     "Cartão",
	PaymentCash:     "Dinheiro",
	PaymentPayLater: "Pagamento Posterior",
}

func (p PaymentMethod) Valid() bool {
	_, ok := paymentLabels[p]
	return ok
}

func (p PaymentMethod) Label() string {
	if l, ok := paymentLabels[p]; ok {
		return l
	}
	return string(p)
}

// LineItem is one line of an order. ProductName and UnitPrice are snapshots
// taken at order time, not live references to the product catalog.
type LineItem struct {
	ProductID    string `bson:"product_id" json:"productId"`
	ProductName  string `bson:"product_name" json:"productName"`
	Quantity     int    `bson:"quantity" json:"quantity"`
	UnitPrice    Money  `bson:"unit_price" json:"unitPrice"`
	LineSubtotal Money  `bson:"line_subtotal" json:"lineSubtotal"`
}

// ComputeSubtotal refreshes LineSubtotal from quantity and unit price.
func (i *LineItem) ComputeSubtotal() {
	i.LineSubtotal = i.UnitPrice.MulInt(int64(i.Quantity))
}

// ComplementRecord is one post-placement batch of added items. Records are
// append-only and never mutated after creation.
type ComplementRecord struct {
	Timestamp     time.Time  `bson:"timestamp" json:"timestamp"`
	Items         []LineItem `bson:"items" json:"items"`
	SubtotalDelta Money      `bson:"subtotal_delta" json:"subtotalDelta"`
	TotalDelta    Money      `bson:"total_delta" json:"totalDelta"`
}

// Order is the aggregate root. Items holds the original checkout items plus
// every complement batch in append order; Total is always the sum of the
// line subtotals plus the delivery fee.
type Order struct {
	ID              string             `bson:"_id" json:"id"`
	OrderNumber     int64              `bson:"order_number" json:"orderNumber"`
	CustomerName    string             `bson:"customer_name" json:"customerName"`
	CustomerPhone   string             `bson:"customer_phone" json:"customerPhone"`
	CustomerAddress string             `bson:"customer_address,omitempty" json:"customerAddress,omitempty"`
	DeliveryType    DeliveryType       `bson:"delivery_type" json:"deliveryType"`
	PaymentMethod   PaymentMethod      `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	NeedsChange     bool               `bson:"needs_change" json:"needsChange"`
	ChangeFor       *Money             `bson:"change_for,omitempty" json:"changeFor,omitempty"`
	Items           []LineItem         `bson:"items" json:"items"`
	Subtotal        Money              `bson:"subtotal" json:"subtotal"`
	DeliveryFee     Money              `bson:"delivery_fee" json:"deliveryFee"`
	Total           Money              `bson:"total" json:"total"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status          Status             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
	Complements     []ComplementRecord `bson:"complements,omitempty" json:"complements,omitempty"`

	// Version is the optimistic-concurrency precondition on item/total
	// writes. Two concurrent complements cannot both pass the same version.
	Version int64 `bson:"version" json:"-"`
}

// Recompute refreshes every line subtotal and the order totals.
func (o *Order) Recompute() {
	subtotal := ZeroMoney()
	for i := range o.Items {
		o.Items[i].ComputeSubtotal()
		subtotal = subtotal.Add(o.Items[i].LineSubtotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.DeliveryFee)
}

// ChangeDue returns the change owed on a cash order, and whether a change
// breakdown applies at all.
func (o *Order) ChangeDue() (Money, bool) {
	if o.PaymentMethod != PaymentCash || !o.NeedsChange || o.ChangeFor == nil {
		return Money{}, false
	}
	return o.ChangeFor.Sub(o.Total), true
}
