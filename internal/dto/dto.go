// dto.go
package dto

// CartItem is one storefront cart line. Prices travel as decimal strings
// to avoid float rounding on the wire.
type CartItem struct {
	ProductID   string `json:"productId" binding:"required"`
	ProductName string `json:"productName" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	UnitPrice   string `json:"unitPrice" binding:"required"`
}

// CheckoutRequest is the storefront checkout payload.
type CheckoutRequest struct {
	CustomerName    string     `json:"customerName" binding:"required"`
	CustomerPhone   string     `json:"customerPhone" binding:"required"`
	CustomerAddress string     `json:"customerAddress"`
	DeliveryType    string     `json:"deliveryType" binding:"required"`
	PaymentMethod   string     `json:"paymentMethod" binding:"required"`
	NeedsChange     bool       `json:"needsChange"`
	ChangeFor       string     `json:"changeFor"`
	Notes           string     `json:"notes"`
	Items           []CartItem `json:"items" binding:"required,dive"`
}

// ComplementRequest adds items to an already-placed order.
type ComplementRequest struct {
	Items []CartItem `json:"items" binding:"required,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderPlacedResponse is what the storefront confirmation screen shows.
type OrderPlacedResponse struct {
	ID          string `json:"id"`
	OrderNumber int64  `json:"orderNumber"`
	Status      string `json:"status"`
	Total       string `json:"total"`
}
