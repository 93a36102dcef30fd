package controller

import (
	"errors"
	"net/http"
	"strconv"

	"order-board-service/internal/board"
	"order-board-service/internal/dto"
	"order-board-service/internal/model"
	"order-board-service/internal/printer"
	"order-board-service/internal/repository"
	"order-board-service/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service  *service.OrderService
	Board    *board.Board
	Renderer *printer.Renderer
}

func NewOrderController(s *service.OrderService, b *board.Board, r *printer.Renderer) *OrderController {
	return &OrderController{Service: s, Board: b, Renderer: r}
}

func (ctl *OrderController) Register(r gin.IRouter) {
	api := r.Group("/api")

	// storefront
	api.POST("/orders", ctl.Checkout)
	api.POST("/orders/number/:number/complement", ctl.AddComplement)

	// operator board
	api.GET("/orders", ctl.ListOrders)
	api.GET("/orders/counts", ctl.Counts)
	api.GET("/orders/:id", ctl.GetOrder)
	api.PATCH("/orders/:id/status", ctl.UpdateStatus)
	api.POST("/orders/:id/advance", ctl.Advance)
	api.POST("/orders/:id/cancel", ctl.Cancel)
	api.DELETE("/orders/:id", ctl.DeleteOrder)
	api.GET("/orders/:id/receipt", ctl.Receipt)
}

// respondError maps business errors to HTTP statuses. Failures never leave
// optimistic state behind, so the client can simply retry the action.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidTransition),
		errors.Is(err, repository.ErrVersionConflict),
		errors.Is(err, service.ErrCancelNotAllowed),
		errors.Is(err, service.ErrNoNextStatus),
		errors.Is(err, service.ErrOrderClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrMissingContact),
		errors.Is(err, service.ErrMissingAddress),
		errors.Is(err, service.ErrMissingPayment),
		errors.Is(err, service.ErrInvalidDelivery),
		errors.Is(err, service.ErrInvalidPayment),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrChangeTooSmall):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func cartToInputs(items []dto.CartItem) ([]service.ItemInput, error) {
	out := make([]service.ItemInput, 0, len(items))
	for _, it := range items {
		price, err := model.MoneyFromString(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		out = append(out, service.ItemInput{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   price,
		})
	}
	return out, nil
}

// POST /api/orders — storefront checkout, no auth (public cardápio).
func (ctl *OrderController) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := cartToInputs(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.CheckoutInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DeliveryType:    model.DeliveryType(req.DeliveryType),
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		NeedsChange:     req.NeedsChange,
		Notes:           req.Notes,
		Items:           items,
	}
	if req.ChangeFor != "" {
		change, err := model.MoneyFromString(req.ChangeFor)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in.ChangeFor = &change
	}

	o, err := ctl.Service.Checkout(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OrderPlacedResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		Total:       o.Total.Display(),
	})
}

// POST /api/orders/number/:number/complement — the customer only knows the
// order number from the confirmation screen, so lookup is by number.
func (ctl *OrderController) AddComplement(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "número de pedido inválido"})
		return
	}

	var req dto.ComplementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := cartToInputs(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := ctl.Service.AddComplement(c.Request.Context(), number, items)
	if errors.Is(err, service.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   err.Error(),
			"message": "Pedido não encontrado. Entre em contato com o suporte.",
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

// GET /api/orders — board snapshot, optional ?status= filter.
func (ctl *OrderController) ListOrders(c *gin.Context) {
	if raw, ok := c.GetQuery("status"); ok {
		s := model.Status(raw)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status desconhecido"})
			return
		}
		c.JSON(http.StatusOK, ctl.Board.SnapshotByStatus(s))
		return
	}
	c.JSON(http.StatusOK, ctl.Board.Snapshot())
}

// GET /api/orders/counts — per-status counts for the board header.
func (ctl *OrderController) Counts(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.Board.Counts())
}

func (ctl *OrderController) GetOrder(c *gin.Context) {
	o, err := ctl.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// PATCH /api/orders/:id/status — explicit status pick from the modal.
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := model.Status(req.Status)
	if !s.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status desconhecido"})
		return
	}

	if err := ctl.Service.UpdateStatus(c.Request.Context(), c.Param("id"), s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status atualizado"})
}

// POST /api/orders/:id/advance — the strict next-status shortcut button.
func (ctl *OrderController) Advance(c *gin.Context) {
	next, err := ctl.Service.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": next})
}

func (ctl *OrderController) Cancel(c *gin.Context) {
	if err := ctl.Service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pedido cancelado"})
}

func (ctl *OrderController) DeleteOrder(c *gin.Context) {
	if err := ctl.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pedido excluído"})
}

// GET /api/orders/:id/receipt — printable document, one-way export.
func (ctl *OrderController) Receipt(c *gin.Context) {
	o, err := ctl.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := ctl.Renderer.Render(c.Writer, o); err != nil {
		ctl.renderFailure(c, err)
	}
}

func (ctl *OrderController) renderFailure(c *gin.Context, err error) {
	// headers are already out; all we can do is abort the stream
	_ = c.Error(err)
	c.Abort()
}
