package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"order-board-service/internal/board"
	"order-board-service/internal/dto"
	"order-board-service/internal/feed"
	"order-board-service/internal/model"
	"order-board-service/internal/printer"
	"order-board-service/internal/repository"
	"order-board-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

//
// ---------- STUBS & FAKES ----------
//

// memRepo implements service.OrderRepository in memory.
type memRepo struct {
	orders     map[string]*model.Order
	nextNumber int64
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[string]*model.Order{}}
}

func (m *memRepo) Create(_ context.Context, o *model.Order) error {
	m.nextNumber++
	o.OrderNumber = m.nextNumber
	o.Version = 1
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id string) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) FindByNumber(_ context.Context, n int64) (*model.Order, error) {
	for _, o := range m.orders {
		if o.OrderNumber == n {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) FindAll(_ context.Context) ([]*model.Order, error) {
	out := make([]*model.Order, 0, len(m.orders))
	for _, o := range m.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, from, to model.Status) error {
	if !model.CanTransition(from, to) {
		return repository.ErrInvalidTransition
	}
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = to
	return nil
}

func (m *memRepo) ReplaceItems(_ context.Context, id string, version int64, items []model.LineItem, subtotal, total model.Money, complements []model.ComplementRecord) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if o.Version != version {
		return repository.ErrVersionConflict
	}
	o.Items = items
	o.Subtotal = subtotal
	o.Total = total
	o.Complements = complements
	o.Version++
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func newTestRouter(t *testing.T, repo *memRepo) (*gin.Engine, *board.Board) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewOrderService(repo, model.MustMoney("5.00"), zap.NewNop())
	b := board.New(zap.NewNop(), nil)
	renderer, err := printer.NewRenderer("Quentinhas da Goi")
	require.NoError(t, err)

	r := gin.New()
	NewOrderController(svc, b, renderer).Register(r)
	return r, b
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func checkoutBody() dto.CheckoutRequest {
	return dto.CheckoutRequest{
		CustomerName:  "Maria",
		CustomerPhone: "11 99999-0000",
		DeliveryType:  "pickup",
		PaymentMethod: "pix",
		Items: []dto.CartItem{
			{ProductID: "p1", ProductName: "Quentinha P", Quantity: 2, UnitPrice: "15.00"},
		},
	}
}

//
// ---------- TESTS ----------
//

func TestCheckoutEndpoint(t *testing.T) {
	repo := newMemRepo()
	r, _ := newTestRouter(t, repo)

	w := doJSON(t, r, http.MethodPost, "/api/orders", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.OrderPlacedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.OrderNumber)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "30.00", resp.Total)
}

func TestCheckoutRejectsBadPayload(t *testing.T) {
	r, _ := newTestRouter(t, newMemRepo())

	body := checkoutBody()
	body.Items = nil
	w := doJSON(t, r, http.MethodPost, "/api/orders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsMalformedPrice(t *testing.T) {
	r, _ := newTestRouter(t, newMemRepo())

	body := checkoutBody()
	body.Items[0].UnitPrice = "abc"
	w := doJSON(t, r, http.MethodPost, "/api/orders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplementEndpoint(t *testing.T) {
	repo := newMemRepo()
	r, _ := newTestRouter(t, repo)

	w := doJSON(t, r, http.MethodPost, "/api/orders", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/orders/number/1/complement", dto.ComplementRequest{
		Items: []dto.CartItem{
			{ProductID: "p2", ProductName: "Refrigerante", Quantity: 1, UnitPrice: "6.00"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var merged model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &merged))
	assert.Len(t, merged.Items, 2)
	assert.Len(t, merged.Complements, 1)
}

func TestComplementUnknownOrderReturnsSupportMessage(t *testing.T) {
	r, _ := newTestRouter(t, newMemRepo())

	w := doJSON(t, r, http.MethodPost, "/api/orders/number/999/complement", dto.ComplementRequest{
		Items: []dto.CartItem{
			{ProductID: "p2", ProductName: "Refrigerante", Quantity: 1, UnitPrice: "6.00"},
		},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "suporte")
}

func TestListOrdersFromBoard(t *testing.T) {
	repo := newMemRepo()
	r, b := newTestRouter(t, repo)

	b.Apply(feed.Delta{Kind: feed.Inserted, Order: &model.Order{ID: "a", OrderNumber: 1, Status: model.StatusPending}})
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: &model.Order{ID: "b", OrderNumber: 2, Status: model.StatusPreparing}})

	w := doJSON(t, r, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/orders?status=preparing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCountsEndpoint(t *testing.T) {
	r, b := newTestRouter(t, newMemRepo())
	b.Apply(feed.Delta{Kind: feed.Inserted, Order: &model.Order{ID: "a", Status: model.StatusPending}})

	w := doJSON(t, r, http.MethodGet, "/api/orders/counts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var counts map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	assert.Equal(t, 1, counts["todos"])
	assert.Equal(t, 1, counts["pending"])
}

func TestStatusEndpoints(t *testing.T) {
	repo := newMemRepo()
	r, _ := newTestRouter(t, repo)

	w := doJSON(t, r, http.MethodPost, "/api/orders", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var placed dto.OrderPlacedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))

	w = doJSON(t, r, http.MethodPost, "/api/orders/"+placed.ID+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "confirmed")

	// cancel is only offered while pending
	w = doJSON(t, r, http.MethodPost, "/api/orders/"+placed.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// direct pick may skip ahead
	w = doJSON(t, r, http.MethodPatch, "/api/orders/"+placed.ID+"/status", dto.UpdateStatusRequest{Status: "ready"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/orders/"+placed.ID+"/status", dto.UpdateStatusRequest{Status: "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	repo := newMemRepo()
	r, _ := newTestRouter(t, repo)

	w := doJSON(t, r, http.MethodPost, "/api/orders", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var placed dto.OrderPlacedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))

	w = doJSON(t, r, http.MethodDelete, "/api/orders/"+placed.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/orders/"+placed.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceiptEndpoint(t *testing.T) {
	repo := newMemRepo()
	r, _ := newTestRouter(t, repo)

	body := checkoutBody()
	body.PaymentMethod = "cash"
	body.NeedsChange = true
	body.ChangeFor = "45.00"
	w := doJSON(t, r, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var placed dto.OrderPlacedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))

	w = doJSON(t, r, http.MethodGet, "/api/orders/"+placed.ID+"/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Pedido #1")
	assert.Contains(t, w.Body.String(), "Troco a devolver:")
	assert.Contains(t, w.Body.String(), "R$ 15.00")

	w = doJSON(t, r, http.MethodGet, "/api/orders/nope/receipt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
