package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/smartbasket/internal/order"
)

type CreateOrderRequest struct {
	TotalAmount     *decimal.Decimal `json:"total_amount,omitempty"`
	ShippingAddress string           `json:"shipping_address" validate:"max=500"`
	PaymentMethod   string           `json:"payment_method" validate:"max=50"`
}

type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       string    `json:"price"`
	Subtotal    string    `json:"subtotal"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          string              `json:"status"`
	TotalAmount     string              `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       money(it.Price),
			Subtotal:    money(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		})
	}

	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status.String(),
		TotalAmount:     money(o.TotalAmount),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []order.Order) []OrderResponse {
	response := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	return response
}

type OrderHandler struct {
	service order.Service
	validation
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:    service,
		validation: validation{validate: newValidator()},
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleGetOrdersByStatus)
		r.Get("/user/{id}", h.handleGetOrdersByUser)
		// {id} is the user for create and the order elsewhere.
		r.Post("/{id}/create", h.handleCreateOrder)
		r.Get("/{id}", h.handleGetOrderByID)
		r.Put("/{id}/status", h.handleUpdateOrderStatus)
	})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload CreateOrderRequest
	if !h.decodeJSON(w, r, &requestPayload) {
		return
	}

	in := order.CreateOrderInput{
		TotalAmount:     decimal.Zero,
		ShippingAddress: requestPayload.ShippingAddress,
		PaymentMethod:   requestPayload.PaymentMethod,
	}
	if requestPayload.TotalAmount != nil {
		in.TotalAmount = *requestPayload.TotalAmount
	}

	created, err := h.service.CreateOrder(r.Context(), userID, in)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to create order via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to create order"))
		return
	}

	respondWithJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	found, err := h.service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get order"))
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponse(found))
}

func (h *OrderHandler) handleGetOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get orders"))
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) handleGetOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		respondWithError(w, http.StatusBadRequest, "status query parameter is required")
		return
	}

	orders, err := h.service.GetOrdersByStatus(r.Context(), order.OrderStatus(status))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get orders"))
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	updated, err := h.service.UpdateOrderStatus(r.Context(), orderID, order.OrderStatus(status))
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Str("status", status).Msg("Failed to update order status via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update order status"))
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponse(updated))
}
