package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/smartbasket/internal/cart"
)

type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=2147483647"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=2147483647"`
}

type CartItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       string    `json:"price"`
	Subtotal    string    `json:"subtotal"`
}

func toCartItemResponse(l cart.Line) CartItemResponse {
	return CartItemResponse{
		ID:          l.ID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		Price:       money(l.Price),
		Subtotal:    money(l.Subtotal()),
	}
}

type CartHandler struct {
	service cart.Service
	validation
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{
		service:    service,
		validation: validation{validate: newValidator()},
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/cart/{userId}", func(r chi.Router) {
		r.Get("/", h.handleGetCart)
		r.Post("/add", h.handleAddToCart)
		r.Put("/update/{lineId}", h.handleUpdateCartItem)
		r.Delete("/remove/{lineId}", h.handleRemoveFromCart)
		r.Delete("/clear", h.handleClearCart)
	})
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userId")
	if !ok {
		return
	}

	lines, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get cart via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get cart"))
		return
	}

	response := make([]CartItemResponse, 0, len(lines))
	for _, l := range lines {
		response = append(response, toCartItemResponse(l))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *CartHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userId")
	if !ok {
		return
	}

	var requestPayload AddToCartRequest
	if !h.decodeJSON(w, r, &requestPayload) {
		return
	}
	productID := uuid.FromStringOrNil(requestPayload.ProductID)

	line, err := h.service.AddToCart(r.Context(), userID, productID, requestPayload.Quantity)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("Failed to add to cart via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to add to cart"))
		return
	}

	respondWithJSON(w, http.StatusCreated, toCartItemResponse(*line))
}

func (h *CartHandler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := parseUUIDParam(w, r, "userId"); !ok {
		return
	}
	lineID, ok := parseUUIDParam(w, r, "lineId")
	if !ok {
		return
	}

	var requestPayload UpdateCartItemRequest
	if !h.decodeJSON(w, r, &requestPayload) {
		return
	}

	result, err := h.service.UpdateCartItem(r.Context(), lineID, *requestPayload.Quantity)
	if err != nil {
		log.Warn().Err(err).Stringer("line_id", lineID).Msg("Failed to update cart item via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update cart item"))
		return
	}

	if result.Removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondWithJSON(w, http.StatusOK, toCartItemResponse(*result.Line))
}

func (h *CartHandler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if _, ok := parseUUIDParam(w, r, "userId"); !ok {
		return
	}
	lineID, ok := parseUUIDParam(w, r, "lineId")
	if !ok {
		return
	}

	if err := h.service.RemoveFromCart(r.Context(), lineID); err != nil {
		log.Error().Err(err).Msg("Failed to remove from cart via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to remove from cart"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.ClearCart(r.Context(), userID); err != nil {
		log.Error().Err(err).Msg("Failed to clear cart via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to clear cart"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
