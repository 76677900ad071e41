package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/smartbasket/internal/catalog"
)

type ProductResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	Price     string    `json:"price"`
	ImageURL  string    `json:"image_url"`
	InStock   bool      `json:"in_stock"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Category:  p.Category,
		Unit:      p.Unit,
		Price:     money(p.Price),
		ImageURL:  p.ImageURL,
		InStock:   p.InStock,
		CreatedAt: p.CreatedAt,
	}
}

type SavePlatformRequest struct {
	ID                    string           `json:"id,omitempty" validate:"omitempty,uuid"`
	Name                  string           `json:"name" validate:"required,max=100"`
	LogoURL               string           `json:"logo_url" validate:"omitempty,url"`
	BaseDeliveryFee       *decimal.Decimal `json:"base_delivery_fee,omitempty"`
	FreeDeliveryThreshold *decimal.Decimal `json:"free_delivery_threshold,omitempty"`
	AvgDeliveryMinutes    int              `json:"avg_delivery_minutes" validate:"min=0"`
	WebsiteURL            string           `json:"website_url" validate:"required,url"`
}

type PlatformResponse struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	LogoURL               string    `json:"logo_url"`
	BaseDeliveryFee       string    `json:"base_delivery_fee"`
	FreeDeliveryThreshold string    `json:"free_delivery_threshold"`
	AvgDeliveryMinutes    int       `json:"avg_delivery_minutes"`
	WebsiteURL            string    `json:"website_url"`
	CreatedAt             time.Time `json:"created_at"`
}

func toPlatformResponse(p *catalog.Platform) PlatformResponse {
	return PlatformResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		LogoURL:               p.LogoURL,
		BaseDeliveryFee:       money(p.BaseDeliveryFee),
		FreeDeliveryThreshold: money(p.FreeDeliveryThreshold),
		AvgDeliveryMinutes:    p.AvgDeliveryMinutes,
		WebsiteURL:            p.WebsiteURL,
		CreatedAt:             p.CreatedAt,
	}
}

type CatalogHandler struct {
	service catalog.Service
	validation
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		service:    service,
		validation: validation{validate: newValidator()},
	}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)

	router.Get("/platforms", h.handleListPlatforms)
	router.Get("/platforms/{id}", h.handleGetPlatform)
	router.Post("/platforms", h.handleSavePlatform)
	router.Delete("/platforms/{id}", h.handleDeletePlatform)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.service.ListProducts(r.Context(), catalog.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
	})
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to list products"))
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for i := range products {
		response = append(response, toProductResponse(&products[i]))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get product"))
		return
	}

	respondWithJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *CatalogHandler) handleListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.service.ListPlatforms(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error fetching platforms")
		respondWithError(w, http.StatusInternalServerError, "Failed to list platforms")
		return
	}

	response := make([]PlatformResponse, 0, len(platforms))
	for i := range platforms {
		response = append(response, toPlatformResponse(&platforms[i]))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *CatalogHandler) handleGetPlatform(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetPlatformByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get platform"))
		return
	}

	respondWithJSON(w, http.StatusOK, toPlatformResponse(p))
}

func (h *CatalogHandler) handleSavePlatform(w http.ResponseWriter, r *http.Request) {
	var requestPayload SavePlatformRequest
	if !h.decodeJSON(w, r, &requestPayload) {
		return
	}

	p := &catalog.Platform{
		ID:                 uuid.FromStringOrNil(requestPayload.ID),
		Name:               requestPayload.Name,
		LogoURL:            requestPayload.LogoURL,
		AvgDeliveryMinutes: requestPayload.AvgDeliveryMinutes,
		WebsiteURL:         requestPayload.WebsiteURL,
	}
	if requestPayload.BaseDeliveryFee != nil {
		p.BaseDeliveryFee = *requestPayload.BaseDeliveryFee
	}
	if requestPayload.FreeDeliveryThreshold != nil {
		p.FreeDeliveryThreshold = *requestPayload.FreeDeliveryThreshold
	}

	saved, err := h.service.SavePlatform(r.Context(), p)
	if err != nil {
		log.Warn().Err(err).Str("name", p.Name).Msg("Failed to save platform via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to save platform"))
		return
	}

	respondWithJSON(w, http.StatusCreated, toPlatformResponse(saved))
}

func (h *CatalogHandler) handleDeletePlatform(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePlatform(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to delete platform"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
