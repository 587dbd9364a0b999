package handlers

import (
	"context"
	"net/http"

	"rentbroker/internal/middleware"
	"rentbroker/internal/models"
	"rentbroker/internal/query"
	"rentbroker/internal/services"

	"github.com/rs/zerolog"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
	logger          zerolog.Logger
}

func NewPropertyHandler(propertyService *services.PropertyService, logger zerolog.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		logger:          logger,
	}
}

func propertyFilters(p *params) query.PropertyFilters {
	return query.PropertyFilters{
		PageParams:   p.Page(),
		City:         p.String("city"),
		Type:         p.String("type"),
		MinPrice:     p.Float("minPrice"),
		MaxPrice:     p.Float("maxPrice"),
		MinBedrooms:  p.Int("minBedrooms"),
		MinBathrooms: p.Int("minBathrooms"),
		MinSize:      p.Int("minSize"),
		Status:       enumParam(p, "status", models.PropertyStatus.Valid),
		OwnerID:      p.Int64("ownerId"),
	}
}

type propertySearch func(context.Context, *services.Identity, query.PropertyFilters) (*query.Page[models.Property], error)

func (h *PropertyHandler) list(w http.ResponseWriter, r *http.Request, search propertySearch) {
	p := newParams(r)
	filters := propertyFilters(p)
	if p.err != nil {
		respondWithError(w, r, h.logger, p.err)
		return
	}

	page, err := search(r.Context(), middleware.GetIdentity(r), filters)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.propertyService.Search)
}

func (h *PropertyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.propertyService.ListMine)
}

func (h *PropertyHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.propertyService.ListPending)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	property, err := h.propertyService.Get(r.Context(), middleware.GetIdentity(r), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, property)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	property, err := h.propertyService.Create(r.Context(), middleware.GetIdentity(r), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, property)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.PropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	property, err := h.propertyService.Update(r.Context(), middleware.GetIdentity(r), id, &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, property)
}

type propertyTransition func(context.Context, *services.Identity, int64) (*models.Property, error)

func (h *PropertyHandler) transition(w http.ResponseWriter, r *http.Request, move propertyTransition) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	property, err := move(r.Context(), middleware.GetIdentity(r), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, property)
}

func (h *PropertyHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.propertyService.Resubmit)
}

func (h *PropertyHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.propertyService.Approve)
}

func (h *PropertyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.propertyService.Reject)
}
