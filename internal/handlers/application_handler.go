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

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	logger             zerolog.Logger
}

func NewApplicationHandler(applicationService *services.ApplicationService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		logger:             logger,
	}
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	app, err := h.applicationService.Submit(r.Context(), middleware.GetIdentity(r), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, app)
}

type applicationSearch func(context.Context, *services.Identity, query.ApplicationFilters) (*query.Page[models.RentalApplication], error)

func (h *ApplicationHandler) list(w http.ResponseWriter, r *http.Request, search applicationSearch) {
	p := newParams(r)
	filters := query.ApplicationFilters{
		PageParams: p.Page(),
		PropertyID: p.Int64("propertyId"),
		Status:     enumParam(p, "status", models.ApplicationStatus.Valid),
	}
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

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.applicationService.ListMine)
}

func (h *ApplicationHandler) ListForOwner(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.applicationService.ListForOwner)
}

func (h *ApplicationHandler) decide(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, *services.Identity, int64) (*models.RentalApplication, error),
) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	app, err := apply(r.Context(), middleware.GetIdentity(r), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.applicationService.Approve)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.applicationService.Reject)
}
