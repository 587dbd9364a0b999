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

type ViewingHandler struct {
	viewingService *services.ViewingService
	logger         zerolog.Logger
}

func NewViewingHandler(viewingService *services.ViewingService, logger zerolog.Logger) *ViewingHandler {
	return &ViewingHandler{
		viewingService: viewingService,
		logger:         logger,
	}
}

func (h *ViewingHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req models.ViewingCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	viewing, err := h.viewingService.Request(r.Context(), middleware.GetIdentity(r), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, viewing)
}

type viewingSearch func(context.Context, *services.Identity, query.ViewingFilters) (*query.Page[models.ViewingRequest], error)

func (h *ViewingHandler) list(w http.ResponseWriter, r *http.Request, search viewingSearch) {
	p := newParams(r)
	filters := query.ViewingFilters{
		PageParams:    p.Page(),
		Status:        enumParam(p, "status", models.ViewingStatus.Valid),
		RequestedFrom: p.Time("requestedFrom"),
		RequestedTo:   p.Time("requestedTo"),
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

func (h *ViewingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.viewingService.ListMine)
}

func (h *ViewingHandler) ListForOwner(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.viewingService.ListForOwner)
}

func (h *ViewingHandler) advance(w http.ResponseWriter, r *http.Request,
	move func(context.Context, *services.Identity, int64) (*models.ViewingRequest, error),
) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	viewing, err := move(r.Context(), middleware.GetIdentity(r), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, viewing)
}

func (h *ViewingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.viewingService.Confirm)
}

func (h *ViewingHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.viewingService.Decline)
}

func (h *ViewingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.viewingService.Complete)
}
