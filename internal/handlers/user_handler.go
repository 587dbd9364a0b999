package handlers

import (
	"context"
	"net/http"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/middleware"
	"rentbroker/internal/models"
	"rentbroker/internal/query"
	"rentbroker/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService *services.UserService
	logger      zerolog.Logger
}

func NewUserHandler(userService *services.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	filters := query.UserFilters{
		PageParams: p.Page(),
		Email:      p.String("email"),
		Username:   p.String("username"),
		Active:     p.Bool("active"),
		Verified:   p.Bool("verified"),
		Role:       enumParam(p, "role", models.Role.Valid),
	}
	if p.err != nil {
		respondWithError(w, r, h.logger, p.err)
		return
	}

	page, err := h.userService.Search(r.Context(), middleware.GetIdentity(r), filters)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, query.Map(page, (*models.User).Response))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Get(r.Context(), middleware.GetIdentity(r), userID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user.Response())
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.userService.Activate)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.userService.Deactivate)
}

func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.userService.VerifyTenant)
}

func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	h.updateRole(w, r, h.userService.AssignRole)
}

func (h *UserHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	h.updateRole(w, r, h.userService.RemoveRole)
}

func (h *UserHandler) updateRole(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, *services.Identity, int64, models.Role) error,
) {
	role, ok := models.ParseRole(mux.Vars(r)["role"])
	if !ok {
		respondWithError(w, r, h.logger, apperrors.InvalidArgument("Unknown role %q", mux.Vars(r)["role"]))
		return
	}
	h.update(w, r, func(ctx context.Context, caller *services.Identity, id int64) error {
		return apply(ctx, caller, id, role)
	})
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, *services.Identity, int64) error,
) {
	userID, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := apply(r.Context(), middleware.GetIdentity(r), userID); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
