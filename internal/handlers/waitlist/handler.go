package waitlist

import (
	"net/http"
	"rms/infras/otel"
	restaurantModel "rms/internal/domains/restaurant/model"
	"rms/internal/domains/waitlist/model/dto"
	"rms/internal/domains/waitlist/service"
	"rms/shared/constant"
	"rms/shared/validator"
	"rms/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Waitlist
	otel    otel.Otel
}

func New(service service.Waitlist, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/restaurants/{restaurant_id}/waitlist", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.JoinWaitlist)
		routerGroup.Get("/", handler.GetWaitlist)
		routerGroup.Post("/suggestions", handler.SuggestNotifications)
		routerGroup.Get("/{id}/position", handler.GetWaitlistPosition)
		routerGroup.Patch("/{id}/status", handler.UpdateWaitlistStatus)
	})
}

// JoinWaitlist adds a party to the waitlist.
// @Summary Join the waitlist
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param request body dto.JoinRequest true "Join Request"
// @Success 201 {object} response.Data[dto.JoinResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/waitlist [post]
// @Security BearerAuth
func (handler *Handler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".JoinWaitlist")
	defer scope.End()

	req := dto.JoinRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Join(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to join waitlist")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// GetWaitlist lists active entries in priority order.
// @Summary Get the ranked waitlist
// @Tags Waitlist
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Success 200 {object} response.Data[dto.ListResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/waitlist [get]
// @Security BearerAuth
func (handler *Handler) GetWaitlist(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWaitlist")
	defer scope.End()

	res, err := handler.service.List(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get waitlist")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetWaitlistPosition returns the current rank of an entry.
// @Summary Get waitlist position
// @Description 1-based position among active entries, 0 when the entry is no longer active.
// @Tags Waitlist
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Data[dto.PositionResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/waitlist/{id}/position [get]
// @Security BearerAuth
func (handler *Handler) GetWaitlistPosition(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWaitlistPosition")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Position(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)), id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get waitlist position")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateWaitlistStatus notifies, seats, requeues, cancels or expires an entry.
// @Summary Update waitlist status
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param id path string true "Entry ID"
// @Param request body dto.UpdateStatusRequest true "Update Status Request"
// @Success 200 {object} response.Data[dto.StatusResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/waitlist/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateWaitlistStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateWaitlistStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.UpdateStatus(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)), id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update waitlist status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// SuggestNotifications matches freed capacity against the waitlist.
// @Summary Suggest guests to notify
// @Description Walk the waitlist in priority order and return the first entries that fit the freed slot. Nobody is notified.
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param request body dto.FreedSlotRequest true "Freed Slot"
// @Success 200 {object} response.Data[dto.SuggestionsResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/waitlist/suggestions [post]
// @Security BearerAuth
func (handler *Handler) SuggestNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SuggestNotifications")
	defer scope.End()

	req := dto.FreedSlotRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.SuggestNotifications(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to suggest notifications")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
