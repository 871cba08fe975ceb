package availability

import (
	"net/http"
	"rms/infras/otel"
	"rms/internal/domains/availability/model/dto"
	"rms/internal/domains/availability/service"
	restaurantModel "rms/internal/domains/restaurant/model"
	"rms/shared/constant"
	"rms/shared/failure"
	"rms/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Availability
	otel    otel.Otel
}

func New(service service.Availability, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/restaurants/{restaurant_id}/availability", handler.CheckAvailability)
	router.Get("/restaurants/{restaurant_id}/availability/alternatives", handler.FindAlternatives)
	router.Get("/restaurants/{restaurant_id}/capacity", handler.OptimizeCapacity)
}

// CheckAvailability lists the slots of a day that can seat the party.
// @Summary Check availability
// @Description List every slot of the day with the tables that can seat the party, plus the preferred slot and recommendations when a time is given.
// @Tags Availability
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param party_size query int true "Party size"
// @Param time query string false "Preferred time (HH:MM)"
// @Param duration query int false "Duration in minutes"
// @Param location query string false "Table location"
// @Success 200 {object} response.Data[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/availability [get]
// @Security BearerAuth
func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckAvailability")
	defer scope.End()

	req := dto.AvailabilityRequest{}
	if err := req.FromRequest(r); err != nil {
		err = failure.BadRequest(err)
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.CheckAvailability(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// FindAlternatives searches nearby slots when the preferred one is full.
// @Summary Find alternative slots
// @Description Search the requested day, then the following days, for the available slots closest to the preferred time.
// @Tags Availability
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param time query string true "Preferred time (HH:MM)"
// @Param party_size query int true "Party size"
// @Param duration query int false "Duration in minutes"
// @Param location query string false "Table location"
// @Success 200 {object} response.Data[dto.AlternativesResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/availability/alternatives [get]
// @Security BearerAuth
func (handler *Handler) FindAlternatives(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".FindAlternatives")
	defer scope.End()

	req := dto.AlternativesRequest{}
	if err := req.FromRequest(r); err != nil {
		err = failure.BadRequest(err)
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.FindAlternatives(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to find alternatives")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// OptimizeCapacity reports occupancy for a day.
// @Summary Capacity report
// @Description Occupancy per slot, peak hours and advisory suggestions for a day.
// @Tags Availability
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.CapacityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{restaurant_id}/capacity [get]
// @Security BearerAuth
func (handler *Handler) OptimizeCapacity(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".OptimizeCapacity")
	defer scope.End()

	req := dto.CapacityRequest{}
	req.FromRequest(r)

	res, err := handler.service.OptimizeCapacity(ctx, restaurantModel.NewScope(ctx, chi.URLParam(r, constant.RequestParamRestaurantID)), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to optimize capacity")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
