package events

import (
	"context"
	"fmt"
	"net/http"
	"rms/config"
	"rms/infras/kafka"
	"rms/infras/otel"
	reservationModel "rms/internal/domains/reservation/model"
	restaurantModel "rms/internal/domains/restaurant/model"
	"rms/internal/domains/waitlist/model/dto"
	"rms/internal/domains/waitlist/service"
	"rms/shared/constant"
	"rms/shared/failure"

	"github.com/rs/zerolog/log"
)

// Handler reacts to reservation events. Freed capacity is matched against the waitlist
// and the resulting suggestions are published for the notifier.
type Handler struct {
	waitlist service.Waitlist
	kafka    kafka.Client
	cfg      *config.Config
	otel     otel.Otel
}

func New(waitlist service.Waitlist, kafka kafka.Client, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		waitlist: waitlist,
		kafka:    kafka,
		cfg:      cfg,
		otel:     otel,
	}
}

// Start consumes the reservation topic until ctx is done.
func (handler *Handler) Start(ctx context.Context) {
	log.Info().Str("topic", handler.cfg.Kafka.Topic.Reservation).Msg("Starting reservation event consumer.")

	handler.kafka.Consume(ctx, handler.cfg.Kafka.ConsumerGroup, handler.cfg.Kafka.Topic.Reservation, handler.Handle)
}

// Handle processes one event. Events that can never succeed are dropped; only
// transient failures are returned so the offset is not committed.
func (handler *Handler) Handle(ctx context.Context, event kafka.Event) (err error) {
	if event.Type != reservationModel.EventFreed {
		return nil
	}

	ctx, scope := handler.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".ReservationFreed")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var freed reservationModel.FreedEvent
	if err := event.Decode(&freed); err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("dropping undecodable freed event")

		return nil
	}

	if freed.Capacity <= 0 {
		return nil
	}

	req := dto.FreedSlotRequest{}
	req.FromSlot(freed.Start, freed.End, freed.Capacity)

	res, err := handler.waitlist.SuggestNotifications(ctx, restaurantModel.Scope{RestaurantID: freed.RestaurantID}, req)
	if err != nil {
		if failure.GetCode(err) < http.StatusInternalServerError {
			log.Warn().Err(err).Str("restaurant_id", freed.RestaurantID).Msg("dropping freed event")

			return nil
		}

		return fmt.Errorf("failed to suggest notifications: %w", err)
	}

	log.Info().
		Str("restaurant_id", freed.RestaurantID).
		Str("reservation_id", freed.ReservationID).
		Int("suggestions", len(res.Suggestions)).
		Msg("matched freed capacity against waitlist")

	return nil
}
