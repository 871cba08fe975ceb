package service

import (
	"context"
	"fmt"
	"rms/config"
	"rms/infras/kafka"
	"rms/infras/metrics"
	"rms/infras/otel"
	restaurantModel "rms/internal/domains/restaurant/model"
	restaurantService "rms/internal/domains/restaurant/service"
	"rms/internal/domains/waitlist/model"
	"rms/internal/domains/waitlist/model/dto"
	"rms/internal/domains/waitlist/priority"
	"rms/internal/domains/waitlist/repository"
	"rms/shared"
	"rms/shared/constant"
	"rms/shared/failure"
	"rms/shared/policy"
	"rms/shared/timezone"
	"rms/shared/validator"

	"github.com/rs/zerolog/log"
)

type Waitlist interface {
	Join(ctx context.Context, scope restaurantModel.Scope, req dto.JoinRequest) (dto.JoinResponse, error)
	Position(ctx context.Context, scope restaurantModel.Scope, id string) (dto.PositionResponse, error)
	List(ctx context.Context, scope restaurantModel.Scope) (dto.ListResponse, error)
	UpdateStatus(ctx context.Context, scope restaurantModel.Scope, id string, req dto.UpdateStatusRequest) (dto.StatusResponse, error)
	SuggestNotifications(ctx context.Context, scope restaurantModel.Scope, req dto.FreedSlotRequest) (dto.SuggestionsResponse, error)
}

type serviceImpl struct {
	repo        repository.Waitlist
	restaurants restaurantService.Restaurant
	policies    policy.Provider
	cfg         *config.Config
	kafka       kafka.Client
	metrics     metrics.Metrics
	otel        otel.Otel
}

func New(
	repo repository.Waitlist,
	restaurants restaurantService.Restaurant,
	policies policy.Provider,
	cfg *config.Config,
	kafka kafka.Client,
	metrics metrics.Metrics,
	otel otel.Otel,
) Waitlist {
	return &serviceImpl{
		repo:        repo,
		restaurants: restaurants,
		policies:    policies,
		cfg:         cfg,
		kafka:       kafka,
		metrics:     metrics,
		otel:        otel,
	}
}

func weights(p policy.Waitlist) priority.Weights {
	return priority.Weights{
		TimeWeight:          p.TimeWeight,
		SmallPartyWeight:    p.SmallPartyWeight,
		LargePartyWeight:    p.LargePartyWeight,
		LargePartyThreshold: p.LargePartyThreshold,
		PreferenceBonus:     p.PreferenceBonus,
		PreferenceTolerance: p.PreferenceTolerance,
	}
}

// Join persists a new active entry and returns it with its current position.
func (s *serviceImpl) Join(ctx context.Context, scope restaurantModel.Scope, req dto.JoinRequest) (res dto.JoinResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".waitlist.Join")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	entry, err := req.ToModel(scope.RestaurantID, user)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if entry.PreferredDate != nil && entry.PreferredDate.Before(timezone.StartOfDay(timezone.Now())) {
		return res, failure.BadRequestFromString("preferred date is in the past") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, entry); err != nil {
		log.Error().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("failed to insert waitlist entry")

		return res, fmt.Errorf("failed to insert waitlist entry: %w", err)
	}

	res.Entry.FromModel(entry)

	entries, err := s.active(ctx, scope.RestaurantID)
	if err != nil {
		return res, err
	}

	pol := s.policies.For(scope.RestaurantID)
	res.Position = priority.Position(model.ToEntries(entries), entry.ID, timezone.Now(), weights(pol.Waitlist))

	return res, nil
}

func (s *serviceImpl) Position(ctx context.Context, scope restaurantModel.Scope, id string) (res dto.PositionResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".waitlist.Position")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	entries, err := s.active(ctx, scope.RestaurantID)
	if err != nil {
		return res, err
	}

	pol := s.policies.For(scope.RestaurantID)

	res.ID = id
	res.Position = priority.Position(model.ToEntries(entries), id, timezone.Now(), weights(pol.Waitlist))

	return res, nil
}

// List returns the active entries in priority order.
func (s *serviceImpl) List(ctx context.Context, scope restaurantModel.Scope) (res dto.ListResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".waitlist.List")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	entries, err := s.active(ctx, scope.RestaurantID)
	if err != nil {
		return res, err
	}

	pol := s.policies.For(scope.RestaurantID)
	ranked := priority.Rank(model.ToEntries(entries), timezone.Now(), weights(pol.Waitlist))

	res.Entries = dto.FromRanked(ranked, entries)

	return res, nil
}

// UpdateStatus applies a status transition. Re-applying the current status is a no-op.
func (s *serviceImpl) UpdateStatus(ctx context.Context, scope restaurantModel.Scope, id string, req dto.UpdateStatusRequest) (res dto.StatusResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".waitlist.UpdateStatus")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.get(ctx, scope.RestaurantID, id)
	if err != nil {
		return res, err
	}

	if current.Status == req.Status {
		res.Entry.FromModel(current)

		return res, nil
	}

	if !model.CanTransition(current.Status, req.Status) {
		return res, failure.Conflict(fmt.Sprintf("waitlist entry cannot move from %s to %s", current.Status, req.Status)) // nolint:wrapcheck
	}

	updated, err := s.repo.UpdateStatus(ctx, scope.RestaurantID, id, current.Status, req.Status, user)
	if err != nil {
		log.Error().Err(err).Str("entry_id", id).Msg("failed to update waitlist status")

		return res, fmt.Errorf("failed to update waitlist status: %w", err)
	}

	if !updated {
		latest, err := s.get(ctx, scope.RestaurantID, id)
		if err != nil {
			return res, err
		}

		if latest.Status != req.Status {
			return res, failure.ConflictRetry("waitlist entry changed concurrently; reload and retry") // nolint:wrapcheck
		}

		res.Entry.FromModel(latest)

		return res, nil
	}

	now := timezone.Now()
	from := current.Status

	current.Status = req.Status
	current.ModifiedBy = user
	current.ModifiedAt = now

	if req.Status == model.StatusNotified {
		current.NotifiedAt = &now
	}

	res.Entry.FromModel(current)
	res.Changed = true

	s.publish(ctx, scope.RestaurantID, model.EventStatusChanged, model.StatusChangedEvent{
		RestaurantID: scope.RestaurantID,
		EntryID:      id,
		From:         from,
		To:           req.Status,
	})

	return res, nil
}

// SuggestNotifications matches the freed slot against the queue. It only suggests; marking
// an entry notified is a separate status update.
func (s *serviceImpl) SuggestNotifications(ctx context.Context, scope restaurantModel.Scope, req dto.FreedSlotRequest) (res dto.SuggestionsResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".waitlist.SuggestNotifications")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	slot, err := req.ToSlot()
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if !slot.End.IsZero() && !timezone.Now().Before(slot.End) {
		return res, failure.BadRequestFromString("freed slot has already ended") // nolint:wrapcheck
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	span.SetAttributes(map[string]any{
		constant.OtelRestaurantAttributeKey: scope.RestaurantID,
		constant.RequestParamDate:           req.Date,
		constant.RequestParamTime:           req.Time,
	})

	entries, err := s.active(ctx, scope.RestaurantID)
	if err != nil {
		return res, err
	}

	pol := s.policies.For(scope.RestaurantID)
	matched := priority.Match(model.ToEntries(entries), slot, timezone.Now(), weights(pol.Waitlist), pol.Waitlist.SuggestionCount)

	res.RestaurantID = scope.RestaurantID
	res.Start = slot.Start
	res.Capacity = slot.Capacity
	res.Suggestions = dto.FromRanked(matched, entries)

	if !slot.End.IsZero() {
		res.End = &slot.End
	}

	s.metrics.WaitlistSuggestions(len(res.Suggestions))

	if len(res.Suggestions) == 0 {
		return res, nil
	}

	event := model.NotificationSuggestedEvent{
		RestaurantID: scope.RestaurantID,
		Start:        slot.Start,
		Capacity:     slot.Capacity,
		Entries:      make([]model.SuggestedEntry, len(res.Suggestions)),
	}

	for i, suggestion := range res.Suggestions {
		event.Entries[i] = model.SuggestedEntry{
			EntryID:       suggestion.ID,
			CustomerName:  suggestion.CustomerName,
			CustomerPhone: suggestion.CustomerPhone,
			CustomerEmail: suggestion.CustomerEmail,
			PartySize:     suggestion.PartySize,
			Position:      suggestion.Position,
			Score:         suggestion.Score,
		}
	}

	s.publish(ctx, scope.RestaurantID, model.EventNotificationSuggested, event)

	return res, nil
}

func (s *serviceImpl) active(ctx context.Context, restaurantID string) ([]model.Waitlist, error) {
	entries, err := s.repo.LoadWaitlist(ctx, restaurantID, model.StatusActive)
	if err != nil {
		log.Error().Err(err).Str("restaurant_id", restaurantID).Msg("failed to load waitlist")

		return nil, fmt.Errorf("failed to load waitlist: %w", err)
	}

	return entries, nil
}

func (s *serviceImpl) get(ctx context.Context, restaurantID, id string) (model.Waitlist, error) {
	entry, err := s.repo.Get(ctx, shared.FilterByRestaurant(restaurantID, id, model.FieldRestaurantID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("entry_id", id).Msg("failed to get waitlist entry")

		return entry, fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	if entry.ID == constant.Empty {
		return entry, failure.NotFound("waitlist entry not found") // nolint:wrapcheck
	}

	return entry, nil
}

// publish is best effort and outlives a cancelled request.
func (s *serviceImpl) publish(ctx context.Context, restaurantID, eventType string, payload any) {
	event, err := kafka.NewEvent(eventType, restaurantID, payload)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to build waitlist event")

		return
	}

	if err := s.kafka.Publish(context.WithoutCancel(ctx), s.cfg.Kafka.Topic.Waitlist, event); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to publish waitlist event")
	}
}
