package service

import (
	"context"
	"errors"
	"fmt"
	"rms/config"
	"rms/infras/kafka"
	"rms/infras/metrics"
	"rms/infras/otel"
	"rms/infras/postgres"
	"rms/internal/domains/availability/engine"
	availabilityDto "rms/internal/domains/availability/model/dto"
	availabilityService "rms/internal/domains/availability/service"
	"rms/internal/domains/availability/snapshot"
	"rms/internal/domains/reservation/model"
	"rms/internal/domains/reservation/model/dto"
	"rms/internal/domains/reservation/repository"
	restaurantModel "rms/internal/domains/restaurant/model"
	restaurantService "rms/internal/domains/restaurant/service"
	tableRepo "rms/internal/domains/table/repository"
	"rms/shared"
	"rms/shared/cache"
	"rms/shared/constant"
	"rms/shared/failure"
	"rms/shared/policy"
	"rms/shared/timezone"
	"rms/shared/validator"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

type Reservation interface {
	Create(ctx context.Context, scope restaurantModel.Scope, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Get(ctx context.Context, scope restaurantModel.Scope, id string) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, scope restaurantModel.Scope, req dto.ListRequest) (dto.GetReservationsResponse, error)
	UpdateStatus(ctx context.Context, scope restaurantModel.Scope, id string, req dto.UpdateStatusRequest) (dto.StatusResponse, error)
}

type serviceImpl struct {
	repo        repository.Reservation
	tables      tableRepo.Table
	loader      snapshot.Loader
	restaurants restaurantService.Restaurant
	policies    policy.Provider
	cfg         *config.Config
	cache       cache.RedisCache
	kafka       kafka.Client
	metrics     metrics.Metrics
	otel        otel.Otel
}

func New(
	repo repository.Reservation,
	tables tableRepo.Table,
	loader snapshot.Loader,
	restaurants restaurantService.Restaurant,
	policies policy.Provider,
	cfg *config.Config,
	cache cache.RedisCache,
	kafka kafka.Client,
	metrics metrics.Metrics,
	otel otel.Otel,
) Reservation {
	return &serviceImpl{
		repo:        repo,
		tables:      tables,
		loader:      loader,
		restaurants: restaurants,
		policies:    policies,
		cfg:         cfg,
		cache:       cache,
		kafka:       kafka,
		metrics:     metrics,
		otel:        otel,
	}
}

// Create picks tables for the requested slot and commits the reservation. The commit
// re-checks the tables under lock; losing that race is a retryable conflict.
func (s *serviceImpl) Create(ctx context.Context, scope restaurantModel.Scope, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	pol := s.policies.For(scope.RestaurantID)

	date, start, err := req.Start()
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	duration := availabilityDto.DurationOr(req.Duration, pol.DefaultDuration)

	query := engine.Query{
		Date:        date,
		PartySize:   req.PartySize,
		Duration:    duration,
		Granularity: pol.SlotGranularity,
		Location:    req.Location,
		AllowMerged: pol.AllowMergedTables,
	}

	if err = query.Validate(); err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	span.SetAttributes(map[string]any{
		constant.OtelRestaurantAttributeKey: scope.RestaurantID,
		constant.RequestParamDate:           req.Date,
		constant.RequestParamTime:           req.Time,
		constant.RequestParamPartySize:      req.PartySize,
	})

	day, err := s.loader.Day(ctx, scope.RestaurantID, date)
	if err != nil {
		log.Error().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("failed to load reservation snapshot")

		return res, fmt.Errorf("failed to load reservation snapshot: %w", err)
	}

	open, closeAt, ok := day.Hours.Window(day.Date)
	if ok && start.Before(open) && closeAt.Day() != open.Day() {
		// a time before opening on a day that runs past midnight is an after-midnight seating
		start = start.AddDate(0, 0, 1)
	}

	end := start.Add(time.Duration(duration) * time.Minute)

	if !ok || start.Before(open) || end.After(closeAt) {
		return res, failure.BadRequestFromString("requested time is outside service hours") // nolint:wrapcheck
	}

	grace := time.Duration(pol.PastGrace) * time.Minute
	if start.Add(grace).Before(timezone.Now()) {
		return res, failure.BadRequest(engine.ErrDateInPast) // nolint:wrapcheck
	}

	slot := engine.Evaluate(day, query, start)

	var candidate engine.Candidate
	if req.TableID != constant.Empty {
		candidate, err = engine.ResolveTable(slot.Candidates, req.PartySize, req.TableID)
	} else {
		candidate, err = engine.Resolve(slot.Candidates, req.PartySize)
	}

	if err != nil {
		s.metrics.ReservationCommit(metrics.OutcomeNoCapacity)

		return res, failure.Conflict("no table available for the requested slot") // nolint:wrapcheck
	}

	reservation := req.ToModel(scope.RestaurantID, user, date, start, duration, candidate.TableIDs)

	if err = s.repo.Commit(ctx, reservation); err != nil {
		if errors.Is(err, engine.ErrConflict) {
			log.Warn().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("reservation lost its tables to a concurrent commit")
			s.metrics.ReservationCommit(metrics.OutcomeConflict)

			return res, failure.ConflictRetry("table was taken by a concurrent reservation; check availability and retry") // nolint:wrapcheck
		}

		if postgres.IsForeignKeyViolation(err) {
			s.metrics.ReservationCommit(metrics.OutcomeError)

			return res, failure.NotFound("waitlist entry not found") // nolint:wrapcheck
		}

		log.Error().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("failed to commit reservation")
		s.metrics.ReservationCommit(metrics.OutcomeError)

		return res, fmt.Errorf("failed to commit reservation: %w", err)
	}

	s.metrics.ReservationCommit(metrics.OutcomeCommitted)

	res.FromModel(reservation)

	s.afterWrite(ctx, scope.RestaurantID, model.EventCommitted, res)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, scope restaurantModel.Scope, id string) (res dto.ReservationResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	reservation, err := s.get(ctx, scope.RestaurantID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, scope restaurantModel.Scope, req dto.ListRequest) (res dto.GetReservationsResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetAll")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	filter := req.Filter(scope.RestaurantID)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req.QueryParams, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// UpdateStatus applies a status transition. Re-applying the current status is a no-op,
// so retried requests succeed. A concurrent change to another status is a retryable conflict.
func (s *serviceImpl) UpdateStatus(ctx context.Context, scope restaurantModel.Scope, id string, req dto.UpdateStatusRequest) (res dto.StatusResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.UpdateStatus")
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
		res.Reservation.FromModel(current)

		return res, nil
	}

	if !model.CanTransition(current.Status, req.Status) {
		return res, failure.Conflict(fmt.Sprintf("reservation cannot move from %s to %s", current.Status, req.Status)) // nolint:wrapcheck
	}

	updated, err := s.repo.UpdateStatus(ctx, scope.RestaurantID, id, current.Status, req.Status, user)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to update reservation status")

		return res, fmt.Errorf("failed to update reservation status: %w", err)
	}

	if !updated {
		latest, err := s.get(ctx, scope.RestaurantID, id)
		if err != nil {
			return res, err
		}

		if latest.Status != req.Status {
			return res, failure.ConflictRetry("reservation status changed concurrently; reload and retry") // nolint:wrapcheck
		}

		res.Reservation.FromModel(latest)

		return res, nil
	}

	from := current.Status
	current.Status = req.Status
	current.ModifiedBy = user
	current.ModifiedAt = timezone.Now()

	res.Reservation.FromModel(current)
	res.Changed = true

	s.afterWrite(ctx, scope.RestaurantID, model.EventStatusChanged, model.StatusChangedEvent{
		RestaurantID:  scope.RestaurantID,
		ReservationID: id,
		From:          from,
		To:            req.Status,
	})

	if model.IsBlocking(from) && model.Frees(req.Status) {
		freed, ok, err := s.freedSlot(ctx, current, timezone.Now())
		if err != nil {
			log.Error().Err(err).Str("reservation_id", id).Msg("failed to compute freed capacity")

			return res, nil
		}

		if !ok {
			return res, nil
		}

		res.FreedSlot = &dto.FreedSlotResponse{Start: freed.Start, End: freed.End, Capacity: freed.Capacity}

		s.publish(ctx, scope.RestaurantID, model.EventFreed, freed)
	}

	return res, nil
}

func (s *serviceImpl) get(ctx context.Context, restaurantID, id string) (model.Reservation, error) {
	reservation, err := s.repo.Get(ctx, shared.FilterByRestaurant(restaurantID, id, model.FieldRestaurantID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return reservation, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	return reservation, nil
}

// freedSlot sums the capacity of the released tables. A reservation completed early frees
// its tables from now on; one that already ended frees nothing and ok is false.
func (s *serviceImpl) freedSlot(ctx context.Context, reservation model.Reservation, now time.Time) (freed model.FreedEvent, ok bool, err error) {
	if !now.Before(reservation.EndsAt) {
		return freed, false, nil
	}

	tables, err := s.tables.LoadTables(ctx, reservation.RestaurantID)
	if err != nil {
		return freed, false, fmt.Errorf("failed to load tables: %w", err)
	}

	capacity := 0

	for _, table := range tables {
		if table.Active && slices.Contains(reservation.TableIDs, table.ID) {
			capacity += table.Capacity
		}
	}

	start := reservation.StartsAt
	if now.After(start) {
		start = now
	}

	return model.FreedEvent{
		RestaurantID:  reservation.RestaurantID,
		ReservationID: reservation.ID,
		Start:         start,
		End:           reservation.EndsAt,
		Capacity:      capacity,
	}, true, nil
}

// afterWrite drops cached availability and publishes the event. Both are best effort
// and outlive a cancelled request.
func (s *serviceImpl) afterWrite(ctx context.Context, restaurantID, eventType string, payload any) {
	c := context.WithoutCancel(ctx)

	availabilityService.Invalidate(c, s.cache, restaurantID)
	s.publish(c, restaurantID, eventType, payload)
}

func (s *serviceImpl) publish(ctx context.Context, restaurantID, eventType string, payload any) {
	event, err := kafka.NewEvent(eventType, restaurantID, payload)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to build reservation event")

		return
	}

	if err := s.kafka.Publish(context.WithoutCancel(ctx), s.cfg.Kafka.Topic.Reservation, event); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to publish reservation event")
	}
}
