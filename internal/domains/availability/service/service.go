package service

import (
	"context"
	"errors"
	"fmt"
	"rms/config"
	"rms/infras/metrics"
	"rms/infras/otel"
	"rms/infras/s3"
	"rms/internal/domains/availability/engine"
	"rms/internal/domains/availability/model/dto"
	"rms/internal/domains/availability/snapshot"
	restaurantModel "rms/internal/domains/restaurant/model"
	restaurantService "rms/internal/domains/restaurant/service"
	"rms/shared"
	"rms/shared/cache"
	"rms/shared/constant"
	"rms/shared/failure"
	"rms/shared/policy"
	"rms/shared/timezone"
	"rms/shared/validator"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cacheAvailability = "availability"

	kindCheck        = "check"
	kindAlternatives = "alternatives"
	kindCapacity     = "capacity"

	capacityArchiveDirectory = "capacity-reports"
)

type Availability interface {
	CheckAvailability(ctx context.Context, scope restaurantModel.Scope, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	FindAlternatives(ctx context.Context, scope restaurantModel.Scope, req dto.AlternativesRequest) (dto.AlternativesResponse, error)
	OptimizeCapacity(ctx context.Context, scope restaurantModel.Scope, req dto.CapacityRequest) (dto.CapacityResponse, error)
}

type serviceImpl struct {
	loader      snapshot.Loader
	restaurants restaurantService.Restaurant
	policies    policy.Provider
	cfg         *config.Config
	cache       cache.RedisCache
	storage     s3.S3
	metrics     metrics.Metrics
	otel        otel.Otel
}

func New(
	loader snapshot.Loader,
	restaurants restaurantService.Restaurant,
	policies policy.Provider,
	cfg *config.Config,
	cache cache.RedisCache,
	storage s3.S3,
	metrics metrics.Metrics,
	otel otel.Otel,
) Availability {
	return &serviceImpl{
		loader:      loader,
		restaurants: restaurants,
		policies:    policies,
		cfg:         cfg,
		cache:       cache,
		storage:     storage,
		metrics:     metrics,
		otel:        otel,
	}
}

// CachePrefix is the key prefix of every cached availability answer of a restaurant.
func CachePrefix(restaurantID string) string {
	return shared.BuildCacheKey(cacheAvailability, restaurantID)
}

// Invalidate drops the cached availability answers of a restaurant. Errors are only logged.
func Invalidate(ctx context.Context, c cache.RedisCache, restaurantID string) {
	shared.InvalidateCaches(ctx, c, CachePrefix(restaurantID))
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, scope restaurantModel.Scope, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.CheckAvailability")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	pol := s.policies.For(scope.RestaurantID)

	query, err := s.query(req, pol)
	if err != nil {
		return res, err
	}

	span.SetAttributes(map[string]any{
		constant.OtelRestaurantAttributeKey: scope.RestaurantID,
		constant.RequestParamDate:           req.Date,
		constant.RequestParamPartySize:      req.PartySize,
	})

	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(CachePrefix(scope.RestaurantID), kindCheck), req, pol)

	res, err = cache.GetOrCompute(ctx, s.cache, cacheKey, s.cfg.Cache.AvailabilityTTL, func(ctx context.Context) (dto.AvailabilityResponse, error) {
		day, err := s.loader.Day(ctx, scope.RestaurantID, query.Date)
		if err != nil {
			log.Error().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("failed to load availability snapshot")

			return dto.AvailabilityResponse{}, fmt.Errorf("failed to load availability snapshot: %w", err)
		}

		result := engine.Calculate(day, query)
		snapshot.ReportUnknownTables(scope.RestaurantID, result.UnknownTableRefs)

		out := dto.AvailabilityResponse{
			RestaurantID:    scope.RestaurantID,
			Date:            req.Date,
			PartySize:       query.PartySize,
			Duration:        query.Duration,
			IsFullyBooked:   result.IsFullyBooked(),
			Slots:           dto.FromSlots(result.Slots),
			Recommendations: dto.FromSlots(engine.Recommend(result, query, pol.RecommendationCount)),
		}

		if result.Preferred != nil {
			out.Preferred = &dto.SlotResponse{}
			out.Preferred.FromSlot(*result.Preferred)
		}

		return out, nil
	})
	if err != nil {
		s.metrics.AvailabilityQuery(kindCheck, metrics.OutcomeError)

		return res, err
	}

	outcome := metrics.OutcomeAvailable
	if res.IsFullyBooked {
		outcome = metrics.OutcomeFullyBooked
	}

	s.metrics.AvailabilityQuery(kindCheck, outcome)

	return res, nil
}

func (s *serviceImpl) FindAlternatives(ctx context.Context, scope restaurantModel.Scope, req dto.AlternativesRequest) (res dto.AlternativesResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.FindAlternatives")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	pol := s.policies.For(scope.RestaurantID)

	query, err := s.query(dto.AvailabilityRequest(req), pol)
	if err != nil {
		return res, err
	}

	search := engine.SearchQuery{
		Preferred:   *query.Preferred,
		PartySize:   query.PartySize,
		Duration:    query.Duration,
		Granularity: query.Granularity,
		Location:    query.Location,
		AllowMerged: query.AllowMerged,
		Window:      pol.AlternativeWindow,
		Limit:       pol.AlternativeResults,
		MaxDays:     pol.AlternativeMaxDays,
	}

	span.SetAttributes(map[string]any{
		constant.OtelRestaurantAttributeKey: scope.RestaurantID,
		constant.RequestParamDate:           req.Date,
		constant.RequestParamTime:           req.Time,
	})

	// NotBefore moves with the clock, so it is applied inside the computation and the
	// cache key is bucketed by the minute.
	now := timezone.Now().Truncate(time.Minute)
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(CachePrefix(scope.RestaurantID), kindAlternatives), req, pol, now)

	res, err = cache.GetOrCompute(ctx, s.cache, cacheKey, s.cfg.Cache.AvailabilityTTL, func(ctx context.Context) (dto.AlternativesResponse, error) {
		search.NotBefore = now

		result, err := engine.FindAlternatives(ctx, s.loader.Source(scope.RestaurantID), search)
		if err != nil {
			log.Error().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("failed to search alternatives")

			return dto.AlternativesResponse{}, fmt.Errorf("failed to search alternatives: %w", err)
		}

		var out dto.AlternativesResponse
		out.FromResult(scope.RestaurantID, result)

		return out, nil
	})
	if err != nil {
		s.metrics.AvailabilityQuery(kindAlternatives, metrics.OutcomeError)

		return res, err
	}

	outcome := metrics.OutcomeFound
	if !res.Found {
		outcome = metrics.OutcomeNotFound
	}

	s.metrics.AvailabilityQuery(kindAlternatives, outcome)

	return res, nil
}

func (s *serviceImpl) OptimizeCapacity(ctx context.Context, scope restaurantModel.Scope, req dto.CapacityRequest) (res dto.CapacityResponse, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.OptimizeCapacity")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if _, err = s.restaurants.Resolve(ctx, scope); err != nil {
		return res, err
	}

	date, err := timezone.ParseDate(req.Date)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	pol := s.policies.For(scope.RestaurantID)

	span.SetAttributes(map[string]any{
		constant.OtelRestaurantAttributeKey: scope.RestaurantID,
		constant.RequestParamDate:           req.Date,
	})

	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(CachePrefix(scope.RestaurantID), kindCapacity), req, pol)

	res, err = cache.GetOrCompute(ctx, s.cache, cacheKey, s.cfg.Cache.AvailabilityTTL, func(ctx context.Context) (dto.CapacityResponse, error) {
		day, err := s.loader.Day(ctx, scope.RestaurantID, date)
		if err != nil {
			log.Error().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("failed to load capacity snapshot")

			return dto.CapacityResponse{}, fmt.Errorf("failed to load capacity snapshot: %w", err)
		}

		report := engine.Optimize(day, pol.SlotGranularity, engine.OptimizerPolicy{
			PeakQuantile:        pol.PeakQuantile,
			HighOccupancy:       pol.HighOccupancy,
			LowOccupancy:        pol.LowOccupancy,
			MinConsecutiveSlots: pol.MinConsecutiveSlots,
		})

		var out dto.CapacityResponse
		out.FromReport(scope.RestaurantID, req.Date, report)
		out.ArchiveURL = s.archive(ctx, out)

		return out, nil
	})
	if err != nil {
		s.metrics.AvailabilityQuery(kindCapacity, metrics.OutcomeError)

		return res, err
	}

	s.metrics.AvailabilityQuery(kindCapacity, metrics.OutcomeFound)

	return res, nil
}

// archive stores the report when archiving is enabled. A failed upload does not fail the request.
func (s *serviceImpl) archive(ctx context.Context, report dto.CapacityResponse) string {
	if !s.cfg.Reservation.ArchiveCapacityReport || s.storage == nil {
		return constant.Empty
	}

	directory := capacityArchiveDirectory + "/" + report.RestaurantID
	fileName := report.Date + ".json"

	url, err := s.storage.UploadJSON(ctx, directory, fileName, report)
	if err != nil {
		log.Error().Err(err).Str("restaurant_id", report.RestaurantID).Str("date", report.Date).Msg("failed to archive capacity report")

		return constant.Empty
	}

	return url
}

// query turns a validated request into an engine query under the restaurant policy.
// Dates that ended before now minus the grace window are rejected.
func (s *serviceImpl) query(req dto.AvailabilityRequest, pol policy.Policy) (engine.Query, error) {
	date, err := timezone.ParseDate(req.Date)
	if err != nil {
		return engine.Query{}, failure.BadRequest(err) // nolint:wrapcheck
	}

	preferred, err := req.Preferred(date)
	if err != nil {
		return engine.Query{}, failure.BadRequest(err) // nolint:wrapcheck
	}

	duration := dto.DurationOr(req.Duration, pol.DefaultDuration)

	query := engine.Query{
		Date:        date,
		PartySize:   req.PartySize,
		Preferred:   preferred,
		Duration:    duration,
		Granularity: pol.SlotGranularity,
		Location:    req.Location,
		AllowMerged: pol.AllowMergedTables,
	}

	if err = query.Validate(); err != nil {
		return query, failure.BadRequest(err) // nolint:wrapcheck
	}

	grace := time.Duration(pol.PastGrace) * time.Minute
	if err = engine.CheckNotPast(date, timezone.Now(), grace); err != nil {
		if errors.Is(err, engine.ErrDateInPast) {
			return query, failure.BadRequest(err) // nolint:wrapcheck
		}

		return query, fmt.Errorf("failed to check date: %w", err)
	}

	return query, nil
}
