package service

import (
	"context"
	"fmt"
	"rms/config"
	"rms/infras/otel"
	"rms/internal/domains/restaurant/model"
	"rms/internal/domains/restaurant/repository"
	"rms/shared"
	"rms/shared/cache"
	"rms/shared/constant"
	"rms/shared/failure"

	"github.com/rs/zerolog/log"
)

const cacheGetRestaurant = "restaurant:get"

type Restaurant interface {
	Resolve(ctx context.Context, scope model.Scope) (model.Restaurant, error)
}

type serviceImpl struct {
	repo  repository.Restaurant
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Restaurant, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Restaurant {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// Resolve loads the restaurant and checks it belongs to the scope's organization.
// A restaurant of another organization is reported as not found.
func (s *serviceImpl) Resolve(ctx context.Context, scope model.Scope) (res model.Restaurant, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".restaurant.Resolve")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	if scope.RestaurantID == constant.Empty {
		return res, failure.BadRequestFromString("restaurant_id is required") // nolint:wrapcheck
	}

	span.SetAttribute(constant.OtelRestaurantAttributeKey, scope.RestaurantID)

	cacheKey := shared.BuildCacheKey(cacheGetRestaurant, scope.RestaurantID)

	res, err = cache.GetOrCompute(ctx, s.cache, cacheKey, s.cfg.Cache.TTL, func(ctx context.Context) (model.Restaurant, error) {
		restaurant, err := s.repo.Get(ctx, shared.FilterByID(scope.RestaurantID, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Str("restaurant_id", scope.RestaurantID).Msg("failed to get restaurant")

			return restaurant, fmt.Errorf("failed to get restaurant: %w", err)
		}

		if restaurant.ID == constant.Empty {
			return restaurant, failure.NotFound("restaurant not found") // nolint:wrapcheck
		}

		return restaurant, nil
	})
	if err != nil {
		return res, err
	}

	if scope.OrganizationID != constant.Empty && res.OrganizationID != scope.OrganizationID {
		log.Warn().
			Str("restaurant_id", scope.RestaurantID).
			Str("organization_id", scope.OrganizationID).
			Msg("restaurant requested outside the caller's organization")

		return model.Restaurant{}, failure.NotFound("restaurant not found") // nolint:wrapcheck
	}

	return res, nil
}
