package service_test

import (
	"context"
	"errors"
	"net/http"
	"rms/config"
	"rms/infras/otel/mocks"
	restaurantMocks "rms/internal/domains/restaurant/mocks"
	"rms/internal/domains/restaurant/model"
	"rms/internal/domains/restaurant/service"
	cacheMocks "rms/shared/cache/mocks"
	"rms/shared/failure"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestRestaurantService_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}

	svc := service.New(mockRepo, cfg, mockCache, mocks.NewOtel())

	bistro := model.Restaurant{ID: "r1", OrganizationID: "org-1", Name: "Bistro"}

	tests := []struct {
		name      string
		scope     model.Scope
		setupMock func()
		want      model.Restaurant
		wantCode  int
	}{
		{
			name:  "same organization",
			scope: model.Scope{OrganizationID: "org-1", RestaurantID: "r1"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bistro, nil)
			},
			want: bistro,
		},
		{
			name:  "internal caller without organization",
			scope: model.Scope{RestaurantID: "r1"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bistro, nil)
			},
			want: bistro,
		},
		{
			name:  "other organization",
			scope: model.Scope{OrganizationID: "org-2", RestaurantID: "r1"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bistro, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:  "missing restaurant",
			scope: model.Scope{OrganizationID: "org-1", RestaurantID: "r9"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Restaurant{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:      "missing restaurant id",
			scope:     model.Scope{OrganizationID: "org-1"},
			setupMock: func() {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:  "repository error",
			scope: model.Scope{RestaurantID: "r1"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Restaurant{}, errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			got, err := svc.Resolve(context.Background(), tt.scope)

			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestaurantService_ResolveCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	svc := service.New(mockRepo, cfg, mockCache, mocks.NewOtel())

	mockCache.EXPECT().
		Get(gomock.Any(), "restaurant:get:r1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			*value.(*model.Restaurant) = model.Restaurant{ID: "r1", OrganizationID: "org-1"}

			return nil
		})

	got, err := svc.Resolve(context.Background(), model.Scope{OrganizationID: "org-1", RestaurantID: "r1"})
	assert.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
}
