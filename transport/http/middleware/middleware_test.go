package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"rms/config"
	"rms/infras/jwt"
	metricsMocks "rms/infras/metrics/mocks"
	otelMocks "rms/infras/otel/mocks"
	"rms/permissions"
	cacheMocks "rms/shared/cache/mocks"
	"rms/shared/constant"
	"rms/transport/http/middleware"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const capacityPath = "/v1/restaurants/r1/capacity"

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "test-secret"
	cfg.App.APIKey = "internal-key"

	return cfg
}

// newRouter mounts the auth chain the way the API router does. The handler echoes the
// organization it was scoped to.
func newRouter(cfg *config.Config) http.Handler {
	authRole := middleware.NewAuthRoleMiddleware(jwt.New(cfg), otelMocks.NewOtel(), permissions.Get(), cfg)

	echo := func(w http.ResponseWriter, r *http.Request) {
		org, _ := r.Context().Value(constant.ContextKeyOrganizationID).(string)
		_, _ = w.Write([]byte(org))
	}

	router := chi.NewRouter()
	router.Route("/v1", func(group chi.Router) {
		group.Use(authRole.APIKey, authRole.Auth, authRole.RBAC)
		group.Get("/restaurants/{restaurant_id}/capacity", echo)
		group.Get("/restaurants/{restaurant_id}/tables", echo)
	})

	return router
}

func issue(t *testing.T, cfg *config.Config, role string) string {
	token, err := jwt.New(cfg).Issue("staff-1", "org-1", role, time.Hour)
	require.NoError(t, err)

	return "Bearer " + token
}

func serve(router http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestAuthRole(t *testing.T) {
	cfg := newConfig()
	router := newRouter(cfg)

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		status  int
		body    string
	}{
		{
			name:   "missing token",
			path:   capacityPath,
			status: http.StatusUnauthorized,
		},
		{
			name:    "malformed header",
			path:    capacityPath,
			headers: map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "role not allowed",
			path:    capacityPath,
			headers: map[string]string{constant.RequestHeaderAuthorization: issue(t, cfg, constant.RoleHost)},
			status:  http.StatusForbidden,
		},
		{
			name:    "role allowed",
			path:    capacityPath,
			headers: map[string]string{constant.RequestHeaderAuthorization: issue(t, cfg, constant.RoleManager)},
			status:  http.StatusOK,
			body:    "org-1",
		},
		{
			name:    "route missing from permission table",
			path:    "/v1/restaurants/r1/tables",
			headers: map[string]string{constant.RequestHeaderAuthorization: issue(t, cfg, constant.RoleSuperAdmin)},
			status:  http.StatusForbidden,
		},
		{
			name:    "internal api key",
			path:    capacityPath,
			headers: map[string]string{constant.RequestHeaderAPIKey: "internal-key"},
			status:  http.StatusOK,
			body:    "",
		},
		{
			name:    "wrong api key",
			path:    capacityPath,
			headers: map[string]string{constant.RequestHeaderAPIKey: "guess"},
			status:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.path, tt.headers)

			assert.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	cfg := newConfig()

	token, err := jwt.New(cfg).Issue("staff-1", "org-1", constant.RoleManager, -time.Minute)
	require.NoError(t, err)

	rec := serve(newRouter(cfg), capacityPath, map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := newConfig()
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, cache, metricsMocks.NewMetrics())
	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	key := "limiter:10.0.0.1:probe"
	headers := map[string]string{constant.RequestHeaderForwardedFor: "10.0.0.1, 172.16.0.1", constant.RequestHeaderUserAgent: "probe"}

	gomock.InOrder(
		cache.EXPECT().Increment(gomock.Any(), key, 60).Return(int64(2), nil),
		cache.EXPECT().Increment(gomock.Any(), key, 60).Return(int64(3), nil),
		cache.EXPECT().Increment(gomock.Any(), key, 60).Return(int64(0), errors.New("redis down")),
	)

	rec := serve(handler, "/", headers)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))

	rec = serve(handler, "/", headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = serve(handler, "/", headers)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), newConfig(), cacheMocks.NewMockRedisCache(ctrl), metricsMocks.NewMetrics())
	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, serve(handler, "/", nil).Code)
}

func TestTracing_RequestID(t *testing.T) {
	ctrl := gomock.NewController(t)

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), newConfig(), cacheMocks.NewMockRedisCache(ctrl), metricsMocks.NewMetrics())
	handler := chiMiddleware.RequestID(app.Tracing(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := serve(handler, "/", map[string]string{constant.RequestHeaderRequestID: "req-42"})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(constant.RequestHeaderRequestID))
}
