package di

import (
	"rms/infras/kafka"
	"rms/infras/otel"
	"rms/internal/handlers/events"
	"rms/shared/policy"
	"rms/transport/http"
)

// App is everything cmd/app runs: the HTTP API and the reservation event consumer.
type App struct {
	HTTP     *http.HTTP
	Events   events.Handler
	Kafka    kafka.Client
	Policies policy.Provider
	Otel     otel.Otel
}
