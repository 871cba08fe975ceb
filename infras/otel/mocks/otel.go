package mocks

import (
	"context"
	"rms/infras/otel"
)

type otelImpl struct{}

// NewOtel returns a tracer that records nothing, for tests.
func NewOtel() otel.Otel {
	return otelImpl{}
}

func (otelImpl) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (otelImpl) Shutdown(context.Context) error {
	return nil
}
