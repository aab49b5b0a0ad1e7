// Package mocks provides an otel.Otel for tests: real scopes over no-op spans.
package mocks

import (
	"context"

	"stayvista/infras/otel"

	"go.opentelemetry.io/otel/trace/noop"
)

type noopOtel struct {
	provider noop.TracerProvider
}

func (o noopOtel) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, otel.Scope) {
	ctx, span := o.provider.Tracer(scopeName).Start(ctx, spanName)

	return ctx, otel.NewScope(span)
}

func NewOtel() otel.Otel {
	return noopOtel{provider: noop.NewTracerProvider()}
}
