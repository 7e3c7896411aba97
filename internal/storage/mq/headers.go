package mq

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/tyre-inventory/pkg/correlationid"
)

// BuildHeaders creates headers map with trace context and correlation ID injected from context.
func BuildHeaders(ctx context.Context) map[string]string {
	headers := map[string]string{}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	if correlationID, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = correlationID
	}

	return headers
}

// ContextFromRecord restores trace context and correlation ID carried in the record headers.
func ContextFromRecord(ctx context.Context, rec *kgo.Record) context.Context {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}

	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))

	if correlationID, ok := headers[correlationid.Header]; ok {
		ctx = correlationid.NewContext(ctx, correlationID)
	}

	return ctx
}
