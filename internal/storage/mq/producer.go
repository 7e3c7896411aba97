package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
)

type ProduceMsg struct {
	Topic        string
	Headers      map[string]string
	Payload      []byte
	PartitionKey *string
}

type Producer interface {
	Produce(ctx context.Context, msg ProduceMsg) error
}

var (
	_ Producer = (*KafkaProducer)(nil)
	_ Producer = NopProducer{}
)

// NopProducer discards every message. It is used when no broker is configured.
type NopProducer struct{}

func (NopProducer) Produce(context.Context, ProduceMsg) error { return nil }

type KafkaProducer struct {
	cl *kgo.Client
}

func NewKafkaProducer(ctx context.Context, cfg config.Kafka) (*KafkaProducer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.AllowAutoTopicCreation(),
		kgo.WithContext(ctx),
		kgo.WithHooks(kTracer),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := cl.Ping(pingCtx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	return &KafkaProducer{cl: cl}, nil
}

// Produce sends msg and waits for the broker acknowledgement. Trace context
// and correlation id from ctx are added to the message headers.
func (p *KafkaProducer) Produce(ctx context.Context, msg ProduceMsg) error {
	ctx, span := tracer.Start(ctx, "KafkaProducer.Produce",
		trace.WithAttributes(
			attribute.String("topic", msg.Topic),
		),
	)
	defer span.End()

	if err := p.cl.ProduceSync(ctx, buildProduceRecord(ctx, msg)).FirstErr(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to produce message")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (p *KafkaProducer) Close() {
	p.cl.Close()
}

func buildProduceRecord(ctx context.Context, msg ProduceMsg) *kgo.Record {
	merged := BuildHeaders(ctx)
	for k, v := range msg.Headers {
		merged[k] = v
	}

	headers := make([]kgo.RecordHeader, 0, len(merged))
	for k, v := range merged {
		headers = append(headers, kgo.RecordHeader{
			Key:   k,
			Value: []byte(v),
		})
	}

	r := &kgo.Record{
		Topic:   msg.Topic,
		Value:   msg.Payload,
		Headers: headers,
	}

	if msg.PartitionKey != nil {
		r.Key = []byte(*msg.PartitionKey)
	}

	return r
}
