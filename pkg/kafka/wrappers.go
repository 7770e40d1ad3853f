package kafka

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/IBM/sarama"
	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/rise-and-shine/filestash/pkg/alert"
	"github.com/rise-and-shine/filestash/pkg/meta"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const stackTraceSize = 4096

// handlerWithRecovery converts panics in downstream handlers into errors.
func (c *Consumer) handlerWithRecovery(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := make([]byte, stackTraceSize)
				stackTrace = stackTrace[:runtime.Stack(stackTrace, false)]

				c.logger.
					Named("recovery").
					WithContext(ctx).
					With("stack_trace", string(stackTrace)).
					With("panic_values", fmt.Sprintf("%v", r)).
					Error("panic recovered in consumer handler")

				err = errx.New("panic recovered in consumer handler", errx.WithDetails(errx.D{
					"stack_trace":  string(stackTrace),
					"panic_values": fmt.Sprintf("%v", r),
				}))
			}
		}()
		return next(ctx, msg)
	}
}

// handlerWithTracing extracts the propagated trace context from message
// headers and opens a consumer span around the handler.
func (c *Consumer) handlerWithTracing(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) (err error) {
		ctx = otel.GetTextMapPropagator().Extract(ctx, consumerMessageCarrier{msg: msg})

		ctx, span := otel.Tracer("").Start(ctx, fmt.Sprintf("kafka.%s.consume", msg.Topic),
			trace.WithAttributes(
				semconv.MessagingSystem("kafka"),
				semconv.MessagingKafkaConsumerGroup(c.cfg.GroupID),
				semconv.MessagingOperationProcess,
				semconv.MessagingMessageID(string(msg.Key)),
			),
			trace.WithSpanKind(trace.SpanKindConsumer),
		)

		defer func() {
			if err != nil {
				span.RecordError(err)
			}
			span.End()
		}()

		return next(ctx, msg)
	}
}

func (c *Consumer) handlerWithTimeout(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.HandlerTimeout)
		defer cancel()
		return next(ctx, msg)
	}
}

func (c *Consumer) handlerWithMetaInjection(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		span := trace.SpanFromContext(ctx)
		traceID := span.SpanContext().TraceID().String()

		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx = meta.InjectMetaToContext(ctx, c.metaData(traceID))

		return next(ctx, msg)
	}
}

// handlerWithAlerting forwards handler failures to the alert provider.
// The original error is always returned unchanged.
func (c *Consumer) handlerWithAlerting(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		log := c.logger.Named("alerting").WithContext(ctx)

		err := next(ctx, msg)
		if err == nil {
			return nil
		}

		e := errx.AsErrorX(err)

		operation := fmt.Sprintf("consumer topic -> %s", msg.Topic)
		details := make(map[string]string)
		for k, v := range meta.ExtractMetaFromContext(ctx) {
			details[string(k)] = v
		}
		details["error_trace"] = e.Trace()

		sendErr := alert.SendError(ctx, e.Code(), err.Error(), operation, details)
		if sendErr != nil {
			log.With("send_error", sendErr).Warn("failed to send error alert")
		}

		return err
	}
}

func (c *Consumer) handlerWithLogging(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		log := c.logger.Named("access_logger").WithContext(ctx)

		start := time.Now()
		err := next(ctx, msg)
		duration := time.Since(start)

		headers := lo.SliceToMap(msg.Headers, func(h *sarama.RecordHeader) (string, string) {
			return string(h.Key), string(h.Value)
		})

		log = log.With(
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"duration", duration.String(),
			"headers", headers,
		)

		logMsg := "consumed incoming kafka message"
		if err != nil {
			log.With("error", getErrObject(err)).Error(logMsg)
			return err
		}
		log.Info(logMsg)

		return nil
	}
}

// handlerWithErrorHandling types any handler failure as internal.
// TODO: route exhausted messages to a dead letter topic
func (c *Consumer) handlerWithErrorHandling(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		return errx.Wrap(next(ctx, msg), errx.WithType(errx.T_Internal))
	}
}

// handlerWithRetry retries the handler with backoff and jitter.
func (c *Consumer) handlerWithRetry(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		if c.cfg.RetryDisabled {
			return next(ctx, msg)
		}

		log := c.logger.Named("retry").WithContext(ctx)

		return retry.Do(
			func() error {
				return next(ctx, msg)
			},
			retry.Attempts(uint(c.cfg.RetryCount)), //nolint:gosec // retry count is a small config value
			retry.Delay(c.cfg.RetryDelay),
			retry.MaxJitter(10),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				log.
					With("error", getErrObject(err)).
					With("attempt", n+1).
					With("max_attempts", c.cfg.RetryCount).
					Warn("retrying kafka message")
			}),
			retry.Context(ctx),
		)
	}
}

func getErrObject(err error) any {
	e := errx.AsErrorX(err)
	return map[string]any{
		"code":    e.Code(),
		"message": e.Error(),
		"type":    e.Type().String(),
		"trace":   e.Trace(),
		"fields":  e.Fields(),
		"details": e.Details(),
	}
}
