// Package dispatch publishes image processing jobs to the queue.
package dispatch

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/pkg/kafka"
)

// Dispatcher hands a job off for asynchronous processing.
// Implementations must not block beyond the context deadline.
type Dispatcher interface {
	Dispatch(ctx context.Context, job domain.Job) error
}

// messageSender is the producer surface the dispatcher needs.
// Satisfied by *kafka.Producer.
type messageSender interface {
	SendMessage(ctx context.Context, m *kafka.Message) error
}

// KafkaDispatcher publishes jobs as JSON messages keyed by file id.
type KafkaDispatcher struct {
	producer messageSender
}

// NewKafkaDispatcher creates a dispatcher over an existing producer.
func NewKafkaDispatcher(producer messageSender) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer}
}

// Dispatch publishes the job to the configured topic.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, job domain.Job) error {
	value, err := json.Marshal(job)
	if err != nil {
		return errx.Wrap(err)
	}

	err = d.producer.SendMessage(ctx, &kafka.Message{
		Key:   []byte(strconv.FormatInt(job.FileID, 10)),
		Value: value,
	})
	if err != nil {
		return errx.Wrap(err)
	}

	return nil
}

// Noop discards jobs. Used when the queue is disabled.
type Noop struct{}

// Dispatch does nothing and always succeeds.
func (Noop) Dispatch(_ context.Context, _ domain.Job) error {
	return nil
}
