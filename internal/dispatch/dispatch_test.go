package dispatch

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/pkg/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	messages []*kafka.Message
	err      error
}

func (r *recordingSender) SendMessage(_ context.Context, m *kafka.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, m)
	return nil
}

func TestKafkaDispatcherMessageShape(t *testing.T) {
	sender := &recordingSender{}
	d := NewKafkaDispatcher(sender)

	job := domain.Job{UserID: 7, FileID: 21, LocalPath: "ab12cd34"}
	require.NoError(t, d.Dispatch(context.Background(), job))

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]

	assert.Equal(t, "21", string(msg.Key))
	assert.JSONEq(t, `{"userId":7,"fileId":21,"localPath":"ab12cd34"}`, string(msg.Value))
}

func TestKafkaDispatcherProducerFailure(t *testing.T) {
	sender := &recordingSender{err: errx.New("broker unreachable")}
	d := NewKafkaDispatcher(sender)

	err := d.Dispatch(context.Background(), domain.Job{FileID: 1})
	assert.Error(t, err)
}

func TestNoopDispatch(t *testing.T) {
	assert.NoError(t, Noop{}.Dispatch(context.Background(), domain.Job{FileID: 9}))
}
