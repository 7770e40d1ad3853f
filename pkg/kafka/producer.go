package kafka

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/pkg/meta"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
)

// Message represents a producer Kafka message with key, value, and headers.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer represents a Kafka sync producer bound to a single topic.
type Producer struct {
	cfg          ProducerConfig
	topic        string
	saramaCfg    *sarama.Config
	syncProducer sarama.SyncProducer
}

// NewProducer creates a new Kafka producer.
// Uses global service info from meta.SetServiceInfo().
func NewProducer(cfg ProducerConfig, topic string) (*Producer, error) {
	saramaCfg, err := cfg.getSaramaConfig(meta.ServiceName())
	if err != nil {
		return nil, errx.Wrap(err)
	}

	producer, err := sarama.NewSyncProducer(strings.Split(cfg.Brokers, ","), saramaCfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Producer{
		cfg:          cfg,
		topic:        topic,
		saramaCfg:    saramaCfg,
		syncProducer: producer,
	}, nil
}

// SendMessage sends a message to the configured Kafka topic.
func (p *Producer) SendMessage(ctx context.Context, m *Message) error {
	kafkaMsg := p.buildKafkaProducerMsg(ctx, m)

	partition, offset, err := p.syncProducer.SendMessage(kafkaMsg)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"topic":     kafkaMsg.Topic,
			"partition": partition,
			"offset":    offset,
			"key":       string(m.Key),
		}))
	}

	return nil
}

// SendMessages sends multiple messages to the configured Kafka topic.
func (p *Producer) SendMessages(ctx context.Context, messages []Message) error {
	kafkaMessages := lo.Map(messages, func(m Message, _ int) *sarama.ProducerMessage {
		return p.buildKafkaProducerMsg(ctx, &m)
	})

	err := p.syncProducer.SendMessages(kafkaMessages)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"topic": p.topic,
			"count": len(messages),
		}))
	}

	return nil
}

func (p *Producer) buildKafkaProducerMsg(ctx context.Context, m *Message) *sarama.ProducerMessage {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(m.Key),
		Value: sarama.ByteEncoder(m.Value),
	}

	for k, v := range m.Headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{
			Key:   []byte(k),
			Value: []byte(v),
		})
	}

	// Propagate tracing information through message headers
	otel.GetTextMapPropagator().Inject(ctx, producerMessageCarrier{msg: msg})

	return msg
}

// Close closes the producer.
func (p *Producer) Close() error {
	return errx.Wrap(p.syncProducer.Close())
}
