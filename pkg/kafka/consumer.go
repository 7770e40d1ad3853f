package kafka

import (
	"context"
	"errors"
	"strings"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/pkg/logger"
	"github.com/rise-and-shine/filestash/pkg/meta"
)

// Consumer wraps a sarama consumer group for a single topic.
type Consumer struct {
	cfg           ConsumerConfig
	topic         string
	saramaCfg     *sarama.Config
	logger        logger.Logger
	consumerGroup sarama.ConsumerGroup
	handleFn      HandleFunc
}

// HandleFunc is a delivery handler that should be injected into the consumer.
type HandleFunc func(context.Context, *sarama.ConsumerMessage) error

// NewConsumer creates a new kafka consumer.
// Uses global service info from meta.SetServiceInfo().
func NewConsumer(
	cfg ConsumerConfig,
	topic string,
	handleFn HandleFunc,
) (*Consumer, error) {
	saramaCfg, err := cfg.getSaramaConfig(meta.ServiceName())
	if err != nil {
		return nil, errx.Wrap(err)
	}

	consumerGroup, err := sarama.NewConsumerGroup(strings.Split(cfg.Brokers, ","), cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Consumer{
		cfg:           cfg,
		topic:         topic,
		saramaCfg:     saramaCfg,
		logger:        logger.Named("kafka.consumer"),
		consumerGroup: consumerGroup,
		handleFn:      handleFn,
	}, nil
}

// Start starts the consumer and begins consuming messages.
// It blocks until the consumer group is closed.
func (c *Consumer) Start() error {
	// the main consume loop, parent of the ConsumeClaim() partition consumer loop
	for {
		err := c.consumerGroup.Consume(context.Background(), []string{c.topic}, c)
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return errx.Wrap(err)
		}

		c.logger.Info("[kafka] rebalancing occurred, waiting for new messages")
	}
}

// Stop closes the consumer group.
func (c *Consumer) Stop() error {
	if err := c.consumerGroup.Close(); err != nil {
		return errx.Wrap(err)
	}
	return nil
}

// Setup implements sarama.ConsumerGroupHandler contract.
func (c *Consumer) Setup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler contract.
func (c *Consumer) Cleanup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	// NOTE:
	// Do not move the code below to a goroutine.
	// The `ConsumeClaim` itself is called within a goroutine,
	// https://github.com/IBM/sarama/blob/main/consumer_group.go#L27-L29
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			chain := c.buildHandlerChain()

			// errors are already handled inside the chain, move on to the next message
			_ = chain(context.Background(), message)

			session.MarkMessage(message, "")

		// Must return when session.Context() is done, otherwise sarama raises
		// ErrRebalanceInProgress or an i/o timeout on rebalance.
		// https://github.com/IBM/sarama/issues/1192
		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) buildHandlerChain() HandleFunc {
	// start with the core business logic handler
	handler := c.handleFn

	// build the chain in reverse order (last wrapper first)
	handler = c.handlerWithRetry(handler)         // 7. retry
	handler = c.handlerWithErrorHandling(handler) // 6. error typing
	handler = c.handlerWithLogging(handler)       // 5. logging
	handler = c.handlerWithAlerting(handler)      // 4. alerting
	handler = c.handlerWithMetaInjection(handler) // 3. meta injection
	handler = c.handlerWithTimeout(handler)       // 2. timeout
	handler = c.handlerWithTracing(handler)       // 1. tracing
	handler = c.handlerWithRecovery(handler)      // 0. recovery (outermost)

	return handler
}

func (c *Consumer) metaData(traceID string) map[meta.ContextKey]string {
	return map[meta.ContextKey]string{
		meta.TraceID:           traceID,
		meta.ServiceNameKey:    meta.ServiceName(),
		meta.ServiceVersionKey: meta.ServiceVersion(),
	}
}
