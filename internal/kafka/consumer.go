package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"ticket-marketplace/internal/models"
)

// PaymentConsumer consumes completed-payment events, feeding the receipt
// mail pipeline.
type PaymentConsumer struct {
	consumer sarama.ConsumerGroup
	topics   []string
}

func NewPaymentConsumer(brokers []string, groupID string) (*PaymentConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &PaymentConsumer{
		consumer: consumer,
		topics:   []string{"payment-completed"},
	}, nil
}

func (c *PaymentConsumer) ConsumePayments(ctx context.Context, handler func(*models.PaymentEvent) error) error {
	consumerHandler := &paymentConsumerHandler{handler: handler}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.consumer.Consume(ctx, c.topics, consumerHandler); err != nil {
				log.Printf("Error consuming messages: %v", err)
				return err
			}
		}
	}
}

func (c *PaymentConsumer) Close() error {
	return c.consumer.Close()
}

type paymentConsumerHandler struct {
	handler func(*models.PaymentEvent) error
}

func (h *paymentConsumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *paymentConsumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *paymentConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event models.PaymentEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		if err := h.handler(&event); err != nil {
			log.Printf("Failed to handle payment event: %v", err)
			continue
		}

		session.MarkMessage(message, "")
	}

	return nil
}
