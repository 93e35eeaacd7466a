package kafka_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/kafka"
	"ticket-marketplace/internal/models"
)

// TestPaymentConsumerIntegration runs the payment consumer against a real
// Kafka broker. Skipped when no broker is reachable.
func TestPaymentConsumerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		kafkaBrokers = "localhost:29092" // Default from docker-compose
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Net.DialTimeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer([]string{kafkaBrokers}, config)
	if err != nil {
		t.Skip("Skipping test because Kafka is not available:", err)
		return
	}
	defer producer.Close()

	var expectedPaymentID string

	handlerCalled := make(chan *models.PaymentEvent, 1)
	testHandler := func(event *models.PaymentEvent) error {
		if event.PaymentID == expectedPaymentID {
			t.Logf("Found our test payment: %s", event.PaymentID)
			handlerCalled <- event
		} else {
			t.Logf("Ignoring other payment: %s", event.PaymentID)
		}
		return nil
	}

	consumer, err := kafka.NewPaymentConsumer([]string{kafkaBrokers}, "test-consumer-group-"+time.Now().Format("20060102150405"))
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := consumer.ConsumePayments(ctx, testHandler)
		if err != nil && err != context.Canceled {
			t.Errorf("Consumer error: %v", err)
		}
	}()

	// Give the consumer group time to join before producing; the consumer
	// starts from the newest offset.
	time.Sleep(5 * time.Second)

	uniqueID := time.Now().Format("20060102150405") + "-" + fmt.Sprintf("%d", time.Now().UnixNano()%10000)
	testEvent := &models.PaymentEvent{
		Type:      "payment.completed",
		PaymentID: "test-payment-" + uniqueID,
		Payment: &models.Payment{
			PaymentID:     "test-payment-" + uniqueID,
			TransactionID: "test-txn-" + uniqueID,
			TicketID:      "test-ticket-1",
			BookingID:     "test-booking-1",
			Customer:      models.Customer{Email: "buyer@example.com", Name: "Buyer"},
			Vendor:        models.Vendor{Email: "vendor@example.com", Name: "Vendor"},
			Quantity:      2,
			Price:         10.50,
			CreatedDate:   time.Now(),
		},
		Timestamp: time.Now(),
	}
	expectedPaymentID = testEvent.PaymentID

	eventJSON, err := json.Marshal(testEvent)
	require.NoError(t, err)

	_, _, err = producer.SendMessage(&sarama.ProducerMessage{
		Topic: "payment-completed",
		Key:   sarama.StringEncoder(testEvent.PaymentID),
		Value: sarama.ByteEncoder(eventJSON),
	})
	require.NoError(t, err)

	select {
	case received := <-handlerCalled:
		assert.Equal(t, testEvent.PaymentID, received.PaymentID)
		assert.Equal(t, testEvent.Payment.TransactionID, received.Payment.TransactionID)
		assert.Equal(t, testEvent.Payment.Customer.Email, received.Payment.Customer.Email)
	case <-time.After(20 * time.Second):
		t.Fatalf("Timeout waiting for message to be consumed: %s", testEvent.PaymentID)
	}
}
