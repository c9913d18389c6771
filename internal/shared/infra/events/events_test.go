package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/insightdash/internal/shared/events"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func TestInMemoryEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus("insight")
	defer bus.Close()
	sub := bus.Subscribe(1)

	evt, err := sharedEvents.NewIntegrationEvent("insight.imported", "batch-1", map[string]int{"inserted": 3})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), evt))

	var got sharedEvents.IntegrationEvent
	require.NoError(t, json.Unmarshal(<-sub, &got))
	assert.Equal(t, "insight.imported", got.Type)
	assert.Equal(t, "batch-1", got.AggregateID)
	assert.JSONEq(t, `{"inserted":3}`, string(got.Data))
}

func TestInMemoryEventBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewInMemoryEventBus("insight")
	defer bus.Close()
	sub := bus.Subscribe(1)

	assert.NoError(t, bus.Publish(context.Background(), "first"))
	assert.NoError(t, bus.Publish(context.Background(), "second"))

	assert.Equal(t, `"first"`, string(<-sub))
	assert.Empty(t, sub)
}

func TestInMemoryEventBus_CloseClosesSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus("insight")
	sub := bus.Subscribe(1)

	bus.Close()
	bus.Close()

	_, open := <-sub
	assert.False(t, open)
	assert.NoError(t, bus.Publish(context.Background(), "ignored"))
}

func TestKafkaPublisher_UsesPartitionKeyAndTypeHeader(t *testing.T) {
	writer := new(mockWriter)
	publisher := NewKafkaPublisher(writer, zap.NewNop())
	evt, err := sharedEvents.NewIntegrationEvent("insight.imported", "batch-42", nil)
	require.NoError(t, err)

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 &&
			string(msgs[0].Key) == "batch-42" &&
			len(msgs[0].Headers) == 1 &&
			string(msgs[0].Headers[0].Value) == "insight.imported"
	})).Return(nil).Once()

	assert.NoError(t, publisher.Publish(context.Background(), evt))
	writer.AssertExpectations(t)
}

func TestKafkaPublisher_PropagatesWriterError(t *testing.T) {
	writer := new(mockWriter)
	publisher := NewKafkaPublisher(writer, zap.NewNop())
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	err := publisher.Publish(context.Background(), map[string]string{"k": "v"})

	assert.EqualError(t, err, "broker down")
}

// --- Consumidores ---

type mockReader struct {
	mock.Mock
}

func (m *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(kafka.Message), args.Error(1)
}

func (m *mockReader) Config() kafka.ReaderConfig {
	return kafka.ReaderConfig{Topic: "insight", Brokers: []string{"localhost:9092"}}
}

type recordingHandler struct {
	received chan string
}

func (h *recordingHandler) HandleMessage(ctx context.Context, key string, payload []byte) {
	h.received <- key + ":" + string(payload)
}

func TestConsumerAdapter_DeliversUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	reader := new(mockReader)
	reader.On("ReadMessage", mock.Anything).Return(kafka.Message{Key: []byte("k"), Value: []byte("v")}, nil).Once()
	reader.On("ReadMessage", mock.Anything).Return(kafka.Message{}, context.Canceled).Run(func(mock.Arguments) { cancel() })
	handler := &recordingHandler{received: make(chan string, 1)}
	adapter := NewConsumerAdapter(reader, handler, zap.NewNop())

	// Act
	adapter.Start(ctx)
	<-adapter.Done()

	// Assert
	assert.Equal(t, "k:v", <-handler.received)
}

func TestBackgroundConsumerChan_StopsWhenBusCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewInMemoryEventBus("insight")
	handler := &recordingHandler{received: make(chan string, 1)}
	done := BackgroundConsumerChan(context.Background(), bus.Subscribe(1), handler)

	require.NoError(t, bus.Publish(context.Background(), "hola"))
	assert.Equal(t, `:"hola"`, <-handler.received)

	bus.Close()
	<-done
}
