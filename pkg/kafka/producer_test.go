package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written [][]kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *Producer {
	return &Producer{
		writer: w,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func headerMap(msg kafka.Message) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func TestNewEvent_Fields(t *testing.T) {
	type productData struct {
		Code string `json:"code"`
	}

	event, err := NewEvent("catalog.product.created", "prod-1", "product", "catalog-fixtures", productData{Code: "abc"})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "catalog.product.created", event.EventType)
	assert.Equal(t, "prod-1", event.AggregateID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var decoded productData
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, "abc", decoded.Code)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("test.event", "agg-1", "test", "test-service", make(chan int))
	require.Error(t, err)
}

func TestNewEvent_RequiredFields(t *testing.T) {
	_, err := NewEvent("", "agg-1", "product", "svc", nil)
	assert.EqualError(t, err, "event type is required")

	_, err = NewEvent("catalog.product.created", "", "product", "svc", nil)
	assert.EqualError(t, err, "catalog.product.created event: aggregate id is required")
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{"))
	assert.ErrorContains(t, err, "decode event")

	_, err = UnmarshalEvent([]byte(`{"event_id":"e1"}`))
	assert.ErrorContains(t, err, "missing event_type")
}

func TestUnmarshalData_Empty(t *testing.T) {
	e := &Event{EventID: "e1", EventType: "x"}
	var out map[string]string
	assert.ErrorContains(t, e.UnmarshalData(&out), "has no data")
}

func TestEvent_Chaining(t *testing.T) {
	event, err := NewEvent("test.event", "agg-1", "test", "svc", nil)
	require.NoError(t, err)

	result := event.WithCorrelationID("run-1").WithMetadata("fixture", "product")
	assert.Same(t, event, result)
	assert.Equal(t, "run-1", event.CorrelationID)
	assert.Equal(t, "product", event.Metadata["fixture"])
}

func TestToMessage_KeyAndHeaders(t *testing.T) {
	event, err := NewEvent("catalog.product.created", "prod-9", "product", "catalog-fixtures", map[string]string{"name": "T-Shirt"})
	require.NoError(t, err)
	event.WithCorrelationID("run-7")

	msg, err := toMessage("catalog.product.created", event)
	require.NoError(t, err)

	assert.Equal(t, "catalog.product.created", msg.Topic)
	assert.Equal(t, []byte("prod-9"), msg.Key)
	headers := headerMap(msg)
	assert.Equal(t, "catalog.product.created", headers["event_type"])
	assert.Equal(t, "catalog-fixtures", headers["source"])
	assert.Equal(t, "run-7", headers["correlation_id"])

	restored, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, restored.EventID)
}

func TestToMessage_NoCorrelationHeader(t *testing.T) {
	event, err := NewEvent("x", "a", "t", "s", nil)
	require.NoError(t, err)

	msg, err := toMessage("x", event)
	require.NoError(t, err)
	_, ok := headerMap(msg)["correlation_id"]
	assert.False(t, ok)
}

func TestPublishBatch_SingleWrite(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	var events []*Event
	for _, id := range []string{"p1", "p2", "p3"} {
		e, err := NewEvent("catalog.product.created", id, "product", "svc", nil)
		require.NoError(t, err)
		events = append(events, e)
	}

	require.NoError(t, p.PublishBatch(context.Background(), "catalog.product.created", events))
	require.Len(t, w.written, 1)
	assert.Len(t, w.written[0], 3)
}

func TestPublishBatch_Empty(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.PublishBatch(context.Background(), "topic", nil))
	assert.Empty(t, w.written)
}

func TestPublish_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newTestProducer(w)

	e, err := NewEvent("x", "a", "t", "s", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "topic", e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish 1 events to topic")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestPing_NoBrokers(t *testing.T) {
	p := newTestProducer(&fakeWriter{})
	err := p.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}
