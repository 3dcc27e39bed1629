package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencesessions/internal/domain"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	ev := domain.SessionLifecycleEvent{
		Type:       domain.SessionCreated,
		SessionID:  9,
		EventID:    42,
		Name:       "ZK Workshop",
		SubEventID: 101,
		QuotaID:    55,
		CreatorID:  "user-1",
		OccurredAt: time.Date(2023, 3, 28, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "9", string(w.msgs[0].Key))
	assert.Equal(t, domain.SessionCreated, string(w.msgs[0].Headers[0].Value))

	var got domain.SessionLifecycleEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev, got)
}

func TestKafkaPublisher_CompensatedKey(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.Publish(context.Background(), domain.SessionLifecycleEvent{Type: domain.SessionCompensated, SubEventID: 101}))
	assert.Equal(t, "subevent-101", string(w.msgs[0].Key))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("no leader")}, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	assert.Error(t, p.Publish(context.Background(), domain.SessionLifecycleEvent{Type: domain.SessionCreated, SessionID: 1}))
}

func TestNewKafkaPublisher_WriterConfig(t *testing.T) {
	p := NewKafkaPublisher([]string{"k1:9092"}, "sessions.lifecycle", slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer p.Close()

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "sessions.lifecycle", w.Topic)
	assert.Equal(t, "k1:9092", w.Addr.String())
	assert.Equal(t, batchTimeout, w.BatchTimeout)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
