package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEntry() domain.LedgerEntry {
	profileID := "p-1"
	return domain.LedgerEntry{
		EntryID:          "e-1",
		CompanyID:        "c-1",
		Sequence:         7,
		EntryType:        domain.EntryProfileUnlock,
		Delta:            -1,
		ResultingBalance: 4,
		Reason:           "Profile unlock",
		ActorID:          "u-1",
		RelatedProfileID: &profileID,
		CreatedAt:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil, "ledger.entries", discardLogger())
	assert.Error(t, err)
}

func TestProducer_Send(t *testing.T) {
	t.Run("keys message by company", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
		p := &Producer{writer: writer, logger: discardLogger()}

		require.NoError(t, p.Send(context.Background(), sampleEntry()))

		msgs := writer.Calls[0].Arguments.Get(1).([]kafka.Message)
		require.Len(t, msgs, 1)
		assert.Equal(t, []byte("c-1"), msgs[0].Key)

		var decoded Event
		require.NoError(t, json.Unmarshal(msgs[0].Value, &decoded))
		assert.Equal(t, LedgerEntryRecorded, decoded.Type)
		assert.Equal(t, "e-1", decoded.Entry.EntryID)
		assert.Equal(t, int64(-1), decoded.Entry.Delta)
	})

	t.Run("write error is returned", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
		p := &Producer{writer: writer, logger: discardLogger()}

		assert.EqualError(t, p.Send(context.Background(), sampleEntry()), "broker down")
	})

	t.Run("serialization error", func(t *testing.T) {
		oldMarshal := jsonMarshal
		jsonMarshal = func(_ any) ([]byte, error) { return nil, errors.New("mock marshal error") }
		defer func() { jsonMarshal = oldMarshal }()

		writer := new(MockKafkaWriter)
		p := &Producer{writer: writer, logger: discardLogger()}

		assert.ErrorContains(t, p.Send(context.Background(), sampleEntry()), "mock marshal error")
		writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})
}

func TestProducer_PublishLedgerEntry(t *testing.T) {
	t.Run("event loop delivers queued entries", func(t *testing.T) {
		delivered := make(chan []kafka.Message, 1)
		writer := new(MockKafkaWriter)
		writer.On("WriteMessages", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { delivered <- args.Get(1).([]kafka.Message) }).
			Return(nil)
		writer.On("Close").Return(nil)

		p := newProducerWithWriter(writer, discardLogger(), 4)
		require.NoError(t, p.PublishLedgerEntry(context.Background(), sampleEntry()))

		select {
		case msgs := <-delivered:
			assert.Equal(t, []byte("c-1"), msgs[0].Key)
		case <-time.After(2 * time.Second):
			t.Fatal("event was not delivered")
		}

		p.Close()
		writer.AssertCalled(t, "Close")
	})

	t.Run("full queue drops the event", func(t *testing.T) {
		p := &Producer{events: make(chan Event, 1), logger: discardLogger()}

		require.NoError(t, p.PublishLedgerEntry(context.Background(), sampleEntry()))
		assert.ErrorIs(t, p.PublishLedgerEntry(context.Background(), sampleEntry()), ErrQueueFull)
		assert.Len(t, p.events, 1)
	})
}
