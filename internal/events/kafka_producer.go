package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/segmentio/kafka-go"
)

// ErrQueueFull is returned when the producer buffer cannot take another event.
var ErrQueueFull = errors.New("kafka producer queue full")

const defaultQueueSize = 1000

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes ledger events to one topic, keyed by company so a
// company's entries stay ordered within a partition.
type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *slog.Logger
	closeChan chan struct{}
	done      chan struct{}
}

var _ portssvc.LedgerEventPublisher = (*Producer)(nil)

func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka producer needs at least one broker")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newProducerWithWriter(writer, logger, defaultQueueSize), nil
}

func newProducerWithWriter(writer KafkaWriter, logger *slog.Logger, queueSize int) *Producer {
	p := &Producer{
		writer:    writer,
		events:    make(chan Event, queueSize),
		logger:    logger.With(slog.String("component", "kafka_producer")),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

// PublishLedgerEntry queues the entry for asynchronous delivery.
func (p *Producer) PublishLedgerEntry(_ context.Context, entry domain.LedgerEntry) error {
	select {
	case p.events <- newEvent(entry):
		return nil
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			slog.String("entry_id", entry.EntryID),
			slog.String("company_id", entry.CompanyID),
		)
		return ErrQueueFull
	}
}

// Send writes the entry synchronously. The outbox worker uses it so a failed
// write is retried by the job queue.
func (p *Producer) Send(ctx context.Context, entry domain.LedgerEntry) error {
	return p.write(ctx, newEvent(entry))
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			if err := p.write(context.Background(), event); err != nil {
				p.logger.Error("Failed to produce event",
					slog.String("error", err.Error()),
					slog.String("entry_id", event.Entry.EntryID),
					slog.String("company_id", event.Entry.CompanyID),
				)
			}
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) write(ctx context.Context, event Event) error {
	value, err := jsonMarshal(event)
	if err != nil {
		return fmt.Errorf("serialize event %s: %w", event.Entry.EntryID, err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Entry.CompanyID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "entry_id", Value: []byte(event.Entry.EntryID)},
		},
	})
}

// Close stops the event loop and closes the writer. Events still queued are dropped.
func (p *Producer) Close() {
	close(p.closeChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", slog.String("error", err.Error()))
	}
}
