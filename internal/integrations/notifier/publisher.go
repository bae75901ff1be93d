package notifier

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

const defaultPublishTimeout = 5 * time.Second

// Publisher публикует события бронирований в Kafka.
// Публикация не блокирует вызывающего: сбой брокера не отменяет бронирование,
// а только логируется.
type Publisher struct {
	writer  Writer
	topic   string
	log     Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewKafkaPublisher создает публикатор поверх kafka.Writer.
// Ключ сообщения - ID бронирования, поэтому события одного бронирования упорядочены.
func NewKafkaPublisher(brokers []string, topic string, log Logger, m *metrics.Metrics) *Publisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
	return NewPublisher(writer, topic, log, m)
}

// NewPublisher создает публикатор с произвольным writer
func NewPublisher(writer Writer, topic string, log Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		writer:  writer,
		topic:   topic,
		log:     log,
		metrics: m,
		timeout: defaultPublishTimeout,
		now:     time.Now,
	}
}

// BookingCreated публикует событие о новом бронировании
func (p *Publisher) BookingCreated(ctx context.Context, booking *domain.Booking) {
	event := newBookingEvent(uuid.NewString(), EventBookingCreated, booking, p.now())
	p.publish(ctx, event)
}

// StatusChanged публикует событие о смене статуса
func (p *Publisher) StatusChanged(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) {
	event := newBookingEvent(uuid.NewString(), EventBookingStatusChanged, booking, p.now())
	event.PreviousStatus = string(from)
	event.Reason = booking.CancellationReason
	p.publish(ctx, event)
}

func (p *Publisher) publish(ctx context.Context, event BookingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal event %s for booking_id=%d: %v", event.EventType, event.BookingID, err)
		p.metrics.IncEventPublished(event.EventType, "error")
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	// Запрос уже может быть завершён, событие отправляем в своём контексте
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		if err := p.writer.WriteMessages(sendCtx, msg); err != nil {
			p.log.Error("Failed to publish %s for booking_id=%d: %v", event.EventType, event.BookingID, err)
			p.metrics.IncEventPublished(event.EventType, "error")
			return
		}
		p.metrics.IncEventPublished(event.EventType, "ok")
	}()
}

// Close дожидается отправки начатых событий и закрывает writer
func (p *Publisher) Close() error {
	p.wg.Wait()
	return p.writer.Close()
}

// Nop ничего не публикует; используется, когда Kafka выключена
type Nop struct{}

func (Nop) BookingCreated(context.Context, *domain.Booking)                      {}
func (Nop) StatusChanged(context.Context, *domain.Booking, domain.BookingStatus) {}
func (Nop) Close() error                                                         { return nil }
