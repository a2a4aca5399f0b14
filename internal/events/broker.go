package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"word-imposter/internal/db"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
)

const publishTimeout = 5 * time.Second

// envelope is the wire format consumed by the realtime relay.
type envelope struct {
	Type      string  `json:"type"`
	RoomCode  string  `json:"room_code"`
	Timestamp string  `json:"timestamp"`
	Payload   Payload `json:"payload"`
}

// Broker publishes room events to an AMQP fanout exchange and journals them
// into the events table. Both sides are best-effort: a failed publish or
// journal write is logged and never surfaced to the acting participant.
type Broker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	db       *gorm.DB
	log      *slog.Logger
}

// Dial connects to the AMQP broker and declares the fanout exchange. An empty
// URL yields a broker that only journals, which is what dev setups without
// RabbitMQ run with.
func Dial(url, exchange string, conn *gorm.DB, logger *slog.Logger) (*Broker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	broker := &Broker{exchange: exchange, db: conn, log: logger}
	if url == "" {
		return broker, nil
	}

	amqpConn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := amqpConn.Channel()
	if err != nil {
		amqpConn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		amqpConn.Close()
		return nil, err
	}
	broker.conn = amqpConn
	broker.ch = ch
	return broker, nil
}

func (b *Broker) Publish(ctx context.Context, eventType, roomCode string, payload Payload) {
	body, err := json.Marshal(envelope{
		Type:      eventType,
		RoomCode:  roomCode,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		b.log.Warn("event marshal failed", "type", eventType, "room", roomCode, "error", err)
		return
	}

	b.journal(eventType, roomCode, payload)

	if b.ch == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err = b.ch.PublishWithContext(ctx, b.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		b.log.Warn("event publish failed", "type", eventType, "room", roomCode, "error", err)
	}
}

func (b *Broker) journal(eventType, roomCode string, payload Payload) {
	if b.db == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	var roundID *uint
	if payload.RoundID != 0 {
		id := payload.RoundID
		roundID = &id
	}
	record := db.Event{
		RoomCode: roomCode,
		RoundID:  roundID,
		Type:     eventType,
		Payload:  raw,
	}
	if err := b.db.Create(&record).Error; err != nil {
		b.log.Warn("event journal failed", "type", eventType, "room", roomCode, "error", err)
	}
}

func (b *Broker) Close() {
	if b.ch != nil {
		b.ch.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}
