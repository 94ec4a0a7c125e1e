package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer listens to the reservation lifecycle queues and appends each
// event to an audit log file, one line per event. It is the counterpart
// of Publisher and runs as its own process (cmd/consumer).
type Consumer struct {
	url     string
	logPath string
}

// NewConsumer returns a Consumer for the broker at url. logPath names
// the audit log file; when empty it defaults to logs/reservations.log
// relative to the working directory.
func NewConsumer(url, logPath string) *Consumer {
	if logPath == "" {
		logPath = filepath.Join("logs", "reservations.log")
	}
	return &Consumer{url: url, logPath: logPath}
}

// Run connects to the broker and consumes events until ctx is canceled.
// Connection failures back off exponentially up to 30 seconds; a broken
// consume loop reconnects after a short pause. Messages that cannot be
// processed are rejected without requeue so a bad payload cannot wedge
// the queue.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.Printf("consumer: dial broker failed: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		log.Printf("consumer: consume loop ended: %v; reconnecting", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// consume declares both lifecycle queues and processes deliveries until
// the context is canceled or the connection drops.
func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("consumer: set QoS failed: %v", err)
	}

	for _, queueName := range []string{ReservationCreatedQueue, ReservationCanceledQueue} {
		if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", queueName, err)
		}
	}

	created, err := ch.Consume(ReservationCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ReservationCreatedQueue, err)
	}
	canceled, err := ch.Consume(ReservationCanceledQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ReservationCanceledQueue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-created:
			if !ok {
				return errors.New("created deliveries channel closed")
			}
			c.handle(ReservationCreatedQueue, d)
		case d, ok := <-canceled:
			if !ok {
				return errors.New("canceled deliveries channel closed")
			}
			c.handle(ReservationCanceledQueue, d)
		}
	}
}

func (c *Consumer) handle(queueName string, d amqp.Delivery) {
	if err := c.appendLine(queueName, d.Body); err != nil {
		log.Printf("consumer: handle %s message failed: %v", queueName, err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// appendLine decodes one event and appends its audit line to the log
// file, creating the directory and file as needed.
func (c *Consumer) appendLine(queueName string, body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if dir := filepath.Dir(c.logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatAuditLine(queueName, ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatAuditLine renders one event as a single audit log line,
// terminated by a newline. The cancel reason appears only when set.
func FormatAuditLine(queueName string, ev ReservationEvent) string {
	line := fmt.Sprintf("[%s] %s | reservation_id=%d | number=%s | customer=%q | reserved_at=%s | party_size=%d | status=%s",
		ev.OccurredAt, queueName, ev.ReservationID, ev.ReservationNumber, ev.CustomerName, ev.ReservedAt, ev.PartySize, ev.Status)
	if ev.CancelReason != "" {
		line += fmt.Sprintf(" | cancel_reason=%q", ev.CancelReason)
	}
	return line + "\n"
}
