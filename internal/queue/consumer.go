package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// handlers maps each consumed queue to the function that turns one
// message body into a notification log line.
var handlers = map[string]func([]byte) error{
	BookingConfirmedQueue: handleBookingConfirmed,
	WaitlistNotifiedQueue: handleWaitlistNotified,
}

// StartConsumer connects to RabbitMQ, declares the booking.confirmed
// and waitlist.notified queues (durable), and starts consuming both.
// Booking confirmations are appended to logs/booking.log and waitlist
// promotions to logs/notifications.log, each as a single-line,
// human-friendly record. The function runs a reconnect loop and never
// returns; processing errors are logged and the offending message is
// rejected without requeue so the server keeps operating.
func StartConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("consumer: set QoS failed: %v", err)
	}

	type delivery struct {
		queueName string
		d         amqp.Delivery
	}
	merged := make(chan delivery)
	for name := range handlers {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go func(name string, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				merged <- delivery{queueName: name, d: d}
			}
		}(name, msgs)
	}

	closed := make(chan *amqp.Error, 1)
	ch.NotifyClose(closed)

	for {
		select {
		case dv := <-merged:
			if err := handlers[dv.queueName](dv.d.Body); err != nil {
				log.Printf("consumer: handle %s message failed: %v", dv.queueName, err)
				_ = dv.d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = dv.d.Ack(false)
		case err := <-closed:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return errors.New("channel closed")
		}
	}
}

func handleBookingConfirmed(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	seats := "[]"
	if len(ev.SeatLabels) > 0 {
		seats = fmt.Sprintf("[%s]", strings.Join(ev.SeatLabels, ","))
	}
	line := fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | user_id=%d | show_id=%d | total=%d cents | seats=%s\n",
		ev.BookedAt, ev.BookingID, ev.UserID, ev.ShowID, ev.TotalAmountCents, seats)
	return appendLog("booking.log", line)
}

func handleWaitlistNotified(body []byte) error {
	var ev WaitlistNotifiedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Seats available | entry_id=%d | user_id=%d | show_id=%d | requested_seats=%d | book_before=%s\n",
		ev.NotifiedAt, ev.EntryID, ev.UserID, ev.ShowID, ev.RequestedSeats, ev.ExpiresAt)
	return appendLog("notifications.log", line)
}

func appendLog(name, line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
