package services

import (
	"encoding/json"
	"fmt"
	"log"
	"relief-app/config"
	"relief-app/models"
	"time"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Event is the unit handed to a change notifier sink.
type Event struct {
	ID        int64
	EventType string
	Payload   string
	CreatedAt time.Time
}

// Notifier is the fan-out boundary. Delivery is fire-and-forget from the
// engine's point of view: a failed publish never touches ledger state.
type Notifier interface {
	Publish(event Event) error
}

// writeOutbox stages a domain event inside the same database transaction as
// the mutation it describes. The payload is a JSON snapshot of the entity.
func writeOutbox(tx *gorm.DB, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&models.OutboxEvent{
		EventType: eventType,
		Payload:   string(body),
	}).Error
}

// OutboxDispatcher drains committed events to a notifier sink.
type OutboxDispatcher struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewOutboxDispatcher(db *gorm.DB, notifier Notifier) *OutboxDispatcher {
	return &OutboxDispatcher{DB: db, Notifier: notifier}
}

// DispatchPending publishes unsent events in commit order and marks them sent.
// A publish failure leaves the row unsent for the next drain.
func (d *OutboxDispatcher) DispatchPending() (int, error) {
	var events []models.OutboxEvent
	if err := d.DB.Where("sent_at IS NULL").Order("id asc").Find(&events).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range events {
		err := d.Notifier.Publish(Event{
			ID:        ev.ID,
			EventType: ev.EventType,
			Payload:   ev.Payload,
			CreatedAt: ev.CreatedAt,
		})
		if err != nil {
			log.Printf("WARNING: failed to publish event %d (%s): %v", ev.ID, ev.EventType, err)
			continue
		}
		now := time.Now()
		if err := d.DB.Model(&models.OutboxEvent{}).Where("id = ?", ev.ID).
			Update("sent_at", now).Error; err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// Run drains the outbox on an interval until stop is closed.
func (d *OutboxDispatcher) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := d.DispatchPending(); err != nil {
				log.Printf("WARNING: outbox dispatch: %v", err)
			}
		case <-stop:
			return
		}
	}
}

// LogNotifier writes events to the application log. Default sink.
type LogNotifier struct{}

func (LogNotifier) Publish(event Event) error {
	log.Printf("event %s: %s", event.EventType, event.Payload)
	return nil
}

// EmailNotifier mails low-stock alerts to the configured ops address and
// ignores every other event type.
type EmailNotifier struct {
	Dialer *gomail.Dialer
}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{
		Dialer: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword),
	}
}

func (n *EmailNotifier) Publish(event Event) error {
	if event.EventType != models.EventStockLowAlert || config.AlertMailTo == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.MailFrom)
	m.SetHeader("To", config.AlertMailTo)
	m.SetHeader("Subject", "Stock alert")
	m.SetBody("text/plain", fmt.Sprintf("Low stock alert:\n\n%s\n", event.Payload))

	return n.Dialer.DialAndSend(m)
}
