package models

import (
	"relief-app/idgen"
	"time"

	"gorm.io/gorm"
)

// Domain event types published to the change notifier.
const (
	EventItemCreated      = "item.created"
	EventItemUpdated      = "item.updated"
	EventItemDeleted      = "item.deleted"
	EventStockChanged     = "stock.changed"
	EventStockLowAlert    = "stock.lowAlert"
	EventTrxCreated       = "transaction.created"
	EventTrxStatusChanged = "transaction.statusChanged"
)

// OutboxEvent is written in the same database transaction as the mutation it
// describes, then drained after commit. A failed send leaves the row unsent;
// delivery never affects ledger state.
type OutboxEvent struct {
	ID        int64  `json:"ID" gorm:"primaryKey"`
	EventType string `json:"event_type" gorm:"index;not null"`
	Payload   string `json:"payload"`
	CreatedAt time.Time
	SentAt    *time.Time `json:"sent_at" gorm:"index"`
}

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == 0 {
		e.ID = idgen.GenerateID()
	}
	return nil
}
