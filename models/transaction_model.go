package models

import (
	"relief-app/idgen"
	"relief-app/types"
	"time"

	"gorm.io/gorm"
)

// Transaction types. Fixed at creation.
const (
	TrxInbound    = "inbound"
	TrxOutbound   = "outbound"
	TrxTransfer   = "transfer"
	TrxAdjustment = "adjustment"
	TrxDamaged    = "damaged"
	TrxExpired    = "expired"
)

// Transaction statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var TransactionTypes = map[string]bool{
	TrxInbound:    true,
	TrxOutbound:   true,
	TrxTransfer:   true,
	TrxAdjustment: true,
	TrxDamaged:    true,
	TrxExpired:    true,
}

// StockTransaction is one stock-affecting event. Status moves through the
// workflow state machine; the row is never hard-deleted once created.
type StockTransaction struct {
	ID             types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	RefNo          string            `json:"ref_no" gorm:"unique;not null"`
	Type           string            `json:"type" gorm:"not null"`
	ItemID         types.SnowflakeID `json:"item_id" gorm:"not null"`
	DestItemID     types.SnowflakeID `json:"dest_item_id" gorm:"default:null"`
	Quantity       int               `json:"quantity" gorm:"not null"`
	QtyDelta       int               `json:"qty_delta"`
	Uom            string            `json:"uom"`
	FromLocation   string            `json:"from_location"`
	FromDepartment string            `json:"from_department"`
	ToLocation     string            `json:"to_location"`
	ToDepartment   string            `json:"to_department"`
	Status         string            `json:"status" gorm:"default:'pending'"`
	Reason         string            `json:"reason"`
	ScheduledDate  *time.Time        `json:"scheduled_date"`
	CompletedDate  *time.Time        `json:"completed_date"`
	Version        int               `json:"version" gorm:"default:1"`
	CreatedAt      time.Time
	CreatedBy      int
	UpdatedAt      time.Time
	UpdatedBy      int
	DeletedAt      gorm.DeletedAt `gorm:"index"`
	DeletedBy      int

	Timeline []TransactionTimeline `gorm:"foreignKey:TransactionID;references:ID" json:"timeline"`
}

func (t *StockTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == 0 {
		t.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

// IsTerminal reports whether no further transition is permitted.
func (t *StockTransaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}

// IsOverdue is derived at read time, never stored.
func (t *StockTransaction) IsOverdue(now time.Time) bool {
	if t.ScheduledDate == nil || t.Status == StatusCompleted || t.Status == StatusCancelled {
		return false
	}
	return now.After(*t.ScheduledDate)
}

// TransactionTimeline is the append-only audit trail of a transaction.
// Rows are inserted once per status transition and never updated.
type TransactionTimeline struct {
	ID            int64             `json:"ID" gorm:"primaryKey"`
	TransactionID types.SnowflakeID `json:"transaction_id" gorm:"index;not null"`
	Status        string            `json:"status"`
	Actor         string            `json:"actor"`
	Comment       string            `json:"comment"`
	CreatedAt     time.Time
}

func (e *TransactionTimeline) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == 0 {
		e.ID = idgen.GenerateID()
	}
	return nil
}
