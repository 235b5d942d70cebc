package services

import (
	"errors"
	"log"
	"relief-app/models"
	"relief-app/types"
	"time"

	"gorm.io/gorm"
)

// LedgerService owns every quantity mutation. Writes go through a
// compare-and-swap on the item's version column so two concurrent callers can
// never both apply a mutation computed from the same snapshot. Contention is
// per item, one item's retries never block another item.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

const (
	maxWriteAttempts = 3
	initialBackoff   = 10 * time.Millisecond
)

// mutate runs fn against a fresh snapshot and writes it back only if the
// version is unchanged. Lost races are retried with backoff up to
// maxWriteAttempts, then surfaced as a ConcurrencyConflict.
func (s *LedgerService) mutate(itemID types.SnowflakeID, fn func(item *models.InventoryItem) *Error) (*models.InventoryItem, error) {
	backoff := initialBackoff

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		var item models.InventoryItem
		if err := s.DB.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFoundError("item_id", "item %s not found", itemID)
			}
			return nil, err
		}

		if ferr := fn(&item); ferr != nil {
			return nil, ferr
		}

		res := s.DB.Model(&models.InventoryItem{}).
			Where("id = ? AND version = ?", item.ID, item.Version).
			Updates(map[string]interface{}{
				"qty_current":  item.QtyCurrent,
				"qty_reserved": item.QtyReserved,
				"version":      item.Version + 1,
				"updated_at":   time.Now(),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			item.Version++
			return &item, nil
		}

		// Someone else won the version race, reread and retry.
		time.Sleep(backoff)
		backoff *= 2
	}

	return nil, newError(KindConcurrencyConflict, "item_id",
		"item %s kept changing after %d attempts", itemID, maxWriteAttempts)
}

// AdjustCurrent applies current += delta. The maximum quantity is a soft
// bound: a surge delivery may exceed it, so it is logged, never rejected.
func (s *LedgerService) AdjustCurrent(itemID types.SnowflakeID, delta int, reason string) (*models.InventoryItem, error) {
	item, err := s.mutate(itemID, func(item *models.InventoryItem) *Error {
		next := item.QtyCurrent + delta
		if next < 0 {
			return newError(KindInvalidQuantity, "qty_current",
				"adjustment of %d would drop current below zero (current %d)", delta, item.QtyCurrent)
		}
		if next < item.QtyReserved {
			return newError(KindInsufficientStock, "qty_current",
				"adjustment of %d would drop current below reserved %d", delta, item.QtyReserved)
		}
		item.QtyCurrent = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if item.QtyMaximum > 0 && item.QtyCurrent > item.QtyMaximum {
		log.Printf("WARNING: item %s current %d exceeds maximum %d (%s)",
			item.ItemCode, item.QtyCurrent, item.QtyMaximum, reason)
	}

	return item, nil
}

// Reserve places a hold on available stock.
func (s *LedgerService) Reserve(itemID types.SnowflakeID, amount int) (*models.InventoryItem, error) {
	if amount <= 0 {
		return nil, newError(KindInvalidQuantity, "quantity", "reserve amount must be positive, got %d", amount)
	}
	return s.mutate(itemID, func(item *models.InventoryItem) *Error {
		if item.QtyAvailable() < amount {
			return newError(KindInsufficientStock, "quantity",
				"cannot reserve %d, only %d available", amount, item.QtyAvailable())
		}
		item.QtyReserved += amount
		return nil
	})
}

// Release returns a previously reserved amount to availability.
func (s *LedgerService) Release(itemID types.SnowflakeID, amount int) (*models.InventoryItem, error) {
	if amount <= 0 {
		return nil, newError(KindInvalidQuantity, "quantity", "release amount must be positive, got %d", amount)
	}
	return s.mutate(itemID, func(item *models.InventoryItem) *Error {
		if amount > item.QtyReserved {
			return newError(KindInvalidQuantity, "quantity",
				"cannot release %d, only %d reserved", amount, item.QtyReserved)
		}
		item.QtyReserved -= amount
		return nil
	})
}

// Consume removes reserved stock for good: current and reserved both drop by
// amount in one atomic step.
func (s *LedgerService) Consume(itemID types.SnowflakeID, amount int) (*models.InventoryItem, error) {
	if amount <= 0 {
		return nil, newError(KindInvalidQuantity, "quantity", "consume amount must be positive, got %d", amount)
	}
	return s.mutate(itemID, func(item *models.InventoryItem) *Error {
		if amount > item.QtyReserved {
			return newError(KindInvalidQuantity, "quantity",
				"cannot consume %d, only %d reserved", amount, item.QtyReserved)
		}
		item.QtyCurrent -= amount
		item.QtyReserved -= amount
		return nil
	})
}

// restoreReservation undoes a Consume: puts the quantity back on hand and
// re-establishes the hold. Used only to compensate a failed transfer leg.
func (s *LedgerService) restoreReservation(itemID types.SnowflakeID, amount int) (*models.InventoryItem, error) {
	return s.mutate(itemID, func(item *models.InventoryItem) *Error {
		item.QtyCurrent += amount
		item.QtyReserved += amount
		return nil
	})
}

// TransferStock consumes the reserved quantity at the source item and adds it
// to the destination item. If the destination step fails the source consume is
// reversed, and the failure is surfaced as a PartialFailure either way so the
// anomaly stays auditable.
func (s *LedgerService) TransferStock(fromID, toID types.SnowflakeID, quantity int, reason string) error {
	if _, err := s.Consume(fromID, quantity); err != nil {
		return err
	}

	if _, err := s.AdjustCurrent(toID, quantity, reason); err != nil {
		log.Printf("ERROR: transfer %s -> %s failed at destination, compensating source: %v", fromID, toID, err)
		if _, rerr := s.restoreReservation(fromID, quantity); rerr != nil {
			log.Printf("ERROR: compensation for item %s failed: %v", fromID, rerr)
			return &Error{Kind: KindPartialFailure, Field: "dest_item_id",
				Message: "destination write failed and source compensation also failed", Cause: err}
		}
		return &Error{Kind: KindPartialFailure, Field: "dest_item_id",
			Message: "destination write failed, source restored", Cause: err}
	}

	return nil
}
