package services

import (
	"errors"
	"fmt"
	"relief-app/idgen"
	"relief-app/models"
	"relief-app/types"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"gorm.io/gorm"
)

var validate = validator.New()

// allowedTransitions is the closed state machine table. Anything not listed
// here is rejected, completed and cancelled are terminal.
var allowedTransitions = map[string]map[string]bool{
	models.StatusPending: {
		models.StatusApproved:  true,
		models.StatusCompleted: true,
		models.StatusCancelled: true,
	},
	models.StatusApproved: {
		models.StatusCompleted: true,
		models.StatusCancelled: true,
	},
}

// requiresApproval lists types that may not complete straight from pending.
var requiresApproval = map[string]bool{
	models.TrxOutbound: true,
	models.TrxTransfer: true,
}

// reservesStock lists types that place a hold on the source item at creation.
var reservesStock = map[string]bool{
	models.TrxOutbound: true,
	models.TrxTransfer: true,
}

// TransactionService drives the transaction workflow and is the only writer
// of transaction rows. Ledger mutations happen on completion or cancellation,
// inside the same database transaction as the status change.
type TransactionService struct {
	DB *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{DB: db}
}

type CreateItemInput struct {
	ItemCode     string     `json:"item_code" validate:"required"`
	ItemName     string     `json:"item_name" validate:"required"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory"`
	Description  string     `json:"description"`
	Uom          string     `json:"uom" validate:"required"`
	QtyCurrent   int        `json:"qty_current"`
	QtyMinimum   int        `json:"qty_minimum"`
	QtyMaximum   int        `json:"qty_maximum"`
	WhsCode      string     `json:"whs_code" validate:"required"`
	SubLocation  string     `json:"sub_location"`
	DepartmentID string     `json:"department_id"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Actor        string     `json:"actor"`
}

func (s *TransactionService) CreateItem(input CreateItemInput) (*models.InventoryItem, error) {
	if err := validate.Struct(input); err != nil {
		return nil, validationError("", "invalid item payload: %v", err)
	}
	if input.Category == "" {
		input.Category = models.CategoryOther
	}
	if !models.ItemCategories[input.Category] {
		return nil, validationError("category", "unknown category %q", input.Category)
	}
	if input.QtyCurrent < 0 || input.QtyMinimum < 0 || input.QtyMaximum < 0 {
		return nil, validationError("quantity", "quantities must not be negative")
	}
	if input.QtyMaximum > 0 && input.QtyMaximum < input.QtyMinimum {
		return nil, validationError("qty_maximum", "maximum %d below minimum %d", input.QtyMaximum, input.QtyMinimum)
	}

	item := models.InventoryItem{
		ItemCode:     input.ItemCode,
		ItemName:     input.ItemName,
		Category:     input.Category,
		Subcategory:  input.Subcategory,
		Description:  input.Description,
		Uom:          input.Uom,
		QtyCurrent:   input.QtyCurrent,
		QtyMinimum:   input.QtyMinimum,
		QtyMaximum:   input.QtyMaximum,
		WhsCode:      input.WhsCode,
		SubLocation:  input.SubLocation,
		DepartmentID: input.DepartmentID,
		Status:       models.ItemStatusAvailable,
		ExpiryDate:   input.ExpiryDate,
		Version:      1,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.InventoryItem
		if err := tx.Unscoped().First(&existing, "item_code = ?", input.ItemCode).Error; err == nil {
			return validationError("item_code", "item code %q already exists", input.ItemCode)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if err := writeOutbox(tx, models.EventItemCreated, item); err != nil {
			return err
		}
		return writeLowStockAlert(tx, &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type UpdateItemInput struct {
	ItemName     *string    `json:"item_name"`
	Category     *string    `json:"category"`
	Subcategory  *string    `json:"subcategory"`
	Description  *string    `json:"description"`
	QtyMinimum   *int       `json:"qty_minimum"`
	QtyMaximum   *int       `json:"qty_maximum"`
	WhsCode      *string    `json:"whs_code"`
	SubLocation  *string    `json:"sub_location"`
	DepartmentID *string    `json:"department_id"`
	Status       *string    `json:"status"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Actor        string     `json:"actor"`
}

// UpdateItem changes descriptive fields only. Quantities are ledger territory.
func (s *TransactionService) UpdateItem(itemID types.SnowflakeID, input UpdateItemInput) (*models.InventoryItem, error) {
	var item models.InventoryItem

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("item_id", "item %s not found", itemID)
			}
			return err
		}

		if input.ItemName != nil {
			item.ItemName = *input.ItemName
		}
		if input.Category != nil {
			if !models.ItemCategories[*input.Category] {
				return validationError("category", "unknown category %q", *input.Category)
			}
			item.Category = *input.Category
		}
		if input.Subcategory != nil {
			item.Subcategory = *input.Subcategory
		}
		if input.Description != nil {
			item.Description = *input.Description
		}
		if input.QtyMinimum != nil {
			if *input.QtyMinimum < 0 {
				return validationError("qty_minimum", "minimum must not be negative")
			}
			item.QtyMinimum = *input.QtyMinimum
		}
		if input.QtyMaximum != nil {
			if *input.QtyMaximum < 0 {
				return validationError("qty_maximum", "maximum must not be negative")
			}
			item.QtyMaximum = *input.QtyMaximum
		}
		if item.QtyMaximum > 0 && item.QtyMaximum < item.QtyMinimum {
			return validationError("qty_maximum", "maximum %d below minimum %d", item.QtyMaximum, item.QtyMinimum)
		}
		if input.WhsCode != nil {
			item.WhsCode = *input.WhsCode
		}
		if input.SubLocation != nil {
			item.SubLocation = *input.SubLocation
		}
		if input.DepartmentID != nil {
			item.DepartmentID = *input.DepartmentID
		}
		if input.Status != nil {
			if !models.ItemStatuses[*input.Status] {
				return validationError("status", "unknown status %q", *input.Status)
			}
			item.Status = *input.Status
		}
		if input.ExpiryDate != nil {
			item.ExpiryDate = input.ExpiryDate
		}

		if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"item_name":     item.ItemName,
				"category":      item.Category,
				"subcategory":   item.Subcategory,
				"description":   item.Description,
				"qty_minimum":   item.QtyMinimum,
				"qty_maximum":   item.QtyMaximum,
				"whs_code":      item.WhsCode,
				"sub_location":  item.SubLocation,
				"department_id": item.DepartmentID,
				"status":        item.Status,
				"expiry_date":   item.ExpiryDate,
				"updated_at":    time.Now(),
			}).Error; err != nil {
			return err
		}

		return writeOutbox(tx, models.EventItemUpdated, item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem archives an item. Hard deletion is an administrative action
// outside the engine.
func (s *TransactionService) DeleteItem(itemID types.SnowflakeID, actor string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("item_id", "item %s not found", itemID)
			}
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return writeOutbox(tx, models.EventItemDeleted, item)
	})
}

// AdjustStock sets an item's current quantity to newCurrent and records the
// delta as a completed adjustment transaction with a full timeline.
func (s *TransactionService) AdjustStock(itemID types.SnowflakeID, newCurrent int, reason, actor string) (*models.InventoryItem, error) {
	if newCurrent < 0 {
		return nil, newError(KindInvalidQuantity, "qty_current", "new quantity must not be negative, got %d", newCurrent)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, validationError("reason", "adjustment reason is required")
	}

	var result *models.InventoryItem

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("item_id", "item %s not found", itemID)
			}
			return err
		}

		delta := newCurrent - item.QtyCurrent
		if delta == 0 {
			result = &item
			return nil
		}

		qty := delta
		if qty < 0 {
			qty = -qty
		}

		now := time.Now()
		trx := models.StockTransaction{
			RefNo:    newRefNo(models.TrxAdjustment),
			Type:     models.TrxAdjustment,
			ItemID:   item.ID,
			Quantity: qty,
			QtyDelta: delta,
			Uom:      item.Uom,
			Status:   models.StatusPending,
			Reason:   reason,
			Version:  1,
		}
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}
		if err := appendTimeline(tx, trx.ID, models.StatusPending, actor, reason); err != nil {
			return err
		}
		if err := writeOutbox(tx, models.EventTrxCreated, trx); err != nil {
			return err
		}

		ledger := NewLedgerService(tx)
		updated, err := ledger.AdjustCurrent(item.ID, delta, reason)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.StockTransaction{}).
			Where("id = ? AND version = ?", trx.ID, trx.Version).
			Updates(map[string]interface{}{
				"status":         models.StatusCompleted,
				"completed_date": now,
				"version":        trx.Version + 1,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}
		trx.Status = models.StatusCompleted
		trx.CompletedDate = &now

		if err := appendTimeline(tx, trx.ID, models.StatusCompleted, actor, ""); err != nil {
			return err
		}
		if err := writeOutbox(tx, models.EventTrxStatusChanged, trx); err != nil {
			return err
		}
		if err := writeOutbox(tx, models.EventStockChanged, updated); err != nil {
			return err
		}
		if err := writeLowStockAlert(tx, updated); err != nil {
			return err
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type CreateTransactionInput struct {
	Type           string            `json:"type" validate:"required"`
	ItemID         types.SnowflakeID `json:"item_id" validate:"required"`
	DestItemID     types.SnowflakeID `json:"dest_item_id"`
	Quantity       int               `json:"quantity" validate:"required"`
	Uom            string            `json:"uom" validate:"required"`
	FromLocation   string            `json:"from_location"`
	FromDepartment string            `json:"from_department"`
	ToLocation     string            `json:"to_location"`
	ToDepartment   string            `json:"to_department"`
	Reason         string            `json:"reason"`
	ScheduledDate  *time.Time        `json:"scheduled_date"`
	Actor          string            `json:"actor"`
}

// CreateTransaction validates the intent and persists it in pending state.
// Outbound and transfer reserve their quantity first, so a transaction that
// could never be honored is never created.
func (s *TransactionService) CreateTransaction(input CreateTransactionInput) (*models.StockTransaction, error) {
	if err := validate.Struct(input); err != nil {
		return nil, validationError("", "invalid transaction payload: %v", err)
	}
	if !models.TransactionTypes[input.Type] {
		return nil, validationError("type", "unknown transaction type %q", input.Type)
	}
	if input.Quantity <= 0 {
		return nil, newError(KindInvalidQuantity, "quantity", "quantity must be positive, got %d", input.Quantity)
	}

	switch input.Type {
	case models.TrxInbound:
		if input.FromLocation != "" || input.FromDepartment != "" {
			return nil, validationError("from_location", "inbound transactions have no source endpoint")
		}
	case models.TrxOutbound:
		if input.ToLocation != "" || input.ToDepartment != "" {
			return nil, validationError("to_location", "outbound transactions have no destination endpoint")
		}
	case models.TrxTransfer:
		if input.DestItemID == 0 {
			return nil, validationError("dest_item_id", "transfer requires a destination item")
		}
		if input.DestItemID == input.ItemID {
			return nil, validationError("dest_item_id", "transfer source and destination must differ")
		}
		if input.FromLocation == "" || input.ToLocation == "" {
			return nil, validationError("to_location", "transfer requires both endpoints")
		}
	}

	var trx models.StockTransaction

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, "id = ?", input.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("item_id", "item %s not found", input.ItemID)
			}
			return err
		}
		if item.Uom != input.Uom {
			return validationError("uom", "unit %q does not match item unit %q", input.Uom, item.Uom)
		}

		if input.Type == models.TrxTransfer {
			var dest models.InventoryItem
			if err := tx.First(&dest, "id = ?", input.DestItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundError("dest_item_id", "item %s not found", input.DestItemID)
				}
				return err
			}
			if dest.Uom != item.Uom {
				return validationError("uom", "destination unit %q does not match %q", dest.Uom, item.Uom)
			}
		}

		if reservesStock[input.Type] {
			if _, err := NewLedgerService(tx).Reserve(item.ID, input.Quantity); err != nil {
				return err
			}
		}

		delta := input.Quantity
		if input.Type == models.TrxDamaged || input.Type == models.TrxExpired {
			delta = -input.Quantity
		}

		trx = models.StockTransaction{
			RefNo:          newRefNo(input.Type),
			Type:           input.Type,
			ItemID:         input.ItemID,
			DestItemID:     input.DestItemID,
			Quantity:       input.Quantity,
			QtyDelta:       delta,
			Uom:            input.Uom,
			FromLocation:   input.FromLocation,
			FromDepartment: input.FromDepartment,
			ToLocation:     input.ToLocation,
			ToDepartment:   input.ToDepartment,
			Status:         models.StatusPending,
			Reason:         input.Reason,
			ScheduledDate:  input.ScheduledDate,
			Version:        1,
		}
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}
		if err := appendTimeline(tx, trx.ID, models.StatusPending, input.Actor, input.Reason); err != nil {
			return err
		}
		return writeOutbox(tx, models.EventTrxCreated, trx)
	})
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// TransitionTransaction moves a transaction through the state machine.
// Concurrent attempts serialize on the row version, first writer wins.
func (s *TransactionService) TransitionTransaction(trxID types.SnowflakeID, newStatus, actor, comment string) (*models.StockTransaction, error) {
	if newStatus != models.StatusApproved && newStatus != models.StatusCompleted && newStatus != models.StatusCancelled {
		return nil, validationError("status", "unknown target status %q", newStatus)
	}

	var trx models.StockTransaction
	if err := s.DB.First(&trx, "id = ?", trxID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("transaction_id", "transaction %s not found", trxID)
		}
		return nil, err
	}

	if !allowedTransitions[trx.Status][newStatus] {
		return nil, newError(KindInvalidStateTransition, "status",
			"cannot transition %s from %s to %s", trx.RefNo, trx.Status, newStatus)
	}
	if newStatus == models.StatusCompleted && trx.Status == models.StatusPending && requiresApproval[trx.Type] {
		return nil, newError(KindInvalidStateTransition, "status",
			"%s transactions require approval before completion", trx.Type)
	}
	if newStatus == models.StatusCancelled && strings.TrimSpace(comment) == "" {
		return nil, newError(KindMissingReason, "comment", "cancellation requires a reason")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":     newStatus,
			"version":    trx.Version + 1,
			"updated_at": now,
		}
		if newStatus == models.StatusCompleted {
			updates["completed_date"] = now
		}

		// Claim the transition before touching the ledger. A lost race rolls
		// the whole block back, so a mutation is never applied twice.
		res := tx.Model(&models.StockTransaction{}).
			Where("id = ? AND version = ?", trx.ID, trx.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.StockTransaction
			if err := tx.First(&current, "id = ?", trx.ID).Error; err != nil {
				return err
			}
			if current.Status != trx.Status {
				return newError(KindInvalidStateTransition, "status",
					"transaction %s already moved to %s", trx.RefNo, current.Status)
			}
			return newError(KindConcurrencyConflict, "transaction_id",
				"transaction %s was modified concurrently", trx.RefNo)
		}

		trx.Status = newStatus
		trx.Version++
		if newStatus == models.StatusCompleted {
			trx.CompletedDate = &now
		}

		ledger := NewLedgerService(tx)

		switch newStatus {
		case models.StatusCompleted:
			if err := s.applyCompletion(tx, ledger, &trx); err != nil {
				return err
			}
		case models.StatusCancelled:
			if reservesStock[trx.Type] {
				item, err := ledger.Release(trx.ItemID, trx.Quantity)
				if err != nil {
					return err
				}
				if err := writeOutbox(tx, models.EventStockChanged, item); err != nil {
					return err
				}
			}
		}

		if err := appendTimeline(tx, trx.ID, newStatus, actor, comment); err != nil {
			return err
		}
		return writeOutbox(tx, models.EventTrxStatusChanged, trx)
	})
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// applyCompletion performs the ledger mutation for a completing transaction.
func (s *TransactionService) applyCompletion(tx *gorm.DB, ledger *LedgerService, trx *models.StockTransaction) error {
	switch trx.Type {
	case models.TrxInbound:
		item, err := ledger.AdjustCurrent(trx.ItemID, trx.Quantity, trx.Reason)
		if err != nil {
			return err
		}
		return emitStockEvents(tx, item)

	case models.TrxOutbound:
		item, err := ledger.Consume(trx.ItemID, trx.Quantity)
		if err != nil {
			return err
		}
		return emitStockEvents(tx, item)

	case models.TrxTransfer:
		if err := ledger.TransferStock(trx.ItemID, trx.DestItemID, trx.Quantity, trx.Reason); err != nil {
			return err
		}
		for _, id := range []types.SnowflakeID{trx.ItemID, trx.DestItemID} {
			var item models.InventoryItem
			if err := tx.First(&item, "id = ?", id).Error; err != nil {
				return err
			}
			if err := emitStockEvents(tx, &item); err != nil {
				return err
			}
		}
		return nil

	case models.TrxAdjustment, models.TrxDamaged, models.TrxExpired:
		item, err := ledger.AdjustCurrent(trx.ItemID, trx.QtyDelta, trx.Reason)
		if err != nil {
			return err
		}
		return emitStockEvents(tx, item)
	}
	return validationError("type", "unknown transaction type %q", trx.Type)
}

func emitStockEvents(tx *gorm.DB, item *models.InventoryItem) error {
	if err := writeOutbox(tx, models.EventStockChanged, item); err != nil {
		return err
	}
	return writeLowStockAlert(tx, item)
}

// writeLowStockAlert stages a stock.lowAlert event when the item sits at or
// below its minimum.
func writeLowStockAlert(tx *gorm.DB, item *models.InventoryItem) error {
	if StockStatusOf(item) == StockAdequate {
		return nil
	}
	return writeOutbox(tx, models.EventStockLowAlert, item)
}

func appendTimeline(tx *gorm.DB, trxID types.SnowflakeID, status, actor, comment string) error {
	return tx.Create(&models.TransactionTimeline{
		TransactionID: trxID,
		Status:        status,
		Actor:         actor,
		Comment:       comment,
	}).Error
}

var refPrefixes = map[string]string{
	models.TrxInbound:    "INB",
	models.TrxOutbound:   "OUT",
	models.TrxTransfer:   "TRF",
	models.TrxAdjustment: "ADJ",
	models.TrxDamaged:    "DMG",
	models.TrxExpired:    "EXP",
}

func newRefNo(trxType string) string {
	prefix, ok := refPrefixes[trxType]
	if !ok {
		prefix = "TRX"
	}
	return fmt.Sprintf("%s-%d", prefix, idgen.GenerateID())
}
