package models

import (
	"relief-app/idgen"
	"relief-app/types"
	"time"

	"gorm.io/gorm"
)

// Item categories for relief supplies.
const (
	CategoryMedical         = "medical"
	CategoryRescueEquipment = "rescue-equipment"
	CategoryFood            = "food"
	CategoryWater           = "water"
	CategoryShelter         = "shelter"
	CategoryCommunication   = "communication"
	CategoryTransport       = "transport"
	CategoryTools           = "tools"
	CategoryClothing        = "clothing"
	CategoryOther           = "other"
)

// Item status flags.
const (
	ItemStatusAvailable        = "available"
	ItemStatusReserved         = "reserved"
	ItemStatusDamaged          = "damaged"
	ItemStatusExpired          = "expired"
	ItemStatusUnderMaintenance = "under-maintenance"
)

var ItemCategories = map[string]bool{
	CategoryMedical:         true,
	CategoryRescueEquipment: true,
	CategoryFood:            true,
	CategoryWater:           true,
	CategoryShelter:         true,
	CategoryCommunication:   true,
	CategoryTransport:       true,
	CategoryTools:           true,
	CategoryClothing:        true,
	CategoryOther:           true,
}

var ItemStatuses = map[string]bool{
	ItemStatusAvailable:        true,
	ItemStatusReserved:         true,
	ItemStatusDamaged:          true,
	ItemStatusExpired:          true,
	ItemStatusUnderMaintenance: true,
}

// InventoryItem is the authoritative quantity record for one stock item.
// Quantity columns are mutated only through the ledger service so the
// reserved <= current and current >= 0 invariants hold under concurrency.
type InventoryItem struct {
	ID           types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	ItemCode     string            `json:"item_code" gorm:"unique;not null" validate:"required"`
	ItemName     string            `json:"item_name" validate:"required"`
	Category     string            `json:"category" gorm:"default:'other'"`
	Subcategory  string            `json:"subcategory"`
	Description  string            `json:"description"`
	Uom          string            `json:"uom" validate:"required"`
	QtyCurrent   int               `json:"qty_current" gorm:"default:0"`
	QtyReserved  int               `json:"qty_reserved" gorm:"default:0"`
	QtyMinimum   int               `json:"qty_minimum" gorm:"default:0"`
	QtyMaximum   int               `json:"qty_maximum" gorm:"default:0"`
	WhsCode      string            `json:"whs_code" validate:"required"`
	SubLocation  string            `json:"sub_location"`
	DepartmentID string            `json:"department_id"`
	Status       string            `json:"status" gorm:"default:'available'"`
	ExpiryDate   *time.Time        `json:"expiry_date"`
	Version      int               `json:"version" gorm:"default:1"`
	CreatedAt    time.Time
	CreatedBy    int
	UpdatedAt    time.Time
	UpdatedBy    int
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	DeletedBy    int
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == 0 {
		i.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

// QtyAvailable is derived, never stored.
func (i *InventoryItem) QtyAvailable() int {
	return i.QtyCurrent - i.QtyReserved
}
