package database

import (
	"log"
	"relief-app/models"

	"gorm.io/gorm"
)

// RunSeeders inserts baseline master data. Safe to run on every boot.
func RunSeeders(db *gorm.DB) {
	warehouses := []models.Warehouse{
		{WhsCode: "WH-CENTRAL", WhsName: "Central Relief Warehouse"},
		{WhsCode: "WH-NORTH", WhsName: "Northern Field Depot"},
		{WhsCode: "WH-SOUTH", WhsName: "Southern Field Depot"},
	}

	for _, wh := range warehouses {
		var count int64
		db.Model(&models.Warehouse{}).Where("whs_code = ?", wh.WhsCode).Count(&count)
		if count == 0 {
			if err := db.Create(&wh).Error; err != nil {
				log.Printf("WARNING: failed to seed warehouse %s: %v", wh.WhsCode, err)
			}
		}
	}
}
