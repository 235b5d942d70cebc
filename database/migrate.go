package database

import (
	"relief-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Warehouse{},
		&models.InventoryItem{},
		&models.StockTransaction{},
		&models.TransactionTimeline{},
		&models.OutboxEvent{},
	)
}
