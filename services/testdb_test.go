package services

import (
	"path/filepath"
	"relief-app/database"
	"relief-app/models"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createTestItem(t *testing.T, db *gorm.DB, code string, current, minimum int) *models.InventoryItem {
	t.Helper()

	item := models.InventoryItem{
		ItemCode:   code,
		ItemName:   "Test " + code,
		Category:   models.CategoryMedical,
		Uom:        "PCS",
		QtyCurrent: current,
		QtyMinimum: minimum,
		WhsCode:    "WH-CENTRAL",
		Status:     models.ItemStatusAvailable,
		Version:    1,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create test item: %v", err)
	}
	return &item
}

func reloadItem(t *testing.T, db *gorm.DB, id interface{}) *models.InventoryItem {
	t.Helper()

	var item models.InventoryItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return &item
}

// checkQuantityInvariants asserts 0 <= reserved <= current.
func checkQuantityInvariants(t *testing.T, item *models.InventoryItem) {
	t.Helper()

	if item.QtyCurrent < 0 {
		t.Errorf("item %s: current %d is negative", item.ItemCode, item.QtyCurrent)
	}
	if item.QtyReserved < 0 {
		t.Errorf("item %s: reserved %d is negative", item.ItemCode, item.QtyReserved)
	}
	if item.QtyReserved > item.QtyCurrent {
		t.Errorf("item %s: reserved %d exceeds current %d", item.ItemCode, item.QtyReserved, item.QtyCurrent)
	}
}
