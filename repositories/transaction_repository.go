package repositories

import (
	"relief-app/models"
	"time"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db}
}

type TransactionFilter struct {
	Status  string
	Type    string
	ItemID  string
	WhsCode string
}

func (r *TransactionRepository) GetTransactions(filter TransactionFilter) ([]models.StockTransaction, error) {
	query := r.db.Model(&models.StockTransaction{}).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("transaction_timelines.id asc")
		})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ItemID != "" {
		query = query.Where("item_id = ?", filter.ItemID)
	}
	if filter.WhsCode != "" {
		query = query.Where("item_id IN (?)",
			r.db.Model(&models.InventoryItem{}).Select("id").Where("whs_code = ?", filter.WhsCode))
	}

	var transactions []models.StockTransaction
	if err := query.Order("created_at desc").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *TransactionRepository) GetTransactionByID(id interface{}) (*models.StockTransaction, error) {
	var trx models.StockTransaction
	err := r.db.Preload("Timeline", func(db *gorm.DB) *gorm.DB {
		return db.Order("transaction_timelines.id asc")
	}).First(&trx, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// GetOverdueTransactions lists non-terminal transactions whose scheduled date
// has passed. Overdue is a read-time computation, nothing is stored.
func (r *TransactionRepository) GetOverdueTransactions(whsCode string) ([]models.StockTransaction, error) {
	query := r.db.Model(&models.StockTransaction{}).
		Where("status IN ?", []string{models.StatusPending, models.StatusApproved}).
		Where("scheduled_date IS NOT NULL AND scheduled_date < ?", time.Now())
	if whsCode != "" {
		query = query.Where("item_id IN (?)",
			r.db.Model(&models.InventoryItem{}).Select("id").Where("whs_code = ?", whsCode))
	}

	var transactions []models.StockTransaction
	if err := query.Order("scheduled_date asc").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}
