package repositories

import (
	"relief-app/config"
	"relief-app/models"
	"relief-app/services"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db}
}

// ItemFilter narrows item listings. Zero values mean no filter.
type ItemFilter struct {
	Category string
	WhsCode  string
	Search   string
}

// listItem is the read model served to dashboards: the stored row plus the
// derived availability and classification.
type listItem struct {
	models.InventoryItem
	QtyAvailable int    `json:"qty_available"`
	StockStatus  string `json:"stock_status"`
}

func (r *ItemRepository) GetItems(filter ItemFilter) ([]listItem, error) {
	query := r.db.Model(&models.InventoryItem{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.WhsCode != "" {
		query = query.Where("whs_code = ?", filter.WhsCode)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("item_code LIKE ? OR item_name LIKE ?", like, like)
	}

	var items []models.InventoryItem
	if err := query.Order("item_code asc").Find(&items).Error; err != nil {
		return nil, err
	}

	result := make([]listItem, 0, len(items))
	for _, item := range items {
		result = append(result, listItem{
			InventoryItem: item,
			QtyAvailable:  item.QtyAvailable(),
			StockStatus:   services.StockStatusOf(&item),
		})
	}
	return result, nil
}

func (r *ItemRepository) GetItemByID(id interface{}) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) GetItemByCode(code string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.First(&item, "item_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetAlerts classifies the current snapshot, optionally scoped to a warehouse.
func (r *ItemRepository) GetAlerts(whsCode string) (services.AlertBuckets, error) {
	query := r.db.Model(&models.InventoryItem{})
	if whsCode != "" {
		query = query.Where("whs_code = ?", whsCode)
	}

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return services.AlertBuckets{}, err
	}

	window := time.Duration(config.AlertExpiryWindowDays) * 24 * time.Hour
	if window == 0 {
		window = 30 * 24 * time.Hour
	}
	return services.EvaluateAlerts(items, time.Now(), window), nil
}

// CategorySummary is one dashboard row: stock totals per category.
type CategorySummary struct {
	Category     string `json:"category"`
	ItemCount    int    `json:"item_count"`
	QtyCurrent   int    `json:"qty_current"`
	QtyReserved  int    `json:"qty_reserved"`
	QtyAvailable int    `json:"qty_available"`
	BelowMinimum int    `json:"below_minimum"`
}

func (r *ItemRepository) GetStockSummary(whsCode string) ([]CategorySummary, error) {
	query := r.db.Model(&models.InventoryItem{})
	if whsCode != "" {
		query = query.Where("whs_code = ?", whsCode)
	}

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategorySummary)
	for _, item := range items {
		summary, ok := byCategory[item.Category]
		if !ok {
			summary = &CategorySummary{Category: item.Category}
			byCategory[item.Category] = summary
		}
		summary.ItemCount++
		summary.QtyCurrent += item.QtyCurrent
		summary.QtyReserved += item.QtyReserved
		summary.QtyAvailable += item.QtyAvailable()
		if services.StockStatusOf(&item) != services.StockAdequate {
			summary.BelowMinimum++
		}
	}

	result := make([]CategorySummary, 0, len(byCategory))
	for _, summary := range byCategory {
		result = append(result, *summary)
	}
	slices.SortFunc(result, func(a, b CategorySummary) int {
		switch {
		case a.Category < b.Category:
			return -1
		case a.Category > b.Category:
			return 1
		default:
			return 0
		}
	})
	return result, nil
}
