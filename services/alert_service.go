package services

import (
	"relief-app/models"
	"time"
)

// Stock classifications, mutually exclusive, evaluated in order
// out-of-stock > critical > low-stock > adequate.
const (
	StockOutOfStock = "out-of-stock"
	StockCritical   = "critical"
	StockLow        = "low-stock"
	StockAdequate   = "adequate"
)

// The alert evaluator is pure: it reads an item snapshot and nothing else.
// Callers re-read state first, the ledger never caches quantities.

func IsOutOfStock(item *models.InventoryItem) bool {
	return item.QtyCurrent == 0
}

// IsCritical uses a strict bound: exactly half the minimum still counts as
// low stock, not critical.
func IsCritical(item *models.InventoryItem) bool {
	return item.QtyCurrent > 0 && float64(item.QtyCurrent) < float64(item.QtyMinimum)*0.5
}

func IsLowStock(item *models.InventoryItem) bool {
	return !IsOutOfStock(item) && !IsCritical(item) && item.QtyCurrent <= item.QtyMinimum
}

func StockStatusOf(item *models.InventoryItem) string {
	switch {
	case IsOutOfStock(item):
		return StockOutOfStock
	case IsCritical(item):
		return StockCritical
	case item.QtyCurrent <= item.QtyMinimum:
		return StockLow
	default:
		return StockAdequate
	}
}

func IsExpired(item *models.InventoryItem, now time.Time) bool {
	return item.ExpiryDate != nil && item.ExpiryDate.Before(now)
}

func IsExpiringSoon(item *models.InventoryItem, now time.Time, window time.Duration) bool {
	if item.ExpiryDate == nil || IsExpired(item, now) {
		return false
	}
	return item.ExpiryDate.Sub(now) <= window
}

// AlertBuckets groups items by the alert they currently raise. An item with a
// quantity alert can also appear in the expiry buckets.
type AlertBuckets struct {
	LowStock   []models.InventoryItem `json:"low_stock"`
	Critical   []models.InventoryItem `json:"critical"`
	OutOfStock []models.InventoryItem `json:"out_of_stock"`
	Expiring   []models.InventoryItem `json:"expiring"`
	Expired    []models.InventoryItem `json:"expired"`
}

func EvaluateAlerts(items []models.InventoryItem, now time.Time, expiryWindow time.Duration) AlertBuckets {
	var buckets AlertBuckets
	for _, item := range items {
		switch StockStatusOf(&item) {
		case StockOutOfStock:
			buckets.OutOfStock = append(buckets.OutOfStock, item)
		case StockCritical:
			buckets.Critical = append(buckets.Critical, item)
		case StockLow:
			buckets.LowStock = append(buckets.LowStock, item)
		}
		if IsExpired(&item, now) {
			buckets.Expired = append(buckets.Expired, item)
		} else if IsExpiringSoon(&item, now, expiryWindow) {
			buckets.Expiring = append(buckets.Expiring, item)
		}
	}
	return buckets
}
