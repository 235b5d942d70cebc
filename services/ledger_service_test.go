package services

import (
	"errors"
	"sync"
	"testing"
)

func TestAdjustCurrentIncreases(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "MED-001", 10, 2)
	ledger := NewLedgerService(db)

	updated, err := ledger.AdjustCurrent(item.ID, 5, "delivery")
	if err != nil {
		t.Fatalf("AdjustCurrent: %v", err)
	}
	if updated.QtyCurrent != 15 {
		t.Errorf("expected current 15, got %d", updated.QtyCurrent)
	}
	if updated.Version != item.Version+1 {
		t.Errorf("expected version bump to %d, got %d", item.Version+1, updated.Version)
	}
	checkQuantityInvariants(t, updated)
}

func TestAdjustCurrentRejectsNegativeResult(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "MED-001", 3, 2)
	ledger := NewLedgerService(db)

	_, err := ledger.AdjustCurrent(item.ID, -5, "shrinkage")
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected InvalidQuantity, got %v", err)
	}

	reloaded := reloadItem(t, db, item.ID)
	if reloaded.QtyCurrent != 3 {
		t.Errorf("current changed on rejected adjustment: %d", reloaded.QtyCurrent)
	}
}

func TestAdjustCurrentCannotDropBelowReserved(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "MED-001", 10, 2)
	ledger := NewLedgerService(db)

	if _, err := ledger.Reserve(item.ID, 6); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	_, err := ledger.AdjustCurrent(item.ID, -5, "recount")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
	checkQuantityInvariants(t, reloadItem(t, db, item.ID))
}

func TestAdjustCurrentUnknownItem(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	_, err := ledger.AdjustCurrent(12345, 1, "test")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestReserveAndRelease(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "WTR-001", 10, 2)
	ledger := NewLedgerService(db)

	updated, err := ledger.Reserve(item.ID, 4)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if updated.QtyReserved != 4 || updated.QtyAvailable() != 6 {
		t.Errorf("expected reserved 4 available 6, got %d/%d", updated.QtyReserved, updated.QtyAvailable())
	}
	checkQuantityInvariants(t, updated)

	updated, err = ledger.Release(item.ID, 4)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if updated.QtyReserved != 0 || updated.QtyAvailable() != 10 {
		t.Errorf("expected reserved 0 available 10, got %d/%d", updated.QtyReserved, updated.QtyAvailable())
	}
}

func TestReserveInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "WTR-001", 5, 2)
	ledger := NewLedgerService(db)

	if _, err := ledger.Reserve(item.ID, 3); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// Only 2 remain available.
	_, err := ledger.Reserve(item.ID, 3)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
}

func TestReleaseMoreThanReserved(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "WTR-001", 5, 2)
	ledger := NewLedgerService(db)

	_, err := ledger.Release(item.ID, 1)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected InvalidQuantity, got %v", err)
	}
}

func TestConsumeRemovesStockAndReservation(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "FOO-001", 10, 2)
	ledger := NewLedgerService(db)

	if _, err := ledger.Reserve(item.ID, 7); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	updated, err := ledger.Consume(item.ID, 7)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if updated.QtyCurrent != 3 || updated.QtyReserved != 0 {
		t.Errorf("expected current 3 reserved 0, got %d/%d", updated.QtyCurrent, updated.QtyReserved)
	}
	checkQuantityInvariants(t, updated)
}

func TestConsumeWithoutReservation(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "FOO-001", 10, 2)
	ledger := NewLedgerService(db)

	_, err := ledger.Consume(item.ID, 1)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected InvalidQuantity, got %v", err)
	}
}

func TestConcurrentReserveOnlyOneSucceeds(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "MED-RACE", 10, 2)
	ledger := NewLedgerService(db)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = ledger.Reserve(item.ID, 6)
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one InsufficientStock, got %d/%d", succeeded, insufficient)
	}

	reloaded := reloadItem(t, db, item.ID)
	if reloaded.QtyReserved != 6 {
		t.Errorf("expected reserved 6, got %d", reloaded.QtyReserved)
	}
	checkQuantityInvariants(t, reloaded)
}

func TestTransferStockMovesQuantity(t *testing.T) {
	db := newTestDB(t)
	src := createTestItem(t, db, "TNT-A", 20, 2)
	dst := createTestItem(t, db, "TNT-B", 0, 2)
	ledger := NewLedgerService(db)

	if _, err := ledger.Reserve(src.ID, 20); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := ledger.TransferStock(src.ID, dst.ID, 20, "relocation"); err != nil {
		t.Fatalf("TransferStock: %v", err)
	}

	srcAfter := reloadItem(t, db, src.ID)
	dstAfter := reloadItem(t, db, dst.ID)
	if srcAfter.QtyCurrent != 0 || dstAfter.QtyCurrent != 20 {
		t.Errorf("expected 0/20 after transfer, got %d/%d", srcAfter.QtyCurrent, dstAfter.QtyCurrent)
	}
}

func TestTransferStockCompensatesFailedDestination(t *testing.T) {
	db := newTestDB(t)
	src := createTestItem(t, db, "TNT-A", 20, 2)
	dst := createTestItem(t, db, "TNT-B", 0, 2)
	ledger := NewLedgerService(db)

	if _, err := ledger.Reserve(src.ID, 20); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// Archive the destination so its write fails after the source consume.
	if err := db.Delete(dst).Error; err != nil {
		t.Fatalf("archive destination: %v", err)
	}

	err := ledger.TransferStock(src.ID, dst.ID, 20, "relocation")
	if !errors.Is(err, ErrPartialFailure) {
		t.Fatalf("expected PartialFailure, got %v", err)
	}

	srcAfter := reloadItem(t, db, src.ID)
	if srcAfter.QtyCurrent != 20 || srcAfter.QtyReserved != 20 {
		t.Errorf("expected source restored to 20/20, got %d/%d", srcAfter.QtyCurrent, srcAfter.QtyReserved)
	}
	checkQuantityInvariants(t, srcAfter)
}
