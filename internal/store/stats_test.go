package store

import (
	"context"
	"testing"

	"invtrack/internal/db"
	"invtrack/internal/model"
)

func TestGetStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	empty, err := GetStats(ctx, database)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if empty.TotalItems != 0 || empty.TotalMovements != 0 {
		t.Errorf("expected zero stats, got %+v", empty)
	}

	router, _ := CreateItem(ctx, database, &model.Item{
		Name: "Router", SerialNumber: "SN-1", ProjectCategory: "Networking",
		Quantity: 10, StorageLocation: model.LocationStores,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Patch Cable", SerialNumber: "SN-2", ProjectCategory: "Networking",
		Quantity: 2, StorageLocation: model.LocationStores,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Camera", SerialNumber: "SN-3", ProjectCategory: "Security",
		Quantity: 1, StorageLocation: model.LocationOffice, Status: model.StatusDamaged,
	})

	if _, err := ApplyMovement(ctx, database, &model.MovementRequest{
		ItemID: router.ID, Type: model.MovementOut, Quantity: 3,
	}); err != nil {
		t.Fatalf("ApplyMovement: %v", err)
	}

	stats, err := GetStats(ctx, database)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", stats.TotalItems)
	}
	if stats.LowStockItems != 2 {
		t.Errorf("expected 2 low-stock items, got %d", stats.LowStockItems)
	}
	if stats.DamagedItems != 1 {
		t.Errorf("expected 1 damaged item, got %d", stats.DamagedItems)
	}
	if stats.TotalMovements != 1 {
		t.Errorf("expected 1 movement, got %d", stats.TotalMovements)
	}
	if stats.ItemsByCategory["Networking"] != 2 || stats.ItemsByCategory["Security"] != 1 {
		t.Errorf("unexpected category breakdown: %v", stats.ItemsByCategory)
	}
	if stats.QuantityByLocation["Stores"] != 9 {
		t.Errorf("expected 9 units at Stores, got %d", stats.QuantityByLocation["Stores"])
	}
	if stats.QuantityByLocation["Office"] != 1 {
		t.Errorf("expected 1 unit at Office, got %d", stats.QuantityByLocation["Office"])
	}
}
