package store

import (
	"context"
	"database/sql"
	"fmt"
)

// LowStockThreshold is the quantity below which an item counts as low stock.
const LowStockThreshold = 5

// Stats holds the dashboard numbers the presentation layer displays.
type Stats struct {
	TotalItems         int            `json:"total_items"`
	LowStockItems      int            `json:"low_stock_items"`
	DamagedItems       int            `json:"damaged_items"`
	TotalMovements     int            `json:"total_movements"`
	ItemsByCategory    map[string]int `json:"items_by_category"`
	QuantityByLocation map[string]int `json:"quantity_by_location"`
}

// GetStats computes the inventory overview.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	stats := &Stats{
		ItemsByCategory:    map[string]int{},
		QuantityByLocation: map[string]int{},
	}

	row := db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE quantity < ?),
		       COUNT(*) FILTER (WHERE status = 'damaged')
		FROM items`, LowStockThreshold,
	)
	if err := row.Scan(&stats.TotalItems, &stats.LowStockItems, &stats.DamagedItems); err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movements`,
	).Scan(&stats.TotalMovements); err != nil {
		return nil, fmt.Errorf("counting movements: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT COALESCE(project_category, ''), COUNT(*) FROM items GROUP BY project_category`,
	)
	if err != nil {
		return nil, fmt.Errorf("grouping by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		stats.ItemsByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	locRows, err := db.QueryContext(ctx,
		`SELECT storage_location, SUM(quantity) FROM items GROUP BY storage_location`,
	)
	if err != nil {
		return nil, fmt.Errorf("grouping by location: %w", err)
	}
	defer locRows.Close()
	for locRows.Next() {
		var location string
		var qty int
		if err := locRows.Scan(&location, &qty); err != nil {
			return nil, fmt.Errorf("scanning location quantity: %w", err)
		}
		stats.QuantityByLocation[location] = qty
	}
	return stats, locRows.Err()
}
