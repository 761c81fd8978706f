// Package report serializes the item and movement collections into a
// spreadsheet for the reporting collaborator.
package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xuri/excelize/v2"

	"invtrack/internal/model"
	"invtrack/internal/store"
)

const dateFormat = "2006-01-02 15:04:05"

// Sheet names in the exported workbook.
const (
	SheetItems     = "Items"
	SheetMovements = "Movements"
	SheetDamaged   = "Damaged"
)

// BuildWorkbook exports all items, all movements, and the damaged-item
// subset into a three-sheet XLSX workbook. The caller owns the returned
// file and must Close it.
func BuildWorkbook(ctx context.Context, db *sql.DB) (*excelize.File, error) {
	items, err := store.ListItems(ctx, db, store.ListItemsOptions{})
	if err != nil {
		return nil, err
	}
	movements, err := store.ListMovements(ctx, db, 0, "")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	// The default sheet becomes the items sheet.
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(defaultSheet, SheetItems); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming items sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMovements); err != nil {
		f.Close()
		return nil, fmt.Errorf("adding movements sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetDamaged); err != nil {
		f.Close()
		return nil, fmt.Errorf("adding damaged sheet: %w", err)
	}

	if err := writeItemSheet(f, SheetItems, items); err != nil {
		f.Close()
		return nil, err
	}

	var damaged []model.Item
	for _, item := range items {
		if item.Status == model.StatusDamaged {
			damaged = append(damaged, item)
		}
	}
	if err := writeItemSheet(f, SheetDamaged, damaged); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeMovementSheet(f, SheetMovements, movements); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeItemSheet(f *excelize.File, sheet string, items []model.Item) error {
	header := []any{
		"id", "name", "model", "serial_number", "project_category",
		"description", "quantity", "supplier", "storage_location",
		"status", "date_added",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}

	for i, item := range items {
		row := []any{
			item.ID,
			item.Name,
			item.Model,
			item.SerialNumber,
			item.ProjectCategory,
			item.Description,
			item.Quantity,
			item.Supplier,
			string(item.StorageLocation),
			string(item.Status),
			item.CreatedAt.Format(dateFormat),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing %s cell: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row: %w", sheet, err)
		}
	}
	return nil
}

func writeMovementSheet(f *excelize.File, sheet string, movements []model.Movement) error {
	header := []any{
		"id", "date", "item", "item_serial", "movement_type", "quantity",
		"from_location", "to_location", "from_project", "to_project",
		"status", "notes",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}

	for i, m := range movements {
		row := []any{
			m.ID,
			m.MovedAt.Format(dateFormat),
			m.ItemName,
			m.ItemSerial,
			string(m.MovementType),
			m.Quantity,
			string(m.FromLocation),
			string(m.ToLocation),
			m.FromProject,
			m.ToProject,
			string(m.Status),
			m.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing %s cell: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row: %w", sheet, err)
		}
	}
	return nil
}
