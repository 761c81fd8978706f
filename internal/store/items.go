package store

import (
	"context"
	"database/sql"
	"fmt"

	"invtrack/internal/model"
)

const itemColumns = `id, name, model, serial_number, project_category, description,
	quantity, supplier, storage_location, status, image_mime, notes, created_at, updated_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var mdl, category, description, supplier, imageMime, notes sql.NullString
	err := s.Scan(&item.ID, &item.Name, &mdl, &item.SerialNumber, &category, &description,
		&item.Quantity, &supplier, &item.StorageLocation, &item.Status, &imageMime, &notes,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Model = mdl.String
	item.ProjectCategory = category.String
	item.Description = description.String
	item.Supplier = supplier.String
	item.ImageMime = imageMime.String
	item.Notes = notes.String
	return item, nil
}

// validateItemFields checks the closed vocabularies and quantity bounds
// shared by create and update.
func validateItemFields(item *model.Item) error {
	if item.Quantity < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, item.Quantity)
	}
	if !item.StorageLocation.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, item.StorageLocation)
	}
	if item.Status == "" {
		item.Status = model.StatusActive
	}
	if !item.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, item.Status)
	}
	return nil
}

// CreateItem creates a new item. The id and timestamps on the input are
// ignored; the stored record is returned. The duplicate-serial check and
// the insert share one transaction.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	if err := validateItemFields(item); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM items WHERE serial_number = ?)`, item.SerialNumber,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("checking serial: %w", err)
	}
	if taken == 1 {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSerial, item.SerialNumber)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, model, serial_number, project_category, description,
		                    quantity, supplier, storage_location, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, nullable(item.Model), item.SerialNumber, nullable(item.ProjectCategory),
		nullable(item.Description), item.Quantity, nullable(item.Supplier),
		string(item.StorageLocation), string(item.Status), nullable(item.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}
	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemBySerial returns an item by its serial number, or nil.
func GetItemBySerial(ctx context.Context, db *sql.DB, serial string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE serial_number = ?`, serial,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by serial: %w", err)
	}
	return item, nil
}

// GetItemByName returns the first item matching name exactly, or nil.
// Names are not unique; this exists for the presentation layer's
// autocomplete and should not be used to target movements.
func GetItemByName(ctx context.Context, db *sql.DB, name string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE name = ? ORDER BY id LIMIT 1`, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by name: %w", err)
	}
	return item, nil
}

// ListItemsOptions filters ListItems. Zero values mean no filter.
type ListItemsOptions struct {
	Status   model.Status
	Location model.Location
	Category string
	Name     string // substring match
}

// ListItems returns items matching the given filters, ordered by name.
func ListItems(ctx context.Context, db *sql.DB, opts ListItemsOptions) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if opts.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	if opts.Location != "" {
		query += ` AND storage_location = ?`
		args = append(args, string(opts.Location))
	}
	if opts.Category != "" {
		query += ` AND project_category = ?`
		args = append(args, opts.Category)
	}
	if opts.Name != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+opts.Name+"%")
	}

	query += ` ORDER BY name, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem overwrites an item's editable fields. Identity, serial number,
// and movement history cannot be changed here.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, upd *model.Item) error {
	if err := validateItemFields(upd); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, model = ?, project_category = ?, description = ?,
		        quantity = ?, supplier = ?, storage_location = ?, status = ?, notes = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		upd.Name, nullable(upd.Model), nullable(upd.ProjectCategory), nullable(upd.Description),
		upd.Quantity, nullable(upd.Supplier), string(upd.StorageLocation), string(upd.Status),
		nullable(upd.Notes), id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// DeleteItem removes an item and all of its movements in one transaction.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM movements WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("deleting item movements: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// SetItemImage sets an item's photo.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking image update: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// GetItemImage returns an item's photo data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// nullable maps empty strings to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
