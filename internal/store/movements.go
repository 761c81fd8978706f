package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"invtrack/internal/model"
)

const movementColumns = `m.id, m.item_id, m.movement_type, m.quantity,
	m.from_location, m.to_location, m.from_project, m.to_project,
	m.status, m.moved_at, m.notes, i.name AS item_name, i.serial_number AS item_serial`

// validateMovement checks a submission before any state is touched.
// A rejected movement leaves all state exactly as it was.
func validateMovement(req *model.MovementRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, req.Quantity)
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMovementType, req.Type)
	}
	if req.Status == "" {
		req.Status = model.StatusActive
	}
	if !req.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	if req.FromLocation != "" && !req.FromLocation.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, req.FromLocation)
	}
	if req.ToLocation != "" && !req.ToLocation.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, req.ToLocation)
	}
	if req.Type == model.MovementTransferred && req.ToLocation == "" {
		return fmt.Errorf("%w: transfer needs a destination", ErrInvalidLocation)
	}
	return nil
}

// ApplyMovement validates a movement submission against the target item,
// mutates the item, appends the ledger entry, and, for transfers, creates
// the derived item carrying the transferred quantity. Everything happens in
// one transaction: either all of it commits or none of it does.
func ApplyMovement(ctx context.Context, db *sql.DB, req *model.MovementRequest) (*model.MovementResult, error) {
	if err := validateMovement(req); err != nil {
		return nil, err
	}

	movedAt := req.MovedAt
	if movedAt.IsZero() {
		movedAt = time.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItemTx(ctx, tx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d", ErrItemNotFound, req.ItemID)
	}

	var derived *model.Item

	switch req.Type {
	case model.MovementIn:
		item.Quantity += req.Quantity
		if req.ToLocation != "" {
			item.StorageLocation = req.ToLocation
		}

	case model.MovementOut:
		if item.Quantity < req.Quantity {
			return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientQuantity, item.Quantity, req.Quantity)
		}
		item.Quantity -= req.Quantity
		if req.ToLocation != "" {
			item.StorageLocation = req.ToLocation
		}

	case model.MovementTransferred:
		if item.Quantity < req.Quantity {
			return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientQuantity, item.Quantity, req.Quantity)
		}
		// The source loses the transferred amount but stays where it is;
		// the transferred quantity becomes a new item at the destination.
		item.Quantity -= req.Quantity
		derived = deriveItem(item, req, movedAt)
		if err := insertDerivedItem(ctx, tx, derived, movedAt); err != nil {
			return nil, err
		}
	}

	// A damaged movement marks its item damaged. Nothing ever reverts this
	// automatically, and no other movement status touches the item.
	if req.Status == model.StatusDamaged {
		item.Status = model.StatusDamaged
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET quantity = ?, storage_location = ?, status = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Quantity, string(item.StorageLocation), string(item.Status), item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO movements (item_id, movement_type, quantity, from_location, to_location,
		                        from_project, to_project, status, moved_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ItemID, string(req.Type), req.Quantity,
		nullable(string(req.FromLocation)), nullable(string(req.ToLocation)),
		nullable(req.FromProject), nullable(req.ToProject),
		string(req.Status), movedAt, nullable(req.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("recording movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing movement: %w", err)
	}

	movementID, _ := result.LastInsertId()
	movement, err := GetMovement(ctx, db, movementID)
	if err != nil {
		return nil, err
	}

	updated, err := GetItem(ctx, db, item.ID)
	if err != nil {
		return nil, err
	}

	res := &model.MovementResult{Movement: movement, Item: updated}
	if derived != nil {
		res.DerivedItem, err = GetItem(ctx, db, derived.ID)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// deriveItem builds the item spawned by a transfer: same variant as the
// source, transferred quantity, destination location and project, fresh
// serial, provenance note.
func deriveItem(source *model.Item, req *model.MovementRequest, at time.Time) *model.Item {
	return &model.Item{
		Name:            source.Name,
		Model:           source.Model,
		SerialNumber:    deriveSerial(source.SerialNumber, at),
		ProjectCategory: req.ToProject,
		Description:     source.Description,
		Quantity:        req.Quantity,
		Supplier:        source.Supplier,
		StorageLocation: req.ToLocation,
		Status:          model.StatusActive,
		Notes:           fmt.Sprintf("Transferred from %s (%s)", req.FromProject, req.FromLocation),
	}
}

// deriveSerial mints a serial for a transfer-derived item. The timestamp
// keeps serials human-readable; the random suffix keeps repeated transfers
// of the same item within one second from colliding.
func deriveSerial(source string, at time.Time) string {
	suffix, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("%s-TR-%s-%s", source, at.Format("20060102150405"), suffix)
}

// insertDerivedItem stores the transfer-derived item. Its timestamps are the
// movement time, not the wall clock, so a backdated transfer stays
// consistent with the serial it minted.
func insertDerivedItem(ctx context.Context, tx *sql.Tx, item *model.Item, at time.Time) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, model, serial_number, project_category, description,
		                    quantity, supplier, storage_location, status, notes,
		                    created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, nullable(item.Model), item.SerialNumber, nullable(item.ProjectCategory),
		nullable(item.Description), item.Quantity, nullable(item.Supplier),
		string(item.StorageLocation), string(item.Status), nullable(item.Notes),
		at, at,
	)
	if err != nil {
		return fmt.Errorf("creating derived item: %w", err)
	}
	item.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting derived item id: %w", err)
	}
	return nil
}

func getItemTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Item, error) {
	item, err := scanItem(tx.QueryRowContext(ctx,
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

// UpdateMovementStatus is the only permitted mutation of a stored movement.
// Setting it to damaged re-triggers propagation onto the linked item; no
// other value changes the item.
func UpdateMovementStatus(ctx context.Context, db *sql.DB, id int64, status model.Status) (*model.Movement, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID int64
	err = tx.QueryRowContext(ctx,
		`SELECT item_id FROM movements WHERE id = ?`, id,
	).Scan(&itemID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: id %d", ErrMovementNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE movements SET status = ? WHERE id = ?`, string(status), id,
	); err != nil {
		return nil, fmt.Errorf("updating movement status: %w", err)
	}

	if status == model.StatusDamaged {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			string(model.StatusDamaged), itemID,
		); err != nil {
			return nil, fmt.Errorf("propagating damaged status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	return GetMovement(ctx, db, id)
}

// GetMovement returns a movement by ID with joined item fields, or nil.
func GetMovement(ctx context.Context, db *sql.DB, id int64) (*model.Movement, error) {
	m, err := scanMovement(db.QueryRowContext(ctx,
		`SELECT `+movementColumns+`
		 FROM movements m JOIN items i ON i.id = m.item_id
		 WHERE m.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}
	return m, nil
}

// ListMovements returns movements ordered by date (newest first), optionally
// filtered by item and/or type.
func ListMovements(ctx context.Context, db *sql.DB, itemID int64, movementType model.MovementType) ([]model.Movement, error) {
	query := `SELECT ` + movementColumns + `
	          FROM movements m JOIN items i ON i.id = m.item_id
	          WHERE 1=1`
	var args []any

	if itemID > 0 {
		query += ` AND m.item_id = ?`
		args = append(args, itemID)
	}
	if movementType != "" {
		query += ` AND m.movement_type = ?`
		args = append(args, string(movementType))
	}

	query += ` ORDER BY m.moved_at DESC, m.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

func scanMovement(s scanner) (*model.Movement, error) {
	m := &model.Movement{}
	var fromLoc, toLoc, fromProj, toProj, notes sql.NullString
	err := s.Scan(&m.ID, &m.ItemID, &m.MovementType, &m.Quantity,
		&fromLoc, &toLoc, &fromProj, &toProj,
		&m.Status, &m.MovedAt, &notes, &m.ItemName, &m.ItemSerial)
	if err != nil {
		return nil, err
	}
	m.FromLocation = model.Location(fromLoc.String)
	m.ToLocation = model.Location(toLoc.String)
	m.FromProject = fromProj.String
	m.ToProject = toProj.String
	m.Notes = notes.String
	return m, nil
}
