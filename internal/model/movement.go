package model

import "time"

// MovementType discriminates how a movement changes its item.
type MovementType string

const (
	MovementIn          MovementType = "in"
	MovementOut         MovementType = "out"
	MovementTransferred MovementType = "transferred"
)

// Valid reports whether t is a member of the closed movement-type set.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementTransferred:
		return true
	}
	return false
}

// Movement is one ledger entry recording a quantity change against an item.
// Once written, only Status may change.
type Movement struct {
	ID           int64        `json:"id"`
	ItemID       int64        `json:"item_id"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int          `json:"quantity"`
	FromLocation Location     `json:"from_location,omitempty"`
	ToLocation   Location     `json:"to_location,omitempty"`
	FromProject  string       `json:"from_project,omitempty"`
	ToProject    string       `json:"to_project,omitempty"`
	Status       Status       `json:"status"`
	MovedAt      time.Time    `json:"date"`
	Notes        string       `json:"notes,omitempty"`

	// Joined fields (not always populated).
	ItemName   string `json:"item_name,omitempty"`
	ItemSerial string `json:"item_serial,omitempty"`
}

// MovementRequest is a movement submission as received from the caller.
// The target item is referenced by identity; resolving a human-entered name
// to an id is the presentation layer's job.
type MovementRequest struct {
	ItemID       int64
	Type         MovementType
	Quantity     int
	FromLocation Location
	ToLocation   Location
	FromProject  string
	ToProject    string
	Status       Status
	MovedAt      time.Time
	Notes        string
}

// MovementResult is the outcome of a successfully applied movement: the
// finalized ledger entry, the mutated source item, and, for transfers, the
// derived item carrying the transferred quantity.
type MovementResult struct {
	Movement    *Movement `json:"movement"`
	Item        *Item     `json:"item"`
	DerivedItem *Item     `json:"derived_item,omitempty"`
}
