package model

import "time"

// Item represents a tracked inventory lot: a quantity of one item variant
// held at a single storage location.
type Item struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Model           string    `json:"model,omitempty"`
	SerialNumber    string    `json:"serial_number"`
	ProjectCategory string    `json:"project_category,omitempty"`
	Description     string    `json:"description,omitempty"`
	Quantity        int       `json:"quantity"`
	Supplier        string    `json:"supplier,omitempty"`
	StorageLocation Location  `json:"storage_location"`
	Status          Status    `json:"status"`
	ImageMime       string    `json:"image_mime,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Status is the lifecycle state shared by items and movements.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDamaged  Status = "damaged"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDamaged:
		return true
	}
	return false
}

// Location is a storage location. The set is closed: values outside it are
// rejected at the boundary instead of being stored as free text.
type Location string

const (
	LocationStores     Location = "Stores"
	LocationOffice     Location = "Office"
	LocationContainer  Location = "Container"
	LocationDataOffice Location = "Data Office"
	LocationFieldWork  Location = "Field Work"
)

// Locations returns all storage locations, in display order.
func Locations() []Location {
	return []Location{
		LocationStores,
		LocationOffice,
		LocationContainer,
		LocationDataOffice,
		LocationFieldWork,
	}
}

// Valid reports whether l is a member of the closed location set.
func (l Location) Valid() bool {
	switch l {
	case LocationStores, LocationOffice, LocationContainer, LocationDataOffice, LocationFieldWork:
		return true
	}
	return false
}
