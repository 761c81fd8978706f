package store

import "errors"

// Store errors. All are recoverable at the point of submission: a rejected
// operation leaves all state untouched. Handlers match these with errors.Is.
var (
	ErrItemNotFound         = errors.New("item not found")
	ErrMovementNotFound     = errors.New("movement not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateSerial      = errors.New("serial number already in use")
	ErrDuplicateUsername    = errors.New("username already in use")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrInvalidMovementType  = errors.New("invalid movement type")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidLocation      = errors.New("invalid storage location")
	ErrInvalidStatus        = errors.New("invalid status")
)
