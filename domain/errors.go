package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// DeletePolicy names how an entity kind is removed. Sales keep references
// to both products and customers, so the two policies are kept distinct.
type DeletePolicy int

const (
	HardDelete DeletePolicy = iota
	SoftDelete
)

var (
	ProductDeletePolicy  = HardDelete
	CustomerDeletePolicy = SoftDelete
)
