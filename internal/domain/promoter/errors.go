package promoter

import "errors"

var (
	// ErrPromoterNotFound indicates the ledger has no promoter for the lookup.
	ErrPromoterNotFound = errors.New("promoter not found")
	// ErrInvalidInput indicates invalid promoter input.
	ErrInvalidInput = errors.New("invalid promoter input")
)
