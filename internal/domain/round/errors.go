package round

import "errors"

var (
	// ErrRoundNotFound indicates the round doesn't exist on the ledger.
	ErrRoundNotFound = errors.New("round not found")
	// ErrPresaleNotFound indicates no presale state is known for the chain.
	ErrPresaleNotFound = errors.New("presale not found")
	// ErrNoPrice indicates the round has no usable token price.
	ErrNoPrice = errors.New("round has no token price")
	// ErrInvalidInput indicates invalid round input.
	ErrInvalidInput = errors.New("invalid round input")
)
