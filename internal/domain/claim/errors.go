package claim

import "errors"

var (
	// ErrInvalidWallet indicates the wallet address is malformed.
	ErrInvalidWallet = errors.New("invalid wallet address")
	// ErrInvalidInput indicates invalid schedule input.
	ErrInvalidInput = errors.New("invalid claim input")
)
