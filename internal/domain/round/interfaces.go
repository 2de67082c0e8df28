package round

import "context"

// Reader provides read access to round data on the ledger.
type Reader interface {
	State(ctx context.Context, chainID int64) (*State, error)
	Round(ctx context.Context, chainID int64, id uint32) (*Round, error)
}
