package promoter

import "context"

// Reader provides read access to promoter data on the ledger.
type Reader interface {
	Promoter(ctx context.Context, chainID int64, address string) (*Stats, error)
	PromoterByCode(ctx context.Context, chainID int64, code string) (*Stats, error)
}
