package ledger

import (
	"context"

	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
)

// Reader reads presale state observed on the ledger. Every lookup is scoped
// to a chain id; misses return repository.ErrNotFound.
type Reader interface {
	State(ctx context.Context, chainID int64) (*round.State, error)
	Round(ctx context.Context, chainID int64, id uint32) (*round.Round, error)
	Purchase(ctx context.Context, chainID int64, wallet string, roundID uint32) (*vesting.Purchase, error)
	Claimed(ctx context.Context, chainID int64, wallet string, roundID uint32) (vesting.Claimed, error)
	Promoter(ctx context.Context, chainID int64, address string) (*promoter.Stats, error)
	PromoterByCode(ctx context.Context, chainID int64, code string) (*promoter.Stats, error)
}
