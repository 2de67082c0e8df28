package claim

import (
	"context"

	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
)

// Reader provides the ledger reads a vesting schedule depends on.
type Reader interface {
	State(ctx context.Context, chainID int64) (*round.State, error)
	Round(ctx context.Context, chainID int64, id uint32) (*round.Round, error)
	Purchase(ctx context.Context, chainID int64, wallet string, roundID uint32) (*vesting.Purchase, error)
	Claimed(ctx context.Context, chainID int64, wallet string, roundID uint32) (vesting.Claimed, error)
}

// Recorder observes computed schedules.
type Recorder interface {
	ScheduleComputed(chainID int64, warnings []vesting.ConfigurationWarning)
}
