package submission

import (
	"context"
	"time"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
)

// Repository provides persistence for submissions.
type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	Get(ctx context.Context, id string) (*Submission, error)
	// Resolve moves a pending submission to a final status. It returns
	// repository.ErrConflict when the submission is no longer pending.
	Resolve(ctx context.Context, id string, status Status, txHash, message string, at time.Time) error
	List(ctx context.Context, wallet string, opts ListOptions) ([]Submission, error)
}

// LedgerReader provides the ledger reads used to validate a buy.
type LedgerReader interface {
	State(ctx context.Context, chainID int64) (*round.State, error)
	Round(ctx context.Context, chainID int64, id uint32) (*round.Round, error)
	PromoterByCode(ctx context.Context, chainID int64, code string) (*promoter.Stats, error)
}

// Networks resolves chain ids to deployed contracts.
type Networks interface {
	Network(chainID int64) (*chain.Network, error)
}

// Scheduler computes the vesting schedule a claim draws from.
type Scheduler interface {
	Schedule(ctx context.Context, chainID int64, wallet string, roundID uint32, now int64) (*claim.Schedule, error)
}

// Recorder observes submission state changes.
type Recorder interface {
	SubmissionRecorded(kind Kind, status Status)
}
