package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/hmesh/presale-dashboard/internal/repository"
	"golang.org/x/sync/errgroup"
)

const overviewConcurrency = 4

// Service computes vesting schedules from ledger data.
type Service struct {
	ledger   Reader
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates a new claim service. recorder may be nil.
func NewService(ledger Reader, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, recorder: recorder, logger: logger}
}

// Schedule computes the vesting schedule of wallet in a round at instant now.
// A wallet without a purchase gets an empty schedule.
func (s *Service) Schedule(ctx context.Context, chainID int64, wallet string, roundID uint32, now int64) (*Schedule, error) {
	if !chain.IsAddress(wallet) {
		return nil, ErrInvalidWallet
	}
	if roundID == 0 {
		return nil, ErrInvalidInput
	}
	wallet = chain.NormalizeAddress(wallet)

	r, err := s.ledger.Round(ctx, chainID, roundID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, round.ErrRoundNotFound
		}
		return nil, fmt.Errorf("getting round: %w", err)
	}
	return s.schedule(ctx, chainID, wallet, r, now)
}

// Overview computes schedules for every round of the presale concurrently and
// keeps the ones where wallet holds a purchase, ordered by round ID.
func (s *Service) Overview(ctx context.Context, chainID int64, wallet string, now int64) (*Overview, error) {
	if !chain.IsAddress(wallet) {
		return nil, ErrInvalidWallet
	}
	wallet = chain.NormalizeAddress(wallet)

	state, err := s.ledger.State(ctx, chainID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, round.ErrPresaleNotFound
		}
		return nil, fmt.Errorf("getting presale state: %w", err)
	}

	results := make([]*Schedule, state.TotalRounds)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	for i := range results {
		roundID := uint32(i + 1)
		g.Go(func() error {
			r, err := s.ledger.Round(gctx, chainID, roundID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("getting round %d: %w", roundID, err)
			}
			sched, err := s.schedule(gctx, chainID, wallet, r, now)
			if err != nil {
				return err
			}
			results[i] = sched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &Overview{ChainID: chainID, Wallet: wallet, Now: now, Schedules: []Schedule{}}
	var all []vesting.Tranche
	for _, sched := range results {
		if sched == nil || sched.Purchase.Amount == nil || sched.Purchase.Amount.Sign() == 0 {
			continue
		}
		overview.Schedules = append(overview.Schedules, *sched)
		all = append(all, sched.Tranches...)
	}
	overview.Totals = vesting.Summarize(all)
	return overview, nil
}

func (s *Service) schedule(ctx context.Context, chainID int64, wallet string, r *round.Round, now int64) (*Schedule, error) {
	purchase, err := s.ledger.Purchase(ctx, chainID, wallet, r.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		purchase = &vesting.Purchase{RoundID: r.ID, Amount: new(big.Int)}
	case err != nil:
		return nil, fmt.Errorf("getting purchase: %w", err)
	}

	claimed, err := s.ledger.Claimed(ctx, chainID, wallet, r.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("getting claim state: %w", err)
	}

	tranches, warnings := vesting.ComputeWithClaims(r.VestingConfig(), *purchase, now, claimed)
	for _, w := range warnings {
		s.logger.Warn("vesting configuration warning",
			"chain_id", chainID,
			"round_id", r.ID,
			"code", w.Code,
			"message", w.Message,
		)
	}
	if s.recorder != nil {
		s.recorder.ScheduleComputed(chainID, warnings)
	}

	return &Schedule{
		ChainID:  chainID,
		Wallet:   wallet,
		Round:    r,
		Purchase: *purchase,
		Now:      now,
		Claimed:  claimed,
		Tranches: tranches,
		Summary:  vesting.Summarize(tranches),
		Warnings: warnings,
	}, nil
}
