package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/repository"
)

// Service handles round views.
type Service struct {
	ledger Reader
	logger *slog.Logger
}

// NewService creates a new round service.
func NewService(ledger Reader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, logger: logger}
}

// PresaleStatus is the presale state as seen by a wallet.
type PresaleStatus struct {
	State
	Wallet  string `json:"wallet,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// Status returns the presale state and whether wallet is its owner.
func (s *Service) Status(ctx context.Context, chainID int64, wallet string) (*PresaleStatus, error) {
	state, err := s.state(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return &PresaleStatus{
		State:   *state,
		Wallet:  wallet,
		IsAdmin: state.IsOwner(wallet),
	}, nil
}

// Get fetches a round by ID.
func (s *Service) Get(ctx context.Context, chainID int64, id uint32) (*Round, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	r, err := s.ledger.Round(ctx, chainID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("getting round: %w", err)
	}
	return r, nil
}

// List returns every round of the presale, in ID order. Rounds missing from
// the ledger are skipped.
func (s *Service) List(ctx context.Context, chainID int64) ([]Round, error) {
	state, err := s.state(ctx, chainID)
	if err != nil {
		return nil, err
	}

	rounds := make([]Round, 0, state.TotalRounds)
	for id := uint32(1); id <= state.TotalRounds; id++ {
		r, err := s.Get(ctx, chainID, id)
		if errors.Is(err, ErrRoundNotFound) {
			s.logger.Warn("round missing from ledger", "chain_id", chainID, "round_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *r)
	}
	return rounds, nil
}

// Current returns the first round that is active at now.
func (s *Service) Current(ctx context.Context, chainID int64, now int64) (*Round, error) {
	rounds, err := s.List(ctx, chainID)
	if err != nil {
		return nil, err
	}
	for i := range rounds {
		if rounds[i].StatusAt(now) == StatusActive {
			return &rounds[i], nil
		}
	}
	return nil, ErrRoundNotFound
}

// EstimateTokens returns the tokens a dollar payment buys in a round.
func (s *Service) EstimateTokens(ctx context.Context, chainID int64, id uint32, payment string) (*Estimate, error) {
	d, err := amount.ParseDecimal(payment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	r, err := s.Get(ctx, chainID, id)
	if err != nil {
		return nil, err
	}
	est, err := r.EstimateTokens(d)
	if err != nil {
		return nil, err
	}
	return &est, nil
}

func (s *Service) state(ctx context.Context, chainID int64) (*State, error) {
	state, err := s.ledger.State(ctx, chainID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPresaleNotFound
		}
		return nil, fmt.Errorf("getting presale state: %w", err)
	}
	return state, nil
}
