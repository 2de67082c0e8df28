package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/hmesh/presale-dashboard/internal/repository"
)

// Service prepares ledger writes and tracks their reported outcome. It never
// signs or broadcasts anything.
type Service struct {
	repo      Repository
	ledger    LedgerReader
	networks  Networks
	scheduler Scheduler
	recorder  Recorder
	opts      Options
	logger    *slog.Logger
}

// NewService creates a new submission service. recorder may be nil.
func NewService(
	repo Repository,
	ledger LedgerReader,
	networks Networks,
	scheduler Scheduler,
	recorder Recorder,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		ledger:    ledger,
		networks:  networks,
		scheduler: scheduler,
		recorder:  recorder,
		opts:      opts,
		logger:    logger,
	}
}

// BuyRequest describes a purchase in a round.
type BuyRequest struct {
	ChainID   int64
	Wallet    string
	RoundID   uint32
	Token     string
	Amount    string
	PromoCode string
	Slippage  *uint32
	Now       int64
}

// ClaimRequest describes a claim of unlocked tokens in a round.
type ClaimRequest struct {
	ChainID int64
	Wallet  string
	RoundID uint32
	Now     int64
}

// ReportRequest carries the outcome the wallet observed for a submission.
type ReportRequest struct {
	ID      string
	Wallet  string
	Success bool
	TxHash  string
	Message string
}

// PrepareBuy validates a purchase and returns the calls the wallet must sign.
func (s *Service) PrepareBuy(ctx context.Context, req BuyRequest) (*Submission, error) {
	if !chain.IsAddress(req.Wallet) {
		return nil, ErrInvalidWallet
	}
	if req.RoundID == 0 {
		return nil, ErrInvalidInput
	}

	network, err := s.network(req.ChainID)
	if err != nil {
		return nil, err
	}
	token, err := network.PaymentToken(req.Token)
	if err != nil {
		return nil, err
	}
	units, err := amount.ParseUnits(req.Amount, token.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if units.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	slippage := s.opts.DefaultSlippage
	if req.Slippage != nil {
		slippage = *req.Slippage
	}
	if s.opts.MaxSlippage > 0 && slippage > s.opts.MaxSlippage {
		return nil, fmt.Errorf("%w: slippage %d exceeds %d", ErrInvalidInput, slippage, s.opts.MaxSlippage)
	}

	state, err := s.ledger.State(ctx, req.ChainID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, round.ErrPresaleNotFound
		}
		return nil, fmt.Errorf("getting presale state: %w", err)
	}
	if state.Paused {
		return nil, ErrPresalePaused
	}

	r, err := s.ledger.Round(ctx, req.ChainID, req.RoundID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, round.ErrRoundNotFound
		}
		return nil, fmt.Errorf("getting round: %w", err)
	}
	if r.StatusAt(req.Now) != round.StatusActive {
		return nil, ErrRoundNotActive
	}

	promoCode := strings.TrimSpace(req.PromoCode)
	if promoCode != "" {
		if err := s.checkPromoCode(ctx, req.ChainID, promoCode); err != nil {
			return nil, err
		}
	}

	sub := &Submission{
		ChainID:   req.ChainID,
		Wallet:    chain.NormalizeAddress(req.Wallet),
		Kind:      KindBuy,
		RoundID:   req.RoundID,
		Token:     string(token.Symbol),
		Amount:    units.String(),
		PromoCode: promoCode,
		Calls:     BuyCalls(network.PresaleAddress, token, req.RoundID, units, slippage, promoCode),
	}
	if err := s.create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// PrepareClaim returns the claim call for a round when the wallet has
// unlocked tokens waiting.
func (s *Service) PrepareClaim(ctx context.Context, req ClaimRequest) (*Submission, error) {
	if !chain.IsAddress(req.Wallet) {
		return nil, ErrInvalidWallet
	}
	network, err := s.network(req.ChainID)
	if err != nil {
		return nil, err
	}

	sched, err := s.scheduler.Schedule(ctx, req.ChainID, req.Wallet, req.RoundID, req.Now)
	if err != nil {
		return nil, err
	}
	if sched.Summary.Available == nil || sched.Summary.Available.Sign() <= 0 {
		return nil, ErrNothingToClaim
	}

	sub := &Submission{
		ChainID: req.ChainID,
		Wallet:  chain.NormalizeAddress(req.Wallet),
		Kind:    KindClaim,
		RoundID: req.RoundID,
		Amount:  sched.Summary.Available.String(),
		Calls:   []Call{ClaimCall(network.PresaleAddress, req.RoundID)},
	}
	if err := s.create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("claim prepared",
		"chain_id", req.ChainID,
		"round_id", req.RoundID,
		"tranches", len(vesting.Available(sched.Tranches)),
		"amount", sub.Amount,
	)
	return sub, nil
}

// Report records the outcome of a pending submission.
func (s *Service) Report(ctx context.Context, req ReportRequest) (*Submission, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrInvalidInput
	}
	sub, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Wallet != "" && !strings.EqualFold(sub.Wallet, req.Wallet) {
		return nil, ErrWalletMismatch
	}
	if sub.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	status := StatusFailed
	if req.Success {
		status = StatusConfirmed
	}
	now := time.Now().UTC()
	if err := s.repo.Resolve(ctx, sub.ID, status, req.TxHash, req.Message, now); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("resolving submission: %w", err)
	}

	sub.Status = status
	sub.TxHash = req.TxHash
	sub.Message = req.Message
	sub.UpdatedAt = now
	s.record(sub)
	return sub, nil
}

// Get fetches a submission by ID.
func (s *Service) Get(ctx context.Context, id string) (*Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("getting submission: %w", err)
	}
	return sub, nil
}

// List returns a wallet's submissions, newest first.
func (s *Service) List(ctx context.Context, wallet string, opts ListOptions) ([]Submission, error) {
	if !chain.IsAddress(wallet) {
		return nil, ErrInvalidWallet
	}
	return s.repo.List(ctx, chain.NormalizeAddress(wallet), opts)
}

func (s *Service) create(ctx context.Context, sub *Submission) error {
	now := time.Now().UTC()
	sub.ID = uuid.NewString()
	sub.Status = StatusPending
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if err := s.repo.Create(ctx, sub); err != nil {
		return fmt.Errorf("creating submission: %w", err)
	}
	s.record(sub)
	return nil
}

func (s *Service) network(chainID int64) (*chain.Network, error) {
	network, err := s.networks.Network(chainID)
	if err != nil {
		return nil, err
	}
	if !network.Deployed() {
		return nil, chain.ErrNotDeployed
	}
	return network, nil
}

func (s *Service) checkPromoCode(ctx context.Context, chainID int64, code string) error {
	stats, err := s.ledger.PromoterByCode(ctx, chainID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidPromoCode
		}
		return fmt.Errorf("getting promo code: %w", err)
	}
	if !stats.Active {
		return ErrInvalidPromoCode
	}
	return nil
}

func (s *Service) record(sub *Submission) {
	if s.recorder != nil {
		s.recorder.SubmissionRecorded(sub.Kind, sub.Status)
	}
	s.logger.Debug("submission recorded",
		"id", sub.ID,
		"kind", sub.Kind,
		"status", sub.Status,
		"chain_id", sub.ChainID,
	)
}
