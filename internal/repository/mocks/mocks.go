package mocks

import (
	"context"
	"time"

	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/stretchr/testify/mock"
)

// LedgerReader is a mock for ledger.Reader.
type LedgerReader struct {
	mock.Mock
}

func (m *LedgerReader) State(ctx context.Context, chainID int64) (*round.State, error) {
	args := m.Called(ctx, chainID)
	if state, ok := args.Get(0).(*round.State); ok {
		return state, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerReader) Round(ctx context.Context, chainID int64, id uint32) (*round.Round, error) {
	args := m.Called(ctx, chainID, id)
	if r, ok := args.Get(0).(*round.Round); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerReader) Purchase(ctx context.Context, chainID int64, wallet string, roundID uint32) (*vesting.Purchase, error) {
	args := m.Called(ctx, chainID, wallet, roundID)
	if p, ok := args.Get(0).(*vesting.Purchase); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerReader) Claimed(ctx context.Context, chainID int64, wallet string, roundID uint32) (vesting.Claimed, error) {
	args := m.Called(ctx, chainID, wallet, roundID)
	if c, ok := args.Get(0).(vesting.Claimed); ok {
		return c, args.Error(1)
	}
	return vesting.Claimed{}, args.Error(1)
}

func (m *LedgerReader) Promoter(ctx context.Context, chainID int64, address string) (*promoter.Stats, error) {
	args := m.Called(ctx, chainID, address)
	if stats, ok := args.Get(0).(*promoter.Stats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerReader) PromoterByCode(ctx context.Context, chainID int64, code string) (*promoter.Stats, error) {
	args := m.Called(ctx, chainID, code)
	if stats, ok := args.Get(0).(*promoter.Stats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

// SubmissionRepository is a mock for submission.Repository.
type SubmissionRepository struct {
	mock.Mock
}

func (m *SubmissionRepository) Create(ctx context.Context, sub *submission.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *SubmissionRepository) Get(ctx context.Context, id string) (*submission.Submission, error) {
	args := m.Called(ctx, id)
	if sub, ok := args.Get(0).(*submission.Submission); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubmissionRepository) Resolve(ctx context.Context, id string, status submission.Status, txHash, message string, at time.Time) error {
	args := m.Called(ctx, id, status, txHash, message, at)
	return args.Error(0)
}

func (m *SubmissionRepository) List(ctx context.Context, wallet string, opts submission.ListOptions) ([]submission.Submission, error) {
	args := m.Called(ctx, wallet, opts)
	if list, ok := args.Get(0).([]submission.Submission); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
