package submission_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/config"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/hmesh/presale-dashboard/internal/repository"
	"github.com/hmesh/presale-dashboard/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	chainID = config.ChainSepolia
	wallet  = "0x00000000000000000000000000000000000000aa"
	presale = "0x00000000000000000000000000000000000000bb"
	usdt    = "0x00000000000000000000000000000000000000cc"
)

func registry() *chain.Registry {
	return chain.NewRegistry([]config.ChainConfig{
		{ChainID: chainID, Name: "Sepolia Testnet", PresaleAddress: presale, USDT: usdt},
		{ChainID: config.ChainMainnet, Name: "Ethereum Mainnet"},
	})
}

func activeRound() *round.Round {
	return &round.Round{
		ChainID:    chainID,
		ID:         1,
		TokenPrice: big.NewInt(150000000000000000),
		StartTime:  100,
		EndTime:    200,
	}
}

type fakeScheduler struct {
	sched *claim.Schedule
	err   error
}

func (f *fakeScheduler) Schedule(context.Context, int64, string, uint32, int64) (*claim.Schedule, error) {
	return f.sched, f.err
}

type countingRecorder struct {
	events []submission.Status
}

func (c *countingRecorder) SubmissionRecorded(_ submission.Kind, status submission.Status) {
	c.events = append(c.events, status)
}

func newService(repo *mocks.SubmissionRepository, ledger *mocks.LedgerReader, sched submission.Scheduler, rec submission.Recorder) *submission.Service {
	return submission.NewService(repo, ledger, registry(), sched, rec,
		submission.Options{DefaultSlippage: 0, MaxSlippage: 10}, nil)
}

func TestPrepareBuy_ETH(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SubmissionRepository{}
	ledger := &mocks.LedgerReader{}
	ledger.On("State", ctx, chainID).Return(&round.State{ChainID: chainID, TotalRounds: 1}, nil)
	ledger.On("Round", ctx, chainID, uint32(1)).Return(activeRound(), nil)
	ledger.On("PromoterByCode", ctx, chainID, "HMESH10").Return(&promoter.Stats{Active: true}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*submission.Submission")).Return(nil)

	rec := &countingRecorder{}
	sub, err := newService(repo, ledger, nil, rec).PrepareBuy(ctx, submission.BuyRequest{
		ChainID:   chainID,
		Wallet:    wallet,
		RoundID:   1,
		Token:     "eth",
		Amount:    "0.5",
		PromoCode: " HMESH10 ",
		Now:       150,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID)
	require.Equal(t, submission.StatusPending, sub.Status)
	require.Equal(t, "500000000000000000", sub.Amount)
	require.Len(t, sub.Calls, 1)
	require.Equal(t, submission.Call{
		Contract: presale,
		Function: "buyWithETH",
		Args:     []string{"1", "0", "HMESH10"},
		Value:    "500000000000000000",
	}, sub.Calls[0])
	require.Equal(t, []submission.Status{submission.StatusPending}, rec.events)
	repo.AssertExpectations(t)
}

func TestPrepareBuy_StablecoinNeedsApproval(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SubmissionRepository{}
	ledger := &mocks.LedgerReader{}
	ledger.On("State", ctx, chainID).Return(&round.State{ChainID: chainID}, nil)
	ledger.On("Round", ctx, chainID, uint32(1)).Return(activeRound(), nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	sub, err := newService(repo, ledger, nil, nil).PrepareBuy(ctx, submission.BuyRequest{
		ChainID: chainID,
		Wallet:  wallet,
		RoundID: 1,
		Token:   "USDT",
		Amount:  "25.1234567",
		Now:     200,
	})
	require.NoError(t, err)
	require.Len(t, sub.Calls, 2)
	require.Equal(t, "approve", sub.Calls[0].Function)
	require.Equal(t, usdt, sub.Calls[0].Contract)
	require.Equal(t, []string{presale, "25123456"}, sub.Calls[0].Args)
	require.Equal(t, "buyWithUSDT", sub.Calls[1].Function)
	require.Equal(t, []string{"25123456", "1", ""}, sub.Calls[1].Args)
}

func TestPrepareBuy_Validation(t *testing.T) {
	ctx := context.Background()
	ledger := &mocks.LedgerReader{}
	ledger.On("State", ctx, chainID).Return(&round.State{ChainID: chainID}, nil)
	ledger.On("Round", ctx, chainID, uint32(1)).Return(activeRound(), nil)
	ledger.On("Round", ctx, chainID, uint32(2)).Return(nil, repository.ErrNotFound)
	ledger.On("PromoterByCode", ctx, chainID, "OFF").Return(&promoter.Stats{Active: false}, nil)
	ledger.On("PromoterByCode", ctx, chainID, "GHOST").Return(nil, repository.ErrNotFound)

	svc := newService(&mocks.SubmissionRepository{}, ledger, nil, nil)
	valid := submission.BuyRequest{ChainID: chainID, Wallet: wallet, RoundID: 1, Token: "ETH", Amount: "1", Now: 150}
	tooMuch := uint32(11)

	cases := []struct {
		name   string
		modify func(r *submission.BuyRequest)
		want   error
	}{
		{"bad wallet", func(r *submission.BuyRequest) { r.Wallet = "0x1" }, submission.ErrInvalidWallet},
		{"zero round", func(r *submission.BuyRequest) { r.RoundID = 0 }, submission.ErrInvalidInput},
		{"unknown chain", func(r *submission.BuyRequest) { r.ChainID = 56 }, chain.ErrUnsupportedChain},
		{"not deployed", func(r *submission.BuyRequest) { r.ChainID = config.ChainMainnet }, chain.ErrNotDeployed},
		{"unknown token", func(r *submission.BuyRequest) { r.Token = "DAI" }, chain.ErrUnsupportedToken},
		{"zero amount", func(r *submission.BuyRequest) { r.Amount = "0" }, submission.ErrInvalidInput},
		{"garbage amount", func(r *submission.BuyRequest) { r.Amount = "lots" }, submission.ErrInvalidInput},
		{"huge exponent amount", func(r *submission.BuyRequest) { r.Amount = "1e100000" }, submission.ErrInvalidInput},
		{"tiny exponent amount", func(r *submission.BuyRequest) { r.Amount = "1e-100000" }, submission.ErrInvalidInput},
		{"amount past uint256", func(r *submission.BuyRequest) { r.Amount = "1e70" }, submission.ErrInvalidInput},
		{"slippage", func(r *submission.BuyRequest) { r.Slippage = &tooMuch }, submission.ErrInvalidInput},
		{"missing round", func(r *submission.BuyRequest) { r.RoundID = 2 }, round.ErrRoundNotFound},
		{"round over", func(r *submission.BuyRequest) { r.Now = 201 }, submission.ErrRoundNotActive},
		{"round not started", func(r *submission.BuyRequest) { r.Now = 99 }, submission.ErrRoundNotActive},
		{"inactive promo", func(r *submission.BuyRequest) { r.PromoCode = "OFF" }, submission.ErrInvalidPromoCode},
		{"unknown promo", func(r *submission.BuyRequest) { r.PromoCode = "GHOST" }, submission.ErrInvalidPromoCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.modify(&req)
			_, err := svc.PrepareBuy(ctx, req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPrepareBuy_Paused(t *testing.T) {
	ctx := context.Background()
	ledger := &mocks.LedgerReader{}
	ledger.On("State", ctx, chainID).Return(&round.State{ChainID: chainID, Paused: true}, nil)

	_, err := newService(&mocks.SubmissionRepository{}, ledger, nil, nil).PrepareBuy(ctx, submission.BuyRequest{
		ChainID: chainID, Wallet: wallet, RoundID: 1, Token: "ETH", Amount: "1", Now: 150,
	})
	require.ErrorIs(t, err, submission.ErrPresalePaused)
}

func TestPrepareClaim(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SubmissionRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	tranches := []vesting.Tranche{
		{Label: vesting.LabelImmediate, Amount: big.NewInt(200), Status: vesting.StatusAvailable},
		{Label: "Month 1", Amount: big.NewInt(400), Status: vesting.StatusLocked},
	}
	sched := &fakeScheduler{sched: &claim.Schedule{Tranches: tranches, Summary: vesting.Summarize(tranches)}}

	sub, err := newService(repo, &mocks.LedgerReader{}, sched, nil).PrepareClaim(ctx, submission.ClaimRequest{
		ChainID: chainID, Wallet: wallet, RoundID: 1, Now: 1600,
	})
	require.NoError(t, err)
	require.Equal(t, submission.KindClaim, sub.Kind)
	require.Equal(t, "200", sub.Amount)
	require.Equal(t, []submission.Call{{Contract: presale, Function: "claimTokens", Args: []string{"1"}, Value: "0"}}, sub.Calls)
}

func TestPrepareClaim_NothingAvailable(t *testing.T) {
	ctx := context.Background()
	tranches := []vesting.Tranche{{Label: vesting.LabelCliff, Amount: big.NewInt(0), Status: vesting.StatusLocked}}
	sched := &fakeScheduler{sched: &claim.Schedule{Tranches: tranches, Summary: vesting.Summarize(tranches)}}

	_, err := newService(&mocks.SubmissionRepository{}, &mocks.LedgerReader{}, sched, nil).PrepareClaim(ctx, submission.ClaimRequest{
		ChainID: chainID, Wallet: wallet, RoundID: 1, Now: 1,
	})
	require.ErrorIs(t, err, submission.ErrNothingToClaim)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	pending := &submission.Submission{ID: "sub-1", Wallet: wallet, Kind: submission.KindBuy, Status: submission.StatusPending}

	repo := &mocks.SubmissionRepository{}
	repo.On("Get", ctx, "sub-1").Return(pending, nil)
	repo.On("Resolve", ctx, "sub-1", submission.StatusConfirmed, "0xhash", "", mock.Anything).Return(nil)

	rec := &countingRecorder{}
	sub, err := newService(repo, &mocks.LedgerReader{}, nil, rec).Report(ctx, submission.ReportRequest{
		ID: "sub-1", Wallet: "0x00000000000000000000000000000000000000AA", Success: true, TxHash: "0xhash",
	})
	require.NoError(t, err)
	require.Equal(t, submission.StatusConfirmed, sub.Status)
	require.Equal(t, []submission.Status{submission.StatusConfirmed}, rec.events)
}

func TestReport_Errors(t *testing.T) {
	ctx := context.Background()
	done := &submission.Submission{ID: "sub-2", Wallet: wallet, Status: submission.StatusFailed}
	racing := &submission.Submission{ID: "sub-3", Wallet: wallet, Status: submission.StatusPending}

	repo := &mocks.SubmissionRepository{}
	repo.On("Get", ctx, "missing").Return(nil, repository.ErrNotFound)
	repo.On("Get", ctx, "sub-2").Return(done, nil)
	repo.On("Get", ctx, "sub-3").Return(racing, nil)
	repo.On("Resolve", ctx, "sub-3", submission.StatusFailed, "", "rejected", mock.Anything).Return(repository.ErrConflict)

	svc := newService(repo, &mocks.LedgerReader{}, nil, nil)

	_, err := svc.Report(ctx, submission.ReportRequest{ID: ""})
	require.ErrorIs(t, err, submission.ErrInvalidInput)

	_, err = svc.Report(ctx, submission.ReportRequest{ID: "missing"})
	require.ErrorIs(t, err, submission.ErrSubmissionNotFound)

	_, err = svc.Report(ctx, submission.ReportRequest{ID: "sub-2"})
	require.ErrorIs(t, err, submission.ErrAlreadyResolved)

	_, err = svc.Report(ctx, submission.ReportRequest{ID: "sub-2", Wallet: "0x00000000000000000000000000000000000000dd"})
	require.ErrorIs(t, err, submission.ErrWalletMismatch)

	_, err = svc.Report(ctx, submission.ReportRequest{ID: "sub-3", Message: "rejected"})
	require.ErrorIs(t, err, submission.ErrAlreadyResolved)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SubmissionRepository{}
	repo.On("List", ctx, wallet, submission.ListOptions{Limit: 5}).Return([]submission.Submission{{ID: "a"}}, nil)

	svc := newService(repo, &mocks.LedgerReader{}, nil, nil)
	subs, err := svc.List(ctx, "0x00000000000000000000000000000000000000AA", submission.ListOptions{Limit: 5})
	require.NoError(t, err)
	require.Len(t, subs, 1)

	_, err = svc.List(ctx, "bogus", submission.ListOptions{})
	require.ErrorIs(t, err, submission.ErrInvalidWallet)
}
