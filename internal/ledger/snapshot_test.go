package ledger_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hmesh/presale-dashboard/internal/ledger"
	"github.com/hmesh/presale-dashboard/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const snapshotYAML = `
chains:
  - chain_id: 11155111
    owner: "0x00000000000000000000000000000000000000FF"
    paused: false
    total_rounds: 1
    rounds:
      - id: 1
        token_price: "150000000000000000"
        token_amount: "1000000000000000000000000"
        sold_amount: "250000000000000000000000"
        start_time: 1700000000
        end_time: 1702592000
        cliff_duration: 2592000
        vesting_time_unit: 2592000
        release_percentage_after_cliff: 20
        release_percentage_in_vesting_per_month: [40, 40]
      - id: 3
        token_price: "200000000000000000"
        token_amount: "500"
        sold_amount: "0"
        start_time: 1710000000
        end_time: 1720000000
    purchases:
      - wallet: "0x00000000000000000000000000000000000000AA"
        round_id: 1
        amount: "1000000000000000000000"
        claimed:
          immediate: true
          periods: [0]
    promoters:
      - address: "0x00000000000000000000000000000000000000bb"
        promo_code: " HMESH10 "
        active: true
        referral_count: 3
        total_raised: "900"
        total_reward: "27"
`

func TestParseSnapshot(t *testing.T) {
	states, err := ledger.ParseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)
	require.Len(t, states, 1)

	s := states[0]
	require.Equal(t, int64(11155111), s.State.ChainID)
	require.Equal(t, "0x00000000000000000000000000000000000000ff", s.State.Owner)
	require.Equal(t, uint32(3), s.State.TotalRounds, "total rounds covers the highest round id")

	require.Len(t, s.Rounds, 2)
	require.Equal(t, "1000000000000000000000000", s.Rounds[0].TokenAmount.String())
	require.Equal(t, []uint32{40, 40}, s.Rounds[0].ReleasePercentageInVestingPerMonth)

	require.Len(t, s.Purchases, 1)
	require.Equal(t, "0x00000000000000000000000000000000000000aa", s.Purchases[0].Wallet)
	require.True(t, s.Purchases[0].Claimed.Immediate)
	require.Equal(t, []int{0}, s.Purchases[0].Claimed.Periods)

	require.Len(t, s.Promoters, 1)
	require.Equal(t, "HMESH10", s.Promoters[0].PromoCode)
	require.Equal(t, int64(27), s.Promoters[0].TotalReward.Int64())
}

func TestParseSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "malformed yaml",
			yaml: "chains: [",
		},
		{
			name: "zero chain id",
			yaml: "chains:\n  - chain_id: 0\n",
		},
		{
			name: "duplicate chain",
			yaml: "chains:\n  - chain_id: 1\n  - chain_id: 1\n",
		},
		{
			name: "zero round id",
			yaml: "chains:\n  - chain_id: 1\n    rounds:\n      - id: 0\n",
		},
		{
			name: "duplicate round",
			yaml: "chains:\n  - chain_id: 1\n    rounds:\n      - id: 1\n      - id: 1\n",
		},
		{
			name: "end before start",
			yaml: "chains:\n  - chain_id: 1\n    rounds:\n      - id: 1\n        start_time: 10\n        end_time: 5\n",
		},
		{
			name: "bad amount",
			yaml: "chains:\n  - chain_id: 1\n    rounds:\n      - id: 1\n        token_price: \"1.5\"\n",
		},
		{
			name: "purchase in unknown round",
			yaml: "chains:\n  - chain_id: 1\n    purchases:\n      - wallet: \"0x00000000000000000000000000000000000000aa\"\n        round_id: 2\n        amount: \"1\"\n",
		},
		{
			name: "duplicate purchase",
			yaml: "chains:\n  - chain_id: 1\n    rounds:\n      - id: 1\n    purchases:\n" +
				"      - wallet: \"0x00000000000000000000000000000000000000aa\"\n        round_id: 1\n        amount: \"1\"\n" +
				"      - wallet: \"0x00000000000000000000000000000000000000AA\"\n        round_id: 1\n        amount: \"2\"\n",
		},
		{
			name: "purchase wallet not an address",
			yaml: "chains:\n  - chain_id: 1\n    rounds:\n      - id: 1\n    purchases:\n      - wallet: \"alice\"\n        round_id: 1\n        amount: \"1\"\n",
		},
		{
			name: "promoter not an address",
			yaml: "chains:\n  - chain_id: 1\n    promoters:\n      - address: \"0x12\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.ParseSnapshot([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestParseSnapshot_DuplicatePurchase(t *testing.T) {
	const head = "chains:\n  - chain_id: 1\n    rounds:\n      - id: 1\n      - id: 2\n    purchases:\n"
	const buy = "      - wallet: %q\n        round_id: %d\n        amount: \"1\"\n"

	states, err := ledger.ParseSnapshot([]byte(head +
		fmt.Sprintf(buy, "0x00000000000000000000000000000000000000aa", 1) +
		fmt.Sprintf(buy, "0x00000000000000000000000000000000000000aa", 2) +
		fmt.Sprintf(buy, "0x00000000000000000000000000000000000000bb", 1)))
	require.NoError(t, err)
	require.Len(t, states[0].Purchases, 3)

	_, err = ledger.ParseSnapshot([]byte(head +
		fmt.Sprintf(buy, "0x00000000000000000000000000000000000000aa", 1) +
		fmt.Sprintf(buy, "0x00000000000000000000000000000000000000AA", 1)))
	require.ErrorContains(t, err, "appears twice")
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0o600))

	states, err := ledger.LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, states, 1)

	_, err = ledger.LoadSnapshot(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

type mockMirror struct {
	mocks.LedgerReader
}

func (m *mockMirror) Import(ctx context.Context, states []ledger.ChainState) error {
	args := m.Called(ctx, states)
	return args.Error(0)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	states, err := ledger.ParseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)

	mirror := new(mockMirror)
	mirror.On("Import", ctx, mock.Anything).Return(nil).Once()

	require.NoError(t, ledger.Import(ctx, mirror, states, nil))
	mirror.AssertExpectations(t)
}
