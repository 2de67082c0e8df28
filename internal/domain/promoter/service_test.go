package promoter_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/repository"
	"github.com/hmesh/presale-dashboard/internal/repository/mocks"
	"github.com/stretchr/testify/require"
)

func TestPromoterService_Get(t *testing.T) {
	ctx := context.Background()
	address := "0x1111111111111111111111111111111111111111"
	stats := &promoter.Stats{
		ChainID:       1,
		Address:       address,
		PromoCode:     "HMESH10",
		Active:        true,
		ReferralCount: 4,
		TotalRaised:   new(big.Int).Mul(big.NewInt(25), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
		TotalReward:   big.NewInt(0),
	}

	ledger := &mocks.LedgerReader{}
	ledger.On("Promoter", ctx, int64(1), address).Return(stats, nil)
	ledger.On("PromoterByCode", ctx, int64(1), "NOPE").Return(nil, repository.ErrNotFound)

	svc := promoter.NewService(ledger, nil)
	got, err := svc.Get(ctx, 1, address)
	require.NoError(t, err)
	require.Equal(t, "25.00", got.Describe().TotalRaised)

	_, err = svc.GetByCode(ctx, 1, "NOPE")
	require.ErrorIs(t, err, promoter.ErrPromoterNotFound)

	_, err = svc.Get(ctx, 1, " ")
	require.ErrorIs(t, err, promoter.ErrInvalidInput)
}
