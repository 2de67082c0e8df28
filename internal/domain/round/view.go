package round

import (
	"math/big"

	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/shopspring/decimal"
)

// View is the display form of a round.
type View struct {
	ID                          uint32   `json:"id"`
	Name                        string   `json:"name"`
	Status                      Status   `json:"status"`
	Price                       string   `json:"price"`
	Progress                    int64    `json:"progress"`
	TokenAmount                 string   `json:"token_amount"`
	SoldAmount                  string   `json:"sold_amount"`
	Remaining                   string   `json:"remaining"`
	StartTime                   int64    `json:"start_time"`
	EndTime                     int64    `json:"end_time"`
	CliffEndTime                int64    `json:"cliff_end_time"`
	VestingDuration             int64    `json:"vesting_duration"`
	VestingTimeUnit             int64    `json:"vesting_time_unit"`
	ReleasePercentageAfterCliff uint32   `json:"release_percentage_after_cliff"`
	VestingPercentages          []uint32 `json:"vesting_percentages"`
	UserBonusPercentage         uint32   `json:"user_bonus_percentage"`
	PromoterRewardPercentage    uint32   `json:"promoter_reward_percentage"`
}

// Describe renders the round for display at instant now.
func (r *Round) Describe(now int64) View {
	percentages := r.ReleasePercentageInVestingPerMonth
	if percentages == nil {
		percentages = []uint32{}
	}
	return View{
		ID:                          r.ID,
		Name:                        r.Name(),
		Status:                      r.StatusAt(now),
		Price:                       amount.FormatUSD(r.TokenPrice),
		Progress:                    r.Progress(),
		TokenAmount:                 amount.FormatTokens(r.TokenAmount),
		SoldAmount:                  amount.FormatTokens(r.SoldAmount),
		Remaining:                   amount.FormatTokens(r.Remaining()),
		StartTime:                   r.StartTime,
		EndTime:                     r.EndTime,
		CliffEndTime:                r.VestingConfig().CliffEnd(),
		VestingDuration:             r.VestingDuration,
		VestingTimeUnit:             r.VestingTimeUnit,
		ReleasePercentageAfterCliff: r.ReleasePercentageAfterCliff,
		VestingPercentages:          percentages,
		UserBonusPercentage:         r.UserBonusPercentage,
		PromoterRewardPercentage:    r.PromoterRewardPercentage,
	}
}

// Estimate is the token quantity a payment buys at a round's price.
type Estimate struct {
	RoundID uint32 `json:"round_id"`
	Payment string `json:"payment"`
	Price   string `json:"price"`
	Tokens  string `json:"tokens"`
	// TokenUnits is the estimate in 18-decimal base units, truncated.
	TokenUnits string `json:"token_units"`
}

// EstimateTokens divides a dollar-denominated payment by the round price.
func (r *Round) EstimateTokens(payment decimal.Decimal) (Estimate, error) {
	if r.TokenPrice == nil || r.TokenPrice.Sign() <= 0 {
		return Estimate{}, ErrNoPrice
	}
	if !payment.IsPositive() {
		return Estimate{}, ErrInvalidInput
	}

	// tokens = payment * 1e18 / price, in base units: payment * 1e36 / price.
	paymentUnits := payment.Shift(2 * amount.TokenDecimals).Truncate(0).BigInt()
	units := new(big.Int).Quo(paymentUnits, r.TokenPrice)

	return Estimate{
		RoundID:    r.ID,
		Payment:    payment.String(),
		Price:      amount.FormatUSD(r.TokenPrice),
		Tokens:     amount.FormatTokens(units),
		TokenUnits: units.String(),
	}, nil
}
