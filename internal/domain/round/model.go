package round

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
)

// Status represents where a round is in its sale window
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Round is a sale window as recorded on the ledger. Prices and amounts are
// 18-decimal fixed point integers.
type Round struct {
	ChainID                            int64    `json:"chain_id"`
	ID                                 uint32   `json:"id"`
	TokenPrice                         *big.Int `json:"token_price"`
	TokenAmount                        *big.Int `json:"token_amount"`
	SoldAmount                         *big.Int `json:"sold_amount"`
	StartTime                          int64    `json:"start_time"`
	EndTime                            int64    `json:"end_time"`
	CliffDuration                      int64    `json:"cliff_duration"`
	VestingDuration                    int64    `json:"vesting_duration"`
	VestingTimeUnit                    int64    `json:"vesting_time_unit"`
	ReleasePercentageAfterCliff        uint32   `json:"release_percentage_after_cliff"`
	UserBonusPercentage                uint32   `json:"user_bonus_percentage"`
	PromoterRewardPercentage           uint32   `json:"promoter_reward_percentage"`
	ReleasePercentageInVestingPerMonth []uint32 `json:"release_percentage_in_vesting_per_month"`
}

// Name returns the display name of the round.
func (r *Round) Name() string {
	return fmt.Sprintf("Round %d", r.ID)
}

// StatusAt derives the sale status at instant now. The end time is inclusive.
func (r *Round) StatusAt(now int64) Status {
	switch {
	case now > r.EndTime:
		return StatusCompleted
	case now >= r.StartTime:
		return StatusActive
	default:
		return StatusUpcoming
	}
}

// Progress returns the sold share of the round as a whole percent rounded
// half up, or 0 when the round has no allocation.
func (r *Round) Progress() int64 {
	if r.TokenAmount == nil || r.TokenAmount.Sign() <= 0 || r.SoldAmount == nil {
		return 0
	}
	num := new(big.Int).Mul(r.SoldAmount, big.NewInt(100))
	num.Add(num, new(big.Int).Rsh(r.TokenAmount, 1))
	return num.Quo(num, r.TokenAmount).Int64()
}

// Remaining returns the unsold allocation, never negative.
func (r *Round) Remaining() *big.Int {
	if r.TokenAmount == nil {
		return new(big.Int)
	}
	out := new(big.Int).Set(r.TokenAmount)
	if r.SoldAmount != nil {
		out.Sub(out, r.SoldAmount)
	}
	if out.Sign() < 0 {
		out.SetInt64(0)
	}
	return out
}

// VestingConfig extracts the vesting parameters of the round.
func (r *Round) VestingConfig() vesting.Config {
	return vesting.Config{
		RoundEndTime:                       r.EndTime,
		CliffDuration:                      r.CliffDuration,
		ReleasePercentageAfterCliff:        r.ReleasePercentageAfterCliff,
		VestingDuration:                    r.VestingDuration,
		VestingTimeUnit:                    r.VestingTimeUnit,
		ReleasePercentageInVestingPerMonth: r.ReleasePercentageInVestingPerMonth,
	}
}

// State is the contract-level presale state.
type State struct {
	ChainID     int64  `json:"chain_id"`
	Owner       string `json:"owner"`
	Paused      bool   `json:"paused"`
	TotalRounds uint32 `json:"total_rounds"`
}

// IsOwner reports whether wallet owns the presale contract. Addresses compare
// case-insensitively.
func (s *State) IsOwner(wallet string) bool {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" || s.Owner == "" {
		return false
	}
	return strings.EqualFold(s.Owner, wallet)
}
