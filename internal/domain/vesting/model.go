package vesting

import (
	"math"
	"math/big"
)

// Status represents the claimability of a tranche at the evaluation instant.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusAvailable Status = "available"
	StatusClaimed   Status = "claimed"
)

// Kind distinguishes the three tranche shapes a schedule can contain.
type Kind string

const (
	KindCliff     Kind = "cliff"
	KindImmediate Kind = "immediate"
	KindPeriod    Kind = "period"
)

const (
	LabelCliff     = "Cliff Period"
	LabelImmediate = "Immediate Release"
)

// Config holds the vesting parameters of a round as reported by the ledger.
// Times and durations are unix seconds; percentages are basis-100 integers.
type Config struct {
	RoundEndTime                       int64    `json:"round_end_time" yaml:"round_end_time"`
	CliffDuration                      int64    `json:"cliff_duration" yaml:"cliff_duration"`
	ReleasePercentageAfterCliff        uint32   `json:"release_percentage_after_cliff" yaml:"release_percentage_after_cliff"`
	VestingDuration                    int64    `json:"vesting_duration" yaml:"vesting_duration"`
	VestingTimeUnit                    int64    `json:"vesting_time_unit" yaml:"vesting_time_unit"`
	ReleasePercentageInVestingPerMonth []uint32 `json:"release_percentage_in_vesting_per_month" yaml:"release_percentage_in_vesting_per_month"`
}

// CliffEnd returns the instant at which the cliff resolves, saturated at
// math.MaxInt64.
func (c Config) CliffEnd() int64 {
	end, ok := addTime(c.RoundEndTime, c.CliffDuration)
	if !ok {
		return math.MaxInt64
	}
	return end
}

// FinalUnlock returns the unlock time of the last vesting period, or the cliff
// end when the round has no periods. It saturates at math.MaxInt64.
func (c Config) FinalUnlock() int64 {
	n := len(c.ReleasePercentageInVestingPerMonth)
	if n == 0 || c.VestingTimeUnit <= 0 {
		return c.CliffEnd()
	}
	last, ok := periodStart(c.CliffEnd(), c.VestingTimeUnit, n-1)
	if !ok {
		return math.MaxInt64
	}
	return last
}

// addTime returns a+b, or false when the sum does not fit an int64.
func addTime(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// periodStart returns cliffEnd + i*unit for a non-negative unit, or false
// when it does not fit an int64.
func periodStart(cliffEnd, unit int64, i int) (int64, bool) {
	if i == 0 {
		return cliffEnd, true
	}
	if unit > math.MaxInt64/int64(i) {
		return 0, false
	}
	return addTime(cliffEnd, int64(i)*unit)
}

// Purchase is the amount a wallet bought in a single round, in token base units.
type Purchase struct {
	RoundID uint32   `json:"round_id"`
	Amount  *big.Int `json:"amount"`
}

// Tranche is one discrete unlock event.
type Tranche struct {
	Label      string   `json:"label"`
	Kind       Kind     `json:"kind"`
	Period     int      `json:"period"`
	UnlockTime int64    `json:"unlock_time"`
	Amount     *big.Int `json:"amount"`
	Status     Status   `json:"status"`
	// RemainingTime is set only for locked tranches.
	RemainingTime int64 `json:"remaining_time,omitempty"`
}

// Claimed reports which tranches the ledger says were already withdrawn.
// The zero value means the ledger has no per-tranche claim signal.
type Claimed struct {
	Immediate bool  `json:"immediate" yaml:"immediate"`
	Periods   []int `json:"periods,omitempty" yaml:"periods,omitempty"`
}

// IsZero reports whether no tranche is marked as claimed.
func (c Claimed) IsZero() bool {
	return !c.Immediate && len(c.Periods) == 0
}

func (c Claimed) period(i int) bool {
	for _, p := range c.Periods {
		if p == i {
			return true
		}
	}
	return false
}
