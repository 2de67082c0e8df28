package vesting

import (
	"fmt"
	"math/big"
)

var hundred = big.NewInt(100)

// Compute returns the tranches of a purchase at instant now, ordered by unlock
// time. It never fails; problems with the round parameters are reported as
// warnings and the affected tranches are skipped or clamped.
func Compute(cfg Config, purchase Purchase, now int64) ([]Tranche, []ConfigurationWarning) {
	return ComputeWithClaims(cfg, purchase, now, Claimed{})
}

// ComputeWithClaims is Compute with the ledger's claim state applied: unlocked
// tranches listed in claimed are reported as StatusClaimed.
func ComputeWithClaims(cfg Config, purchase Purchase, now int64, claimed Claimed) ([]Tranche, []ConfigurationWarning) {
	var warnings []ConfigurationWarning
	tranches := []Tranche{}

	if purchase.Amount == nil || purchase.Amount.Sign() == 0 {
		return tranches, warnings
	}
	if purchase.Amount.Sign() < 0 {
		warnings = append(warnings, warnf(WarnNegativeAmount, "purchase amount %s is negative", purchase.Amount))
		return tranches, warnings
	}

	cfg, warnings = normalize(cfg, warnings)
	cliffEnd := cfg.CliffEnd()
	if _, ok := addTime(cfg.RoundEndTime, cfg.CliffDuration); !ok {
		warnings = append(warnings, warnf(WarnTimeOverflow,
			"cliff end %d+%d is out of range; treated as never", cfg.RoundEndTime, cfg.CliffDuration))
	}

	if now < cliffEnd {
		tranches = append(tranches, Tranche{
			Label:         LabelCliff,
			Kind:          KindCliff,
			UnlockTime:    cliffEnd,
			Amount:        new(big.Int),
			Status:        StatusLocked,
			RemainingTime: cliffEnd - now,
		})
		return tranches, warnings
	}

	immediate := percentOf(purchase.Amount, cfg.ReleasePercentageAfterCliff)
	if immediate.Sign() > 0 {
		status := StatusAvailable
		if claimed.Immediate {
			status = StatusClaimed
		}
		tranches = append(tranches, Tranche{
			Label:      LabelImmediate,
			Kind:       KindImmediate,
			UnlockTime: cliffEnd,
			Amount:     immediate,
			Status:     status,
		})
	}

	remainder := new(big.Int).Sub(purchase.Amount, immediate)
	if remainder.Sign() < 0 {
		remainder.SetInt64(0)
	}

	periods := cfg.ReleasePercentageInVestingPerMonth
	if len(periods) > 0 && cfg.VestingTimeUnit == 0 {
		warnings = append(warnings, warnf(WarnZeroTimeUnit,
			"vesting time unit is zero with %d vesting periods; periods skipped", len(periods)))
		return tranches, warnings
	}

	for i, pct := range periods {
		start, ok := periodStart(cliffEnd, cfg.VestingTimeUnit, i)
		if !ok {
			warnings = append(warnings, warnf(WarnTimeOverflow,
				"Month %d and later unlock out of range; %d periods skipped", i+1, len(periods)-i))
			break
		}
		t := Tranche{
			Label:      fmt.Sprintf("Month %d", i+1),
			Kind:       KindPeriod,
			Period:     i,
			UnlockTime: start,
			Amount:     percentOf(remainder, pct),
		}
		switch {
		case now < start:
			t.Status = StatusLocked
			t.RemainingTime = start - now
			if claimed.period(i) {
				warnings = append(warnings, warnf(WarnClaimOnLockedPeriod,
					"ledger reports %s claimed before it unlocks", t.Label))
			}
		case claimed.period(i):
			t.Status = StatusClaimed
		default:
			t.Status = StatusAvailable
		}
		tranches = append(tranches, t)
	}

	return tranches, warnings
}

// Validate reports every configuration warning for cfg without computing a
// schedule.
func Validate(cfg Config) []ConfigurationWarning {
	cfg, warnings := normalize(cfg, nil)
	n := len(cfg.ReleasePercentageInVestingPerMonth)
	if n > 0 && cfg.VestingTimeUnit == 0 {
		warnings = append(warnings, warnf(WarnZeroTimeUnit,
			"vesting time unit is zero with %d vesting periods", n))
	}
	cliffEnd, ok := addTime(cfg.RoundEndTime, cfg.CliffDuration)
	if !ok {
		warnings = append(warnings, warnf(WarnTimeOverflow, "cliff end is out of range"))
	} else if n > 0 {
		if _, ok := periodStart(cliffEnd, cfg.VestingTimeUnit, n-1); !ok {
			warnings = append(warnings, warnf(WarnTimeOverflow, "last vesting period unlocks out of range"))
		}
	}
	return warnings
}

func normalize(cfg Config, warnings []ConfigurationWarning) (Config, []ConfigurationWarning) {
	if cfg.CliffDuration < 0 {
		warnings = append(warnings, warnf(WarnNegativeDuration, "cliff duration %d is negative; using 0", cfg.CliffDuration))
		cfg.CliffDuration = 0
	}
	if cfg.VestingTimeUnit < 0 {
		warnings = append(warnings, warnf(WarnNegativeDuration, "vesting time unit %d is negative; using 0", cfg.VestingTimeUnit))
		cfg.VestingTimeUnit = 0
	}
	if cfg.ReleasePercentageAfterCliff > 100 {
		warnings = append(warnings, warnf(WarnAfterCliffOver100,
			"release after cliff is %d%%", cfg.ReleasePercentageAfterCliff))
	}
	var sum uint64
	for _, p := range cfg.ReleasePercentageInVestingPerMonth {
		sum += uint64(p)
	}
	if sum > 100 {
		warnings = append(warnings, warnf(WarnPeriodSumOver100,
			"vesting periods release %d%% of the post-cliff remainder", sum))
	}
	return cfg, warnings
}

// percentOf returns floor(v * pct / 100) for non-negative v.
func percentOf(v *big.Int, pct uint32) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(int64(pct)))
	return out.Quo(out, hundred)
}
