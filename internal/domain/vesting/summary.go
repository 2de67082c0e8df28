package vesting

import "math/big"

// Summary aggregates a schedule by status.
type Summary struct {
	Total     *big.Int `json:"total"`
	Available *big.Int `json:"available"`
	Locked    *big.Int `json:"locked"`
	Claimed   *big.Int `json:"claimed"`
	// NextUnlock is the earliest unlock time among locked tranches, zero when
	// nothing is locked.
	NextUnlock int64 `json:"next_unlock,omitempty"`
}

// Summarize totals tranche amounts per status.
func Summarize(tranches []Tranche) Summary {
	s := Summary{
		Total:     new(big.Int),
		Available: new(big.Int),
		Locked:    new(big.Int),
		Claimed:   new(big.Int),
	}
	for _, t := range tranches {
		if t.Amount == nil {
			continue
		}
		s.Total.Add(s.Total, t.Amount)
		switch t.Status {
		case StatusAvailable:
			s.Available.Add(s.Available, t.Amount)
		case StatusClaimed:
			s.Claimed.Add(s.Claimed, t.Amount)
		case StatusLocked:
			s.Locked.Add(s.Locked, t.Amount)
		}
		if t.Status == StatusLocked && (s.NextUnlock == 0 || t.UnlockTime < s.NextUnlock) {
			s.NextUnlock = t.UnlockTime
		}
	}
	return s
}

// Available returns the tranches a wallet can claim right now.
func Available(tranches []Tranche) []Tranche {
	var out []Tranche
	for _, t := range tranches {
		if t.Status == StatusAvailable && t.Amount != nil && t.Amount.Sign() > 0 {
			out = append(out, t)
		}
	}
	return out
}
