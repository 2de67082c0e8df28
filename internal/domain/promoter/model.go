package promoter

import (
	"math/big"

	"github.com/hmesh/presale-dashboard/internal/domain/amount"
)

// Stats are the referral figures the ledger keeps for a promoter.
type Stats struct {
	ChainID       int64    `json:"chain_id"`
	Address       string   `json:"address"`
	PromoCode     string   `json:"promo_code"`
	Active        bool     `json:"active"`
	ReferralCount uint64   `json:"referral_count"`
	TotalRaised   *big.Int `json:"total_raised"`
	TotalReward   *big.Int `json:"total_reward"`
}

// View is the display form of promoter stats
type View struct {
	Address       string `json:"address"`
	PromoCode     string `json:"promo_code"`
	Active        bool   `json:"active"`
	ReferralCount uint64 `json:"referral_count"`
	TotalRaised   string `json:"total_raised"`
	TotalReward   string `json:"total_reward"`
}

// Describe renders stats for display.
func (s *Stats) Describe() View {
	return View{
		Address:       s.Address,
		PromoCode:     s.PromoCode,
		Active:        s.Active,
		ReferralCount: s.ReferralCount,
		TotalRaised:   amount.FormatTokens(s.TotalRaised),
		TotalReward:   amount.FormatTokens(s.TotalReward),
	}
}
