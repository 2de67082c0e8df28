package ledger

import (
	"os"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Snapshot is an indexer export of presale ledger state. Amounts are base-10
// integer strings in token base units.
type Snapshot struct {
	Chains []ChainSnapshot `yaml:"chains"`
}

type ChainSnapshot struct {
	ChainID     int64              `yaml:"chain_id"`
	Owner       string             `yaml:"owner"`
	Paused      bool               `yaml:"paused"`
	TotalRounds uint32             `yaml:"total_rounds"`
	Rounds      []RoundSnapshot    `yaml:"rounds"`
	Purchases   []PurchaseSnapshot `yaml:"purchases"`
	Promoters   []PromoterSnapshot `yaml:"promoters"`
}

type RoundSnapshot struct {
	ID                                 uint32   `yaml:"id"`
	TokenPrice                         string   `yaml:"token_price"`
	TokenAmount                        string   `yaml:"token_amount"`
	SoldAmount                         string   `yaml:"sold_amount"`
	StartTime                          int64    `yaml:"start_time"`
	EndTime                            int64    `yaml:"end_time"`
	CliffDuration                      int64    `yaml:"cliff_duration"`
	VestingDuration                    int64    `yaml:"vesting_duration"`
	VestingTimeUnit                    int64    `yaml:"vesting_time_unit"`
	ReleasePercentageAfterCliff        uint32   `yaml:"release_percentage_after_cliff"`
	UserBonusPercentage                uint32   `yaml:"user_bonus_percentage"`
	PromoterRewardPercentage           uint32   `yaml:"promoter_reward_percentage"`
	ReleasePercentageInVestingPerMonth []uint32 `yaml:"release_percentage_in_vesting_per_month"`
}

type PurchaseSnapshot struct {
	Wallet  string          `yaml:"wallet"`
	RoundID uint32          `yaml:"round_id"`
	Amount  string          `yaml:"amount"`
	Claimed vesting.Claimed `yaml:"claimed"`
}

type PromoterSnapshot struct {
	Address       string `yaml:"address"`
	PromoCode     string `yaml:"promo_code"`
	Active        bool   `yaml:"active"`
	ReferralCount uint64 `yaml:"referral_count"`
	TotalRaised   string `yaml:"total_raised"`
	TotalReward   string `yaml:"total_reward"`
}

// ChainState is a decoded chain snapshot, ready to import into a mirror.
type ChainState struct {
	State     round.State
	Rounds    []round.Round
	Purchases []PurchaseRecord
	Promoters []promoter.Stats
}

// PurchaseRecord is a wallet's purchase in a round with its claim state.
type PurchaseRecord struct {
	Wallet   string
	Purchase vesting.Purchase
	Claimed  vesting.Claimed
}

// LoadSnapshot reads and decodes a YAML snapshot file.
func LoadSnapshot(path string) ([]ChainState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading snapshot")
	}
	return ParseSnapshot(data)
}

// ParseSnapshot decodes a YAML snapshot.
func ParseSnapshot(data []byte) ([]ChainState, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "parsing snapshot")
	}
	return snap.Decode()
}

// Decode validates the snapshot and converts it to domain types.
func (s *Snapshot) Decode() ([]ChainState, error) {
	states := make([]ChainState, 0, len(s.Chains))
	seen := make(map[int64]bool, len(s.Chains))
	for _, c := range s.Chains {
		if c.ChainID <= 0 {
			return nil, errors.Errorf("chain id %d is invalid", c.ChainID)
		}
		if seen[c.ChainID] {
			return nil, errors.Errorf("chain %d appears twice", c.ChainID)
		}
		seen[c.ChainID] = true

		state, err := c.decode()
		if err != nil {
			return nil, errors.Wrapf(err, "chain %d", c.ChainID)
		}
		states = append(states, state)
	}
	return states, nil
}

func (c *ChainSnapshot) decode() (ChainState, error) {
	out := ChainState{
		State: round.State{
			ChainID:     c.ChainID,
			Owner:       chain.NormalizeAddress(c.Owner),
			Paused:      c.Paused,
			TotalRounds: c.TotalRounds,
		},
	}

	rounds := make(map[uint32]bool, len(c.Rounds))
	for _, rs := range c.Rounds {
		r, err := rs.decode(c.ChainID)
		if err != nil {
			return ChainState{}, errors.Wrapf(err, "round %d", rs.ID)
		}
		if rounds[r.ID] {
			return ChainState{}, errors.Errorf("round %d appears twice", r.ID)
		}
		rounds[r.ID] = true
		out.Rounds = append(out.Rounds, r)
		if r.ID > out.State.TotalRounds {
			out.State.TotalRounds = r.ID
		}
	}

	type purchaseKey struct {
		wallet  string
		roundID uint32
	}
	purchases := make(map[purchaseKey]bool, len(c.Purchases))
	for _, ps := range c.Purchases {
		if !chain.IsAddress(ps.Wallet) {
			return ChainState{}, errors.Errorf("purchase wallet %q is not an address", ps.Wallet)
		}
		if !rounds[ps.RoundID] {
			return ChainState{}, errors.Errorf("purchase references unknown round %d", ps.RoundID)
		}
		key := purchaseKey{wallet: chain.NormalizeAddress(ps.Wallet), roundID: ps.RoundID}
		if purchases[key] {
			return ChainState{}, errors.Errorf("purchase of %s in round %d appears twice", key.wallet, ps.RoundID)
		}
		purchases[key] = true
		amt, err := amount.ParseBig(ps.Amount)
		if err != nil {
			return ChainState{}, errors.Wrapf(err, "purchase amount %q", ps.Amount)
		}
		out.Purchases = append(out.Purchases, PurchaseRecord{
			Wallet:   chain.NormalizeAddress(ps.Wallet),
			Purchase: vesting.Purchase{RoundID: ps.RoundID, Amount: amt},
			Claimed:  ps.Claimed,
		})
	}

	for _, p := range c.Promoters {
		if !chain.IsAddress(p.Address) {
			return ChainState{}, errors.Errorf("promoter %q is not an address", p.Address)
		}
		raised, err := amount.ParseBig(p.TotalRaised)
		if err != nil {
			return ChainState{}, errors.Wrapf(err, "promoter total raised %q", p.TotalRaised)
		}
		reward, err := amount.ParseBig(p.TotalReward)
		if err != nil {
			return ChainState{}, errors.Wrapf(err, "promoter total reward %q", p.TotalReward)
		}
		out.Promoters = append(out.Promoters, promoter.Stats{
			ChainID:       c.ChainID,
			Address:       chain.NormalizeAddress(p.Address),
			PromoCode:     strings.TrimSpace(p.PromoCode),
			Active:        p.Active,
			ReferralCount: p.ReferralCount,
			TotalRaised:   raised,
			TotalReward:   reward,
		})
	}

	return out, nil
}

func (rs *RoundSnapshot) decode(chainID int64) (round.Round, error) {
	if rs.ID == 0 {
		return round.Round{}, errors.New("round id must be positive")
	}
	if rs.EndTime < rs.StartTime {
		return round.Round{}, errors.Errorf("end time %d before start time %d", rs.EndTime, rs.StartTime)
	}
	price, err := amount.ParseBig(rs.TokenPrice)
	if err != nil {
		return round.Round{}, errors.Wrap(err, "token price")
	}
	total, err := amount.ParseBig(rs.TokenAmount)
	if err != nil {
		return round.Round{}, errors.Wrap(err, "token amount")
	}
	sold, err := amount.ParseBig(rs.SoldAmount)
	if err != nil {
		return round.Round{}, errors.Wrap(err, "sold amount")
	}
	return round.Round{
		ChainID:                            chainID,
		ID:                                 rs.ID,
		TokenPrice:                         price,
		TokenAmount:                        total,
		SoldAmount:                         sold,
		StartTime:                          rs.StartTime,
		EndTime:                            rs.EndTime,
		CliffDuration:                      rs.CliffDuration,
		VestingDuration:                    rs.VestingDuration,
		VestingTimeUnit:                    rs.VestingTimeUnit,
		ReleasePercentageAfterCliff:        rs.ReleasePercentageAfterCliff,
		UserBonusPercentage:                rs.UserBonusPercentage,
		PromoterRewardPercentage:           rs.PromoterRewardPercentage,
		ReleasePercentageInVestingPerMonth: rs.ReleasePercentageInVestingPerMonth,
	}, nil
}
