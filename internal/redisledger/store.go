// Package redisledger is a Redis mirror of presale ledger state, for
// deployments that share one mirror between several dashboard instances.
package redisledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/hmesh/presale-dashboard/internal/ledger"
	"github.com/hmesh/presale-dashboard/internal/repository"
	"github.com/redis/go-redis/v9"
)

type stateRecord struct {
	Owner       string `msgpack:"owner"`
	Paused      bool   `msgpack:"paused"`
	TotalRounds uint32 `msgpack:"total_rounds"`
}

type roundRecord struct {
	TokenPrice                  string   `msgpack:"token_price"`
	TokenAmount                 string   `msgpack:"token_amount"`
	SoldAmount                  string   `msgpack:"sold_amount"`
	StartTime                   int64    `msgpack:"start_time"`
	EndTime                     int64    `msgpack:"end_time"`
	CliffDuration               int64    `msgpack:"cliff_duration"`
	VestingDuration             int64    `msgpack:"vesting_duration"`
	VestingTimeUnit             int64    `msgpack:"vesting_time_unit"`
	ReleasePercentageAfterCliff uint32   `msgpack:"release_after_cliff"`
	UserBonusPercentage         uint32   `msgpack:"user_bonus"`
	PromoterRewardPercentage    uint32   `msgpack:"promoter_reward"`
	VestingPercentages          []uint32 `msgpack:"vesting_percentages"`
}

type purchaseRecord struct {
	Amount           string `msgpack:"amount"`
	ClaimedImmediate bool   `msgpack:"claimed_immediate"`
	ClaimedPeriods   []int  `msgpack:"claimed_periods"`
}

type promoterRecord struct {
	PromoCode     string `msgpack:"promo_code"`
	Active        bool   `msgpack:"active"`
	ReferralCount uint64 `msgpack:"referral_count"`
	TotalRaised   string `msgpack:"total_raised"`
	TotalReward   string `msgpack:"total_reward"`
}

// Store implements ledger.Mirror on Redis. Keys have the form
// <prefix>:chain:<id>:<kind>:<key>.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New creates a Store writing keys under prefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "presale"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) chainPrefix(chainID int64) string {
	return fmt.Sprintf("%s:chain:%d", s.prefix, chainID)
}

func (s *Store) states(chainID int64) *bucket[stateRecord] {
	return newBucket[stateRecord](s.client, s.chainPrefix(chainID))
}

func (s *Store) rounds(chainID int64) *bucket[roundRecord] {
	return newBucket[roundRecord](s.client, s.chainPrefix(chainID)+":round")
}

func (s *Store) purchases(chainID int64) *bucket[purchaseRecord] {
	return newBucket[purchaseRecord](s.client, s.chainPrefix(chainID)+":purchase")
}

func (s *Store) promoters(chainID int64) *bucket[promoterRecord] {
	return newBucket[promoterRecord](s.client, s.chainPrefix(chainID)+":promoter")
}

func (s *Store) codes(chainID int64) *bucket[string] {
	return newBucket[string](s.client, s.chainPrefix(chainID)+":code")
}

func purchaseKey(wallet string, roundID uint32) string {
	return fmt.Sprintf("%s:%d", chain.NormalizeAddress(wallet), roundID)
}

func (s *Store) State(ctx context.Context, chainID int64) (*round.State, error) {
	rec, err := s.states(chainID).get(ctx, "state")
	if err != nil {
		return nil, err
	}
	return &round.State{
		ChainID:     chainID,
		Owner:       rec.Owner,
		Paused:      rec.Paused,
		TotalRounds: rec.TotalRounds,
	}, nil
}

func (s *Store) Round(ctx context.Context, chainID int64, id uint32) (*round.Round, error) {
	rec, err := s.rounds(chainID).get(ctx, fmt.Sprint(id))
	if err != nil {
		return nil, err
	}
	price, err := parseAmount(rec.TokenPrice)
	if err != nil {
		return nil, err
	}
	total, err := parseAmount(rec.TokenAmount)
	if err != nil {
		return nil, err
	}
	sold, err := parseAmount(rec.SoldAmount)
	if err != nil {
		return nil, err
	}
	return &round.Round{
		ChainID:                            chainID,
		ID:                                 id,
		TokenPrice:                         price,
		TokenAmount:                        total,
		SoldAmount:                         sold,
		StartTime:                          rec.StartTime,
		EndTime:                            rec.EndTime,
		CliffDuration:                      rec.CliffDuration,
		VestingDuration:                    rec.VestingDuration,
		VestingTimeUnit:                    rec.VestingTimeUnit,
		ReleasePercentageAfterCliff:        rec.ReleasePercentageAfterCliff,
		UserBonusPercentage:                rec.UserBonusPercentage,
		PromoterRewardPercentage:           rec.PromoterRewardPercentage,
		ReleasePercentageInVestingPerMonth: rec.VestingPercentages,
	}, nil
}

func (s *Store) Purchase(ctx context.Context, chainID int64, wallet string, roundID uint32) (*vesting.Purchase, error) {
	rec, err := s.purchases(chainID).get(ctx, purchaseKey(wallet, roundID))
	if err != nil {
		return nil, err
	}
	amt, err := parseAmount(rec.Amount)
	if err != nil {
		return nil, err
	}
	return &vesting.Purchase{RoundID: roundID, Amount: amt}, nil
}

func (s *Store) Claimed(ctx context.Context, chainID int64, wallet string, roundID uint32) (vesting.Claimed, error) {
	rec, err := s.purchases(chainID).get(ctx, purchaseKey(wallet, roundID))
	if err != nil {
		return vesting.Claimed{}, err
	}
	return vesting.Claimed{Immediate: rec.ClaimedImmediate, Periods: rec.ClaimedPeriods}, nil
}

func (s *Store) Promoter(ctx context.Context, chainID int64, address string) (*promoter.Stats, error) {
	address = chain.NormalizeAddress(address)
	rec, err := s.promoters(chainID).get(ctx, address)
	if err != nil {
		return nil, err
	}
	raised, err := parseAmount(rec.TotalRaised)
	if err != nil {
		return nil, err
	}
	reward, err := parseAmount(rec.TotalReward)
	if err != nil {
		return nil, err
	}
	return &promoter.Stats{
		ChainID:       chainID,
		Address:       address,
		PromoCode:     rec.PromoCode,
		Active:        rec.Active,
		ReferralCount: rec.ReferralCount,
		TotalRaised:   raised,
		TotalReward:   reward,
	}, nil
}

func (s *Store) PromoterByCode(ctx context.Context, chainID int64, code string) (*promoter.Stats, error) {
	address, err := s.codes(chainID).get(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	return s.Promoter(ctx, chainID, address)
}

// Import replaces each chain's keys inside a MULTI/EXEC transaction.
func (s *Store) Import(ctx context.Context, states []ledger.ChainState) error {
	for _, st := range states {
		if err := s.importChain(ctx, st); err != nil {
			return fmt.Errorf("failed to import chain %d: %w", st.State.ChainID, err)
		}
	}
	return nil
}

func (s *Store) importChain(ctx context.Context, st ledger.ChainState) error {
	chainID := st.State.ChainID
	for _, p := range st.Purchases {
		if !hasRound(st.Rounds, p.Purchase.RoundID) {
			return fmt.Errorf("purchase references unknown round %d: %w", p.Purchase.RoundID, repository.ErrInvalidInput)
		}
	}

	stale, err := s.keys(ctx, s.chainPrefix(chainID)+":*")
	if err != nil {
		return err
	}

	entries, err := s.encodeChain(st)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(stale) > 0 {
			pipe.Del(ctx, stale...)
		}
		for _, e := range entries {
			pipe.Set(ctx, e.key, e.data, 0)
		}
		return nil
	})
	return err
}

func (s *Store) encodeChain(st ledger.ChainState) ([]entry, error) {
	chainID := st.State.ChainID
	entries := make([]entry, 0, 1+len(st.Rounds)+len(st.Purchases)+2*len(st.Promoters))
	add := func(e entry, err error) error {
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	}

	err := add(s.states(chainID).encode("state", stateRecord{
		Owner:       chain.NormalizeAddress(st.State.Owner),
		Paused:      st.State.Paused,
		TotalRounds: st.State.TotalRounds,
	}))
	if err != nil {
		return nil, err
	}

	for _, r := range st.Rounds {
		err := add(s.rounds(chainID).encode(fmt.Sprint(r.ID), roundRecord{
			TokenPrice:                  amount.String(r.TokenPrice),
			TokenAmount:                 amount.String(r.TokenAmount),
			SoldAmount:                  amount.String(r.SoldAmount),
			StartTime:                   r.StartTime,
			EndTime:                     r.EndTime,
			CliffDuration:               r.CliffDuration,
			VestingDuration:             r.VestingDuration,
			VestingTimeUnit:             r.VestingTimeUnit,
			ReleasePercentageAfterCliff: r.ReleasePercentageAfterCliff,
			UserBonusPercentage:         r.UserBonusPercentage,
			PromoterRewardPercentage:    r.PromoterRewardPercentage,
			VestingPercentages:          r.ReleasePercentageInVestingPerMonth,
		}))
		if err != nil {
			return nil, err
		}
	}

	for _, p := range st.Purchases {
		err := add(s.purchases(chainID).encode(purchaseKey(p.Wallet, p.Purchase.RoundID), purchaseRecord{
			Amount:           amount.String(p.Purchase.Amount),
			ClaimedImmediate: p.Claimed.Immediate,
			ClaimedPeriods:   p.Claimed.Periods,
		}))
		if err != nil {
			return nil, err
		}
	}

	for _, p := range st.Promoters {
		address := chain.NormalizeAddress(p.Address)
		err := add(s.promoters(chainID).encode(address, promoterRecord{
			PromoCode:     p.PromoCode,
			Active:        p.Active,
			ReferralCount: p.ReferralCount,
			TotalRaised:   amount.String(p.TotalRaised),
			TotalReward:   amount.String(p.TotalReward),
		}))
		if err != nil {
			return nil, err
		}
		if p.PromoCode != "" {
			if err := add(s.codes(chainID).encode(p.PromoCode, address)); err != nil {
				return nil, err
			}
		}
	}
	return entries, nil
}

func (s *Store) keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return keys, nil
}

func hasRound(rounds []round.Round, id uint32) bool {
	for _, r := range rounds {
		if r.ID == id {
			return true
		}
	}
	return false
}

func parseAmount(s string) (*big.Int, error) {
	v, err := amount.ParseBig(s)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}
	return v, nil
}

var _ ledger.Mirror = (*Store)(nil)
