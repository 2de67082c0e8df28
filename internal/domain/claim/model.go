package claim

import (
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
)

// Schedule is a wallet's vesting schedule for one round.
type Schedule struct {
	ChainID  int64                          `json:"chain_id"`
	Wallet   string                         `json:"wallet"`
	Round    *round.Round                   `json:"round"`
	Purchase vesting.Purchase               `json:"purchase"`
	Now      int64                          `json:"now"`
	Claimed  vesting.Claimed                `json:"claimed"`
	Tranches []vesting.Tranche              `json:"tranches"`
	Summary  vesting.Summary                `json:"summary"`
	Warnings []vesting.ConfigurationWarning `json:"warnings,omitempty"`
}

// Overview collects a wallet's schedules across every round it bought into.
type Overview struct {
	ChainID   int64           `json:"chain_id"`
	Wallet    string          `json:"wallet"`
	Now       int64           `json:"now"`
	Schedules []Schedule      `json:"schedules"`
	Totals    vesting.Summary `json:"totals"`
}
