package mcp

import (
	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
)

// Every params type accepts chain_id and wallet; they override the
// identity carried by the transport.

type StatusParams struct {
	ChainID int64  `json:"chain_id,omitempty"`
	Wallet  string `json:"wallet,omitempty"`
}

type ListRoundsParams struct {
	ChainID int64 `json:"chain_id,omitempty"`
}

type GetRoundParams struct {
	ChainID int64  `json:"chain_id,omitempty"`
	RoundID uint32 `json:"round_id,omitempty"`
}

type EstimateTokensParams struct {
	ChainID int64  `json:"chain_id,omitempty"`
	RoundID uint32 `json:"round_id,omitempty"`
	Payment string `json:"payment"`
}

type VestingScheduleParams struct {
	ChainID int64  `json:"chain_id,omitempty"`
	Wallet  string `json:"wallet,omitempty"`
	RoundID uint32 `json:"round_id"`
	Now     int64  `json:"now,omitempty"`
}

type ClaimOverviewParams struct {
	ChainID int64  `json:"chain_id,omitempty"`
	Wallet  string `json:"wallet,omitempty"`
	Now     int64  `json:"now,omitempty"`
}

type PromoterStatsParams struct {
	ChainID   int64  `json:"chain_id,omitempty"`
	Address   string `json:"address,omitempty"`
	PromoCode string `json:"promo_code,omitempty"`
}

type PrepareBuyParams struct {
	ChainID   int64   `json:"chain_id,omitempty"`
	Wallet    string  `json:"wallet,omitempty"`
	RoundID   uint32  `json:"round_id,omitempty"`
	Token     string  `json:"token"`
	Amount    string  `json:"amount"`
	PromoCode string  `json:"promo_code,omitempty"`
	Slippage  *uint32 `json:"slippage,omitempty"`
}

type PrepareClaimParams struct {
	ChainID int64  `json:"chain_id,omitempty"`
	Wallet  string `json:"wallet,omitempty"`
	RoundID uint32 `json:"round_id"`
}

type ReportSubmissionParams struct {
	ID      string `json:"id"`
	Wallet  string `json:"wallet,omitempty"`
	Success bool   `json:"success"`
	TxHash  string `json:"tx_hash,omitempty"`
	Message string `json:"message,omitempty"`
}

type ListSubmissionsParams struct {
	ChainID int64              `json:"chain_id,omitempty"`
	Wallet  string             `json:"wallet,omitempty"`
	Kind    *submission.Kind   `json:"kind,omitempty"`
	Status  *submission.Status `json:"status,omitempty"`
	Limit   int                `json:"limit,omitempty"`
	Offset  int                `json:"offset,omitempty"`
}

type PresaleStatusResponse struct {
	ChainID      int64       `json:"chain_id"`
	Network      string      `json:"network"`
	Owner        string      `json:"owner"`
	Paused       bool        `json:"paused"`
	TotalRounds  uint32      `json:"total_rounds"`
	Wallet       string      `json:"wallet,omitempty"`
	IsAdmin      bool        `json:"is_admin"`
	CurrentRound *round.View `json:"current_round,omitempty"`
}

type ListRoundsResponse struct {
	ChainID int64        `json:"chain_id"`
	Rounds  []round.View `json:"rounds"`
}

type NetworksResponse struct {
	DefaultChainID int64           `json:"default_chain_id"`
	Networks       []chain.Network `json:"networks"`
}

type TrancheView struct {
	Label         string         `json:"label"`
	Kind          vesting.Kind   `json:"kind"`
	Period        int            `json:"period"`
	UnlockTime    int64          `json:"unlock_time"`
	Amount        string         `json:"amount"`
	AmountUnits   string         `json:"amount_units"`
	Status        vesting.Status `json:"status"`
	RemainingTime int64          `json:"remaining_time,omitempty"`
}

type SummaryView struct {
	Total      string `json:"total"`
	Available  string `json:"available"`
	Locked     string `json:"locked"`
	Claimed    string `json:"claimed"`
	NextUnlock int64  `json:"next_unlock,omitempty"`
}

type WarningView struct {
	Code    vesting.WarningCode `json:"code"`
	Message string              `json:"message"`
}

type ScheduleResponse struct {
	ChainID   int64         `json:"chain_id"`
	Wallet    string        `json:"wallet"`
	Now       int64         `json:"now"`
	Round     round.View    `json:"round"`
	Purchased string        `json:"purchased"`
	Tranches  []TrancheView `json:"tranches"`
	Summary   SummaryView   `json:"summary"`
	Warnings  []WarningView `json:"warnings,omitempty"`
}

type ClaimOverviewResponse struct {
	ChainID   int64              `json:"chain_id"`
	Wallet    string             `json:"wallet"`
	Now       int64              `json:"now"`
	Schedules []ScheduleResponse `json:"schedules"`
	Totals    SummaryView        `json:"totals"`
}

type SubmissionResponse struct {
	submission.Submission
	ExplorerURL string `json:"explorer_url,omitempty"`
}

type ListSubmissionsResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
}

func describeSummary(s vesting.Summary) SummaryView {
	return SummaryView{
		Total:      amount.FormatTokens(s.Total),
		Available:  amount.FormatTokens(s.Available),
		Locked:     amount.FormatTokens(s.Locked),
		Claimed:    amount.FormatTokens(s.Claimed),
		NextUnlock: s.NextUnlock,
	}
}

func describeSchedule(s *claim.Schedule) ScheduleResponse {
	tranches := make([]TrancheView, 0, len(s.Tranches))
	for _, t := range s.Tranches {
		tranches = append(tranches, TrancheView{
			Label:         t.Label,
			Kind:          t.Kind,
			Period:        t.Period,
			UnlockTime:    t.UnlockTime,
			Amount:        amount.FormatTokens(t.Amount),
			AmountUnits:   amount.String(t.Amount),
			Status:        t.Status,
			RemainingTime: t.RemainingTime,
		})
	}
	var warnings []WarningView
	for _, w := range s.Warnings {
		warnings = append(warnings, WarningView{Code: w.Code, Message: w.Message})
	}
	resp := ScheduleResponse{
		ChainID:   s.ChainID,
		Wallet:    s.Wallet,
		Now:       s.Now,
		Purchased: amount.FormatTokens(s.Purchase.Amount),
		Tranches:  tranches,
		Summary:   describeSummary(s.Summary),
		Warnings:  warnings,
	}
	if s.Round != nil {
		resp.Round = s.Round.Describe(s.Now)
	}
	return resp
}
