package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
)

// Identity is the caller as seen by the transport: the connected wallet and
// the chain it is on. Either may be empty.
type Identity struct {
	Wallet  string
	ChainID int64
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	DefaultChainID int64
	Recorder       RequestRecorder
	Clock          func() time.Time
}

// Handler dispatches MCP commands.
type Handler struct {
	services       Services
	defaultChainID int64
	recorder       RequestRecorder
	clock          func() time.Time
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services, opts HandlerOptions) *Handler {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		services:       services,
		defaultChainID: opts.DefaultChainID,
		recorder:       opts.Recorder,
		clock:          clock,
	}
}

// Handle dispatches requests to domain services and records the outcome.
func (h *Handler) Handle(ctx context.Context, id Identity, method string, params json.RawMessage) (any, error) {
	start := time.Now()
	result, err := h.dispatch(ctx, id, method, params)
	if h.recorder != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if apiErr := MapError(err); apiErr != nil {
				outcome = apiErr.Code
			}
		}
		h.recorder.RequestHandled(method, outcome, time.Since(start))
	}
	return result, err
}

func (h *Handler) dispatch(ctx context.Context, id Identity, method string, params json.RawMessage) (any, error) {
	switch method {
	case "get_presale_status":
		var req StatusParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.presaleStatus(ctx, h.chainID(id, req.ChainID), h.wallet(id, req.Wallet))
	case "list_rounds":
		var req ListRoundsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		chainID := h.chainID(id, req.ChainID)
		rounds, err := h.services.Rounds.List(ctx, chainID)
		if err != nil {
			return nil, mapError(err)
		}
		now := h.now()
		resp := ListRoundsResponse{ChainID: chainID, Rounds: make([]round.View, 0, len(rounds))}
		for i := range rounds {
			resp.Rounds = append(resp.Rounds, rounds[i].Describe(now))
		}
		return resp, nil
	case "get_round":
		var req GetRoundParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		chainID := h.chainID(id, req.ChainID)
		now := h.now()
		var (
			r   *round.Round
			err error
		)
		if req.RoundID == 0 {
			r, err = h.services.Rounds.Current(ctx, chainID, now)
		} else {
			r, err = h.services.Rounds.Get(ctx, chainID, req.RoundID)
		}
		if err != nil {
			return nil, mapError(err)
		}
		return r.Describe(now), nil
	case "estimate_tokens":
		var req EstimateTokensParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		chainID := h.chainID(id, req.ChainID)
		roundID, err := h.roundOrCurrent(ctx, chainID, req.RoundID)
		if err != nil {
			return nil, err
		}
		est, err := h.services.Rounds.EstimateTokens(ctx, chainID, roundID, req.Payment)
		if err != nil {
			return nil, mapError(err)
		}
		return est, nil
	case "get_vesting_schedule":
		var req VestingScheduleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		now := req.Now
		if now == 0 {
			now = h.now()
		}
		sched, err := h.services.Claims.Schedule(ctx, h.chainID(id, req.ChainID), h.wallet(id, req.Wallet), req.RoundID, now)
		if err != nil {
			return nil, mapError(err)
		}
		return describeSchedule(sched), nil
	case "get_claim_overview":
		var req ClaimOverviewParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		now := req.Now
		if now == 0 {
			now = h.now()
		}
		ov, err := h.services.Claims.Overview(ctx, h.chainID(id, req.ChainID), h.wallet(id, req.Wallet), now)
		if err != nil {
			return nil, mapError(err)
		}
		resp := ClaimOverviewResponse{
			ChainID:   ov.ChainID,
			Wallet:    ov.Wallet,
			Now:       ov.Now,
			Schedules: make([]ScheduleResponse, 0, len(ov.Schedules)),
			Totals:    describeSummary(ov.Totals),
		}
		for i := range ov.Schedules {
			resp.Schedules = append(resp.Schedules, describeSchedule(&ov.Schedules[i]))
		}
		return resp, nil
	case "get_promoter_stats":
		var req PromoterStatsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		chainID := h.chainID(id, req.ChainID)
		var (
			stats *promoter.Stats
			err   error
		)
		if req.PromoCode != "" {
			stats, err = h.services.Promoters.GetByCode(ctx, chainID, req.PromoCode)
		} else {
			stats, err = h.services.Promoters.Get(ctx, chainID, h.wallet(id, req.Address))
		}
		if err != nil {
			return nil, mapError(err)
		}
		return stats.Describe(), nil
	case "list_networks":
		return NetworksResponse{
			DefaultChainID: h.defaultChainID,
			Networks:       h.services.Networks.Networks(),
		}, nil
	case "prepare_buy":
		var req PrepareBuyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		chainID := h.chainID(id, req.ChainID)
		roundID, err := h.roundOrCurrent(ctx, chainID, req.RoundID)
		if err != nil {
			return nil, err
		}
		sub, err := h.services.Submissions.PrepareBuy(ctx, submission.BuyRequest{
			ChainID:   chainID,
			Wallet:    h.wallet(id, req.Wallet),
			RoundID:   roundID,
			Token:     req.Token,
			Amount:    req.Amount,
			PromoCode: req.PromoCode,
			Slippage:  req.Slippage,
			Now:       h.now(),
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.describeSubmission(sub), nil
	case "prepare_claim":
		var req PrepareClaimParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sub, err := h.services.Submissions.PrepareClaim(ctx, submission.ClaimRequest{
			ChainID: h.chainID(id, req.ChainID),
			Wallet:  h.wallet(id, req.Wallet),
			RoundID: req.RoundID,
			Now:     h.now(),
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.describeSubmission(sub), nil
	case "report_submission":
		var req ReportSubmissionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sub, err := h.services.Submissions.Report(ctx, submission.ReportRequest{
			ID:      req.ID,
			Wallet:  h.wallet(id, req.Wallet),
			Success: req.Success,
			TxHash:  req.TxHash,
			Message: req.Message,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.describeSubmission(sub), nil
	case "list_submissions":
		var req ListSubmissionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		subs, err := h.services.Submissions.List(ctx, h.wallet(id, req.Wallet), submission.ListOptions{
			ChainID: req.ChainID,
			Kind:    req.Kind,
			Status:  req.Status,
			Limit:   req.Limit,
			Offset:  req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := ListSubmissionsResponse{Submissions: make([]SubmissionResponse, 0, len(subs))}
		for i := range subs {
			resp.Submissions = append(resp.Submissions, h.describeSubmission(&subs[i]))
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func (h *Handler) presaleStatus(ctx context.Context, chainID int64, wallet string) (*PresaleStatusResponse, error) {
	network, err := h.services.Networks.Network(chainID)
	if err != nil {
		return nil, mapError(err)
	}
	status, err := h.services.Rounds.Status(ctx, chainID, wallet)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &PresaleStatusResponse{
		ChainID:     chainID,
		Network:     network.Name,
		Owner:       status.Owner,
		Paused:      status.Paused,
		TotalRounds: status.TotalRounds,
		Wallet:      status.Wallet,
		IsAdmin:     status.IsAdmin,
	}
	now := h.now()
	current, err := h.services.Rounds.Current(ctx, chainID, now)
	switch {
	case err == nil:
		view := current.Describe(now)
		resp.CurrentRound = &view
	case !errors.Is(err, round.ErrRoundNotFound):
		return nil, mapError(err)
	}
	return resp, nil
}

// roundOrCurrent returns roundID, or the active round when it is zero.
func (h *Handler) roundOrCurrent(ctx context.Context, chainID int64, roundID uint32) (uint32, error) {
	if roundID != 0 {
		return roundID, nil
	}
	r, err := h.services.Rounds.Current(ctx, chainID, h.now())
	if err != nil {
		return 0, mapError(err)
	}
	return r.ID, nil
}

func (h *Handler) describeSubmission(sub *submission.Submission) SubmissionResponse {
	resp := SubmissionResponse{Submission: *sub}
	if sub.TxHash == "" {
		return resp
	}
	if network, err := h.services.Networks.Network(sub.ChainID); err == nil {
		resp.ExplorerURL = network.TxURL(sub.TxHash)
	}
	return resp
}

func (h *Handler) chainID(id Identity, explicit int64) int64 {
	switch {
	case explicit != 0:
		return explicit
	case id.ChainID != 0:
		return id.ChainID
	default:
		return h.defaultChainID
	}
}

func (h *Handler) wallet(id Identity, explicit string) string {
	if w := strings.TrimSpace(explicit); w != "" {
		return w
	}
	return id.Wallet
}

func (h *Handler) now() int64 {
	return h.clock().Unix()
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
