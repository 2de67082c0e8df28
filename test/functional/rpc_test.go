package functional_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hmesh/presale-dashboard/internal/testserver"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type tranche struct {
	Label         string `json:"label"`
	Kind          string `json:"kind"`
	UnlockTime    int64  `json:"unlock_time"`
	Amount        string `json:"amount"`
	AmountUnits   string `json:"amount_units"`
	Status        string `json:"status"`
	RemainingTime int64  `json:"remaining_time"`
}

type summary struct {
	Total      string `json:"total"`
	Available  string `json:"available"`
	Locked     string `json:"locked"`
	Claimed    string `json:"claimed"`
	NextUnlock int64  `json:"next_unlock"`
}

type call struct {
	Contract string   `json:"contract"`
	Function string   `json:"function"`
	Args     []string `json:"args"`
	Value    string   `json:"value"`
}

type submissionResult struct {
	ID          string `json:"id"`
	Wallet      string `json:"wallet"`
	Kind        string `json:"kind"`
	RoundID     uint32 `json:"round_id"`
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	Calls       []call `json:"calls"`
	Status      string `json:"status"`
	TxHash      string `json:"tx_hash"`
	ExplorerURL string `json:"explorer_url"`
}

// rpcCall posts a JSON-RPC request as the fixture wallet.
func rpcCall(t *testing.T, ts *testserver.TestServer, method string, params any) rpcResponse {
	t.Helper()
	return rpcCallAs(t, ts, testserver.Wallet, method, params)
}

func rpcCallAs(t *testing.T, ts *testserver.TestServer, wallet, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	if wallet != "" {
		req.Header.Set("X-Wallet-Address", wallet)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// rpcResult calls a method that must succeed and decodes its result.
func rpcResult(t *testing.T, ts *testserver.TestServer, method string, params any, out any) {
	t.Helper()
	resp := rpcCall(t, ts, method, params)
	require.Nil(t, resp.Error, "RPC error: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, out))
}

func requireAppError(t *testing.T, resp rpcResponse, code string) {
	t.Helper()
	require.NotNil(t, resp.Error)
	require.Equal(t, -32000, resp.Error.Code)
	require.Equal(t, code, resp.Error.Data["code"])
	require.NotEmpty(t, resp.Error.Data["recovery_hint"])
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "token")

	body := `{"jsonrpc":"2.0","method":"list_rounds","id":1}`

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFunctional_PresaleStatus(t *testing.T) {
	ts := testserver.New(t, "token")

	var status struct {
		ChainID      int64  `json:"chain_id"`
		Network      string `json:"network"`
		Owner        string `json:"owner"`
		TotalRounds  uint32 `json:"total_rounds"`
		Wallet       string `json:"wallet"`
		IsAdmin      bool   `json:"is_admin"`
		CurrentRound *struct {
			ID     uint32 `json:"id"`
			Status string `json:"status"`
			Price  string `json:"price"`
		} `json:"current_round"`
	}
	rpcResult(t, ts, "get_presale_status", nil, &status)
	require.Equal(t, testserver.ChainID, status.ChainID)
	require.Equal(t, "Sepolia Testnet", status.Network)
	require.Equal(t, testserver.Owner, status.Owner)
	require.Equal(t, uint32(2), status.TotalRounds)
	require.Equal(t, testserver.Wallet, status.Wallet)
	require.False(t, status.IsAdmin)
	require.NotNil(t, status.CurrentRound)
	require.Equal(t, uint32(2), status.CurrentRound.ID)
	require.Equal(t, "active", status.CurrentRound.Status)
	require.Equal(t, "$0.10", status.CurrentRound.Price)

	resp := rpcCallAs(t, ts, testserver.Owner, "get_presale_status", nil)
	require.Nil(t, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, &status))
	require.True(t, status.IsAdmin)
}

func TestFunctional_Rounds(t *testing.T) {
	ts := testserver.New(t, "token")

	var rounds struct {
		Rounds []struct {
			ID     uint32 `json:"id"`
			Status string `json:"status"`
		} `json:"rounds"`
	}
	rpcResult(t, ts, "list_rounds", nil, &rounds)
	require.Len(t, rounds.Rounds, 2)
	require.Equal(t, "completed", rounds.Rounds[0].Status)
	require.Equal(t, "active", rounds.Rounds[1].Status)

	var est struct {
		RoundID    uint32 `json:"round_id"`
		Tokens     string `json:"tokens"`
		TokenUnits string `json:"token_units"`
	}
	rpcResult(t, ts, "estimate_tokens", map[string]any{"payment": "100"}, &est)
	require.Equal(t, uint32(2), est.RoundID)
	require.Equal(t, "1000.00", est.Tokens)
	require.Equal(t, "1000000000000000000000", est.TokenUnits)

	requireAppError(t, rpcCall(t, ts, "get_round", map[string]any{"round_id": 99}), "ROUND_NOT_FOUND")
}

func TestFunctional_VestingSchedule(t *testing.T) {
	ts := testserver.New(t, "token")

	var sched struct {
		Purchased string    `json:"purchased"`
		Tranches  []tranche `json:"tranches"`
		Summary   summary   `json:"summary"`
	}
	rpcResult(t, ts, "get_vesting_schedule", map[string]any{"round_id": 1}, &sched)
	require.Equal(t, "1000.00", sched.Purchased)
	require.Len(t, sched.Tranches, 3)

	require.Equal(t, "Immediate Release", sched.Tranches[0].Label)
	require.Equal(t, "200.00", sched.Tranches[0].Amount)
	require.Equal(t, "available", sched.Tranches[0].Status)

	require.Equal(t, "Month 1", sched.Tranches[1].Label)
	require.Equal(t, int64(1_697_000_000), sched.Tranches[1].UnlockTime)
	require.Equal(t, "400.00", sched.Tranches[1].Amount)
	require.Equal(t, "available", sched.Tranches[1].Status)

	require.Equal(t, "Month 2", sched.Tranches[2].Label)
	require.Equal(t, "locked", sched.Tranches[2].Status)
	require.Equal(t, int64(2_000_000), sched.Tranches[2].RemainingTime)

	require.Equal(t, summary{
		Total:      "1000.00",
		Available:  "600.00",
		Locked:     "400.00",
		Claimed:    "0.00",
		NextUnlock: 1_702_000_000,
	}, sched.Summary)

	// Round 2 is still inside its cliff.
	rpcResult(t, ts, "get_vesting_schedule", map[string]any{"round_id": 2}, &sched)
	require.Len(t, sched.Tranches, 1)
	require.Equal(t, "Cliff Period", sched.Tranches[0].Label)
	require.Equal(t, "0.00", sched.Tranches[0].Amount)
	require.Equal(t, int64(1_000_000), sched.Tranches[0].RemainingTime)

	// After every unlock the whole purchase is available.
	rpcResult(t, ts, "get_vesting_schedule", map[string]any{"round_id": 1, "now": 1_702_000_000}, &sched)
	require.Equal(t, "1000.00", sched.Summary.Available)

	var overview struct {
		Schedules []json.RawMessage `json:"schedules"`
		Totals    summary           `json:"totals"`
	}
	rpcResult(t, ts, "get_claim_overview", nil, &overview)
	require.Len(t, overview.Schedules, 2)
	require.Equal(t, "600.00", overview.Totals.Available)
	require.Equal(t, "400.00", overview.Totals.Locked)
}

func TestFunctional_PromoterStats(t *testing.T) {
	ts := testserver.New(t, "token")

	var stats struct {
		Address       string `json:"address"`
		PromoCode     string `json:"promo_code"`
		Active        bool   `json:"active"`
		ReferralCount uint64 `json:"referral_count"`
		TotalRaised   string `json:"total_raised"`
	}
	rpcResult(t, ts, "get_promoter_stats", map[string]any{"address": testserver.Promoter}, &stats)
	require.Equal(t, testserver.PromoCode, stats.PromoCode)
	require.True(t, stats.Active)
	require.Equal(t, uint64(3), stats.ReferralCount)
	require.Equal(t, "1500.00", stats.TotalRaised)

	resp := rpcCall(t, ts, "get_promoter_stats", map[string]any{"address": "0x00000000000000000000000000000000000000cc"})
	requireAppError(t, resp, "PROMOTER_NOT_FOUND")
}

func TestFunctional_BuyFlow(t *testing.T) {
	ts := testserver.New(t, "token")

	var buy submissionResult
	rpcResult(t, ts, "prepare_buy", map[string]any{
		"token":      "ETH",
		"amount":     "0.5",
		"promo_code": testserver.PromoCode,
	}, &buy)
	require.NotEmpty(t, buy.ID)
	require.Equal(t, "buy", buy.Kind)
	require.Equal(t, "pending", buy.Status)
	require.Equal(t, uint32(2), buy.RoundID)
	require.Equal(t, []call{{
		Contract: testserver.PresaleAddress,
		Function: "buyWithETH",
		Args:     []string{"2", "3", testserver.PromoCode},
		Value:    "500000000000000000",
	}}, buy.Calls)

	var stable submissionResult
	rpcResult(t, ts, "prepare_buy", map[string]any{"token": "usdt", "amount": "100", "round_id": 2}, &stable)
	require.Len(t, stable.Calls, 2)
	require.Equal(t, "approve", stable.Calls[0].Function)
	require.Equal(t, testserver.USDTAddress, stable.Calls[0].Contract)
	require.Equal(t, []string{testserver.PresaleAddress, "100000000"}, stable.Calls[0].Args)
	require.Equal(t, "buyWithUSDT", stable.Calls[1].Function)

	requireAppError(t, rpcCall(t, ts, "prepare_buy", map[string]any{"token": "USDC", "amount": "1"}), "UNSUPPORTED_TOKEN")
	requireAppError(t, rpcCall(t, ts, "prepare_buy", map[string]any{"token": "ETH", "amount": "1", "round_id": 1}), "ROUND_NOT_ACTIVE")
	requireAppError(t, rpcCall(t, ts, "prepare_buy", map[string]any{"token": "ETH", "amount": "1", "promo_code": "NOPE"}), "INVALID_PROMO_CODE")

	txHash := "0x" + strings.Repeat("ab", 32)
	var reported submissionResult
	rpcResult(t, ts, "report_submission", map[string]any{
		"id":      buy.ID,
		"success": true,
		"tx_hash": txHash,
	}, &reported)
	require.Equal(t, "confirmed", reported.Status)
	require.Equal(t, txHash, reported.TxHash)
	require.Equal(t, "https://sepolia.etherscan.io/tx/"+txHash, reported.ExplorerURL)

	requireAppError(t, rpcCall(t, ts, "report_submission", map[string]any{"id": buy.ID, "success": false}), "ALREADY_RESOLVED")

	var list struct {
		Submissions []submissionResult `json:"submissions"`
	}
	rpcResult(t, ts, "list_submissions", map[string]any{"status": "pending"}, &list)
	require.Len(t, list.Submissions, 1)
	require.Equal(t, stable.ID, list.Submissions[0].ID)

	rpcResult(t, ts, "list_submissions", nil, &list)
	require.Len(t, list.Submissions, 2)
}

func TestFunctional_ClaimFlow(t *testing.T) {
	ts := testserver.New(t, "token")

	var claim submissionResult
	rpcResult(t, ts, "prepare_claim", map[string]any{"round_id": 1}, &claim)
	require.Equal(t, "claim", claim.Kind)
	require.Equal(t, "600000000000000000000", claim.Amount)
	require.Equal(t, []call{{
		Contract: testserver.PresaleAddress,
		Function: "claimTokens",
		Args:     []string{"1"},
		Value:    "0",
	}}, claim.Calls)

	requireAppError(t, rpcCall(t, ts, "prepare_claim", map[string]any{"round_id": 2}), "NOTHING_TO_CLAIM")

	resp := rpcCallAs(t, ts, "0x00000000000000000000000000000000000000cc", "report_submission", map[string]any{
		"id":      claim.ID,
		"success": true,
	})
	requireAppError(t, resp, "WALLET_MISMATCH")

	var failed submissionResult
	rpcResult(t, ts, "report_submission", map[string]any{
		"id":      claim.ID,
		"success": false,
		"message": "user rejected",
	}, &failed)
	require.Equal(t, "failed", failed.Status)
}

func TestFunctional_ProtocolErrors(t *testing.T) {
	ts := testserver.New(t, "token")

	resp := rpcCall(t, ts, "drop_tables", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)

	resp = rpcCall(t, ts, "get_round", map[string]any{"round_id": "one"})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32602, resp.Error.Code)
	require.Equal(t, "INVALID_PARAMS", resp.Error.Data["code"])

	requireAppError(t, rpcCall(t, ts, "get_presale_status", map[string]any{"chain_id": 5}), "UNSUPPORTED_CHAIN")
	requireAppError(t, rpcCall(t, ts, "list_rounds", map[string]any{"chain_id": 1}), "PRESALE_NOT_FOUND")
	requireAppError(t, rpcCallAs(t, ts, "", "get_vesting_schedule", map[string]any{"round_id": 1}), "INVALID_WALLET")
}
