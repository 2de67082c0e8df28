package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes one MCP tool and its JSON input schema.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

var (
	chainProp  = prop("integer", "Chain ID (omit to use the X-Chain-Id header or the default chain)")
	walletProp = prop("string", "Wallet address (omit to use the connected wallet)")
	nowProp    = prop("integer", "Evaluate at this unix time instead of now")
)

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Presale
		{
			Name:        "get_presale_status",
			Description: "Get presale state for a chain: owner, paused flag, round count, the active round and whether the wallet is the owner",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
				"wallet":   walletProp,
			}),
		},
		{
			Name:        "list_rounds",
			Description: "List every presale round with status, price and sale progress",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
			}),
		},
		{
			Name:        "get_round",
			Description: "Get one round, or the active round when round_id is omitted",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
				"round_id": prop("integer", "Round ID, starting at 1"),
			}),
		},
		{
			Name:        "estimate_tokens",
			Description: "Estimate the tokens a USD payment buys at a round's price",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
				"round_id": prop("integer", "Round ID (omit for the active round)"),
				"payment":  prop("string", "Payment in USD, e.g. \"250.50\""),
			}, "payment"),
		},
		{
			Name:        "list_networks",
			Description: "List supported networks with contract addresses and payment tokens",
			InputSchema: object(map[string]any{}),
		},

		// Vesting
		{
			Name:        "get_vesting_schedule",
			Description: "Compute a wallet's vesting schedule in a round: cliff, immediate release and monthly tranches with lock status",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
				"wallet":   walletProp,
				"round_id": prop("integer", "Round ID"),
				"now":      nowProp,
			}, "round_id"),
		},
		{
			Name:        "get_claim_overview",
			Description: "Compute vesting schedules for every round the wallet bought into, with totals",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
				"wallet":   walletProp,
				"now":      nowProp,
			}),
		},
		{
			Name:        "get_promoter_stats",
			Description: "Get referral stats for a promoter by address or promo code",
			InputSchema: object(map[string]any{
				"chain_id":   chainProp,
				"address":    prop("string", "Promoter address (omit to use the connected wallet)"),
				"promo_code": prop("string", "Promo code; takes precedence over address"),
			}),
		},

		// Transactions
		{
			Name:        "prepare_buy",
			Description: "Validate a purchase and return the contract calls the wallet must sign",
			InputSchema: object(map[string]any{
				"chain_id":   chainProp,
				"wallet":     walletProp,
				"round_id":   prop("integer", "Round ID (omit for the active round)"),
				"token":      enum("Payment token", "ETH", "USDT", "USDC", "DAI"),
				"amount":     prop("string", "Payment amount in whole token units, e.g. \"0.5\""),
				"promo_code": prop("string", "Optional promo code"),
				"slippage":   prop("integer", "Slippage tolerance in percent"),
			}, "token", "amount"),
		},
		{
			Name:        "prepare_claim",
			Description: "Return the contract call that claims unlocked tokens in a round",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
				"wallet":   walletProp,
				"round_id": prop("integer", "Round ID"),
			}, "round_id"),
		},
		{
			Name:        "report_submission",
			Description: "Record the outcome of a prepared buy or claim after the wallet broadcast it",
			InputSchema: object(map[string]any{
				"id":      prop("string", "Submission ID returned by prepare_buy or prepare_claim"),
				"wallet":  walletProp,
				"success": prop("boolean", "Whether the transaction succeeded"),
				"tx_hash": prop("string", "Transaction hash"),
				"message": prop("string", "Error or status message shown to the user"),
			}, "id", "success"),
		},
		{
			Name:        "list_submissions",
			Description: "List a wallet's prepared buys and claims, newest first",
			InputSchema: object(map[string]any{
				"chain_id": chainProp,
				"wallet":   walletProp,
				"kind":     enum("Filter by kind", "buy", "claim"),
				"status":   enum("Filter by status", "pending", "confirmed", "failed"),
				"limit":    prop("integer", "Maximum number of results"),
				"offset":   prop("integer", "Offset for pagination"),
			}),
		},
	}
}

// registerTools exposes every catalog tool, dispatching through handler.
func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, getIdentity(ctx), name, args)
			if err != nil {
				return toolError(err), nil
			}
			data, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("encoding %s result: %w", name, err)
			}
			return &sdkmcp.CallToolResult{
				Content:           []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
				StructuredContent: json.RawMessage(data),
			}, nil
		})
	}
}

// toolError reports a failed call inside the result so the model can see
// the code and recovery hint.
func toolError(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
