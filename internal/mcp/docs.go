package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `presale-dashboard reads the HMESH token presale: rounds, vesting schedules, promoter stats, and prepares buy and claim transactions for a wallet to sign.

Identity:
- Wallet comes from the X-Wallet-Address header (HTTP) or _meta.wallet (stdio); any tool accepts an explicit wallet argument.
- Chain comes from X-Chain-Id or _meta.chain_id, otherwise the server default. Call list_networks for supported chains.

Default workflow:
1) Orient: get_presale_status shows the active round and whether the presale is paused.
2) Browse: list_rounds / get_round / estimate_tokens.
3) Vesting: get_claim_overview for all rounds, get_vesting_schedule for one.
4) Transact: prepare_buy or prepare_claim return unsigned calls. The wallet signs and broadcasts them in order, then report_submission records the outcome.

Amounts are display strings with 2 decimals; *_units fields are 18-decimal base units.

Docs:
- presale://docs/index
- presale://docs/vesting
- presale://docs/transactions
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "presale://docs/index",
		Name:        "docs_index",
		Title:       "presale-dashboard docs index",
		Description: "Entry point: what the tools do and which doc to read next.",
		Content: `# presale-dashboard: Agent Docs Index

## Quick start

1. ` + "`get_presale_status`" + ` to see the active round, pause flag and admin status.
2. ` + "`list_rounds`" + ` for prices, progress and vesting terms of every round.
3. ` + "`get_claim_overview`" + ` for what a wallet holds, what is unlocked and what is claimed.
4. ` + "`prepare_buy`" + ` / ` + "`prepare_claim`" + ` then ` + "`report_submission`" + `.

## Docs

- ` + "`presale://docs/vesting`" + `: how tranches are computed.
- ` + "`presale://docs/transactions`" + `: buy and claim call sequences.

## Limitations

- Ledger state comes from an imported snapshot; it can lag the chain until the next import.
- Admin operations (creating rounds, pausing) are not exposed.
- Tranches show as claimed only when the snapshot carries claim records; without them an unlocked tranche stays available.
`,
	},
	{
		URI:         "presale://docs/vesting",
		Name:        "docs_vesting",
		Title:       "Vesting schedules",
		Description: "Cliff, immediate release and monthly tranche rules.",
		Content: `# Vesting schedules

A purchase in a round unlocks in tranches:

- **Cliff Period**: until ` + "`round end + cliff duration`" + ` nothing unlocks and the schedule shows a single locked cliff entry.
- **Immediate Release**: ` + "`release_percentage_after_cliff`" + ` of the purchase unlocks at cliff end.
- **Month k**: each entry of ` + "`vesting_percentages`" + ` applies to the remainder after the immediate release and unlocks one time unit after the previous.

Amounts round down, so the tranches can sum to slightly less than the purchase.

A tranche is ` + "`locked`" + ` before its unlock time, then ` + "`available`" + `, or ` + "`claimed`" + ` once the ledger records the claim.

## Warnings

Schedules may carry non-fatal warnings such as ` + "`zero_time_unit`" + ` or ` + "`period_sum_over_100`" + `. They point at a misconfigured round; the schedule is still the best available reading.
`,
	},
	{
		URI:         "presale://docs/transactions",
		Name:        "docs_transactions",
		Title:       "Buy and claim transactions",
		Description: "How prepared calls map to presale contract functions.",
		Content: `# Buy and claim transactions

` + "`prepare_buy`" + ` and ` + "`prepare_claim`" + ` never sign or broadcast. They validate the request and return ` + "`calls`" + ` in the order the wallet must send them.

## Buy

- ETH: ` + "`buyWithETH(roundId, slippage, promoCode)`" + ` with ` + "`value`" + ` set to the payment in wei.
- USDT / USDC / DAI: ` + "`approve(presale, amount)`" + ` on the token, then ` + "`buyWithUSDT|USDC|DAI(amount, roundId, promoCode)`" + `. Amounts use the token's decimals.

The round must be active and the presale unpaused. A promo code must belong to an active promoter.

## Claim

` + "`claimTokens(roundId)`" + `, only when the schedule has an available amount.

## Reporting

Call ` + "`report_submission`" + ` with the tx hash on success or the wallet's error message on failure. A submission can be reported once.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
