package submission

import (
	"math/big"
	"strconv"

	"github.com/hmesh/presale-dashboard/internal/chain"
)

// BuyCalls returns the calls that buy into a round with the given payment
// token. Stablecoin payments are preceded by an allowance approval for the
// presale contract.
func BuyCalls(presale string, token chain.Token, roundID uint32, units *big.Int, slippage uint32, promoCode string) []Call {
	round := strconv.FormatUint(uint64(roundID), 10)
	if token.Native {
		return []Call{{
			Contract: presale,
			Function: "buyWithETH",
			Args:     []string{round, strconv.FormatUint(uint64(slippage), 10), promoCode},
			Value:    units.String(),
		}}
	}
	return []Call{
		{
			Contract: token.Address,
			Function: "approve",
			Args:     []string{presale, units.String()},
			Value:    "0",
		},
		{
			Contract: presale,
			Function: "buyWith" + string(token.Symbol),
			Args:     []string{units.String(), round, promoCode},
			Value:    "0",
		},
	}
}

// ClaimCall returns the call that withdraws unlocked tokens of a round.
func ClaimCall(presale string, roundID uint32) Call {
	return Call{
		Contract: presale,
		Function: "claimTokens",
		Args:     []string{strconv.FormatUint(uint64(roundID), 10)},
		Value:    "0",
	}
}
