// Package chain maps chain ids to network metadata and the presale contract
// addresses deployed there.
package chain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/config"
)

// ZeroAddress is what an undeployed contract resolves to.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

var (
	// ErrUnsupportedChain indicates the chain id is not configured.
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrUnsupportedToken indicates the payment token is not available on the chain.
	ErrUnsupportedToken = errors.New("unsupported payment token")
	// ErrNotDeployed indicates the presale contract has no address on the chain.
	ErrNotDeployed = errors.New("presale contract not deployed on this network")
)

// Symbol names a payment token.
type Symbol string

const (
	ETH  Symbol = "ETH"
	USDT Symbol = "USDT"
	USDC Symbol = "USDC"
	DAI  Symbol = "DAI"
)

// Token is a payment token on a network. Native ETH has no address.
type Token struct {
	Symbol   Symbol `json:"symbol"`
	Address  string `json:"address,omitempty"`
	Decimals int32  `json:"decimals"`
	Native   bool   `json:"native"`
}

// Network is one supported chain.
type Network struct {
	ChainID        int64   `json:"chain_id"`
	Name           string  `json:"name"`
	Explorer       string  `json:"explorer"`
	RPCURL         string  `json:"rpc_url"`
	PresaleAddress string  `json:"presale_address"`
	TokenAddress   string  `json:"token_address"`
	PaymentTokens  []Token `json:"payment_tokens"`
}

// Deployed reports whether the presale contract has an address.
func (n *Network) Deployed() bool {
	return !IsZeroAddress(n.PresaleAddress)
}

// PaymentToken looks up a payment token by symbol, case-insensitively.
func (n *Network) PaymentToken(symbol string) (Token, error) {
	for _, t := range n.PaymentTokens {
		if strings.EqualFold(string(t.Symbol), strings.TrimSpace(symbol)) {
			return t, nil
		}
	}
	return Token{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedToken, symbol, n.Name)
}

// TxURL links a transaction hash on the network's block explorer.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" || hash == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/tx/" + hash
}

// AddressURL links an address on the network's block explorer.
func (n *Network) AddressURL(address string) string {
	if n.Explorer == "" || address == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/address/" + address
}

// Registry holds the supported networks.
type Registry struct {
	networks map[int64]*Network
}

// NewRegistry builds a registry from chain configuration.
func NewRegistry(chains []config.ChainConfig) *Registry {
	r := &Registry{networks: make(map[int64]*Network, len(chains))}
	for _, c := range chains {
		n := &Network{
			ChainID:        c.ChainID,
			Name:           c.Name,
			Explorer:       c.Explorer,
			RPCURL:         c.RPCURL,
			PresaleAddress: normalizeAddress(c.PresaleAddress),
			TokenAddress:   normalizeAddress(c.TokenAddress),
			PaymentTokens:  []Token{{Symbol: ETH, Decimals: 18, Native: true}},
		}
		addStable(n, USDT, c.USDT, 6)
		addStable(n, USDC, c.USDC, 6)
		addStable(n, DAI, c.DAI, 18)
		r.networks[c.ChainID] = n
	}
	return r
}

func addStable(n *Network, symbol Symbol, address string, decimals int32) {
	if IsZeroAddress(address) {
		return
	}
	n.PaymentTokens = append(n.PaymentTokens, Token{
		Symbol:   symbol,
		Address:  normalizeAddress(address),
		Decimals: decimals,
	})
}

// Network returns the network for a chain id.
func (r *Registry) Network(chainID int64) (*Network, error) {
	n, ok := r.networks[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	return n, nil
}

// PresaleAddress returns the presale contract address on a chain, or the zero
// address when the chain is unknown or the contract is not deployed.
func (r *Registry) PresaleAddress(chainID int64) string {
	n, err := r.Network(chainID)
	if err != nil || !n.Deployed() {
		return ZeroAddress
	}
	return n.PresaleAddress
}

// Networks lists the supported networks ordered by chain id.
func (r *Registry) Networks() []Network {
	out := make([]Network, 0, len(r.networks))
	for _, n := range r.networks {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// IsZeroAddress reports whether address is empty or all zeros.
func IsZeroAddress(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return true
	}
	return strings.EqualFold(address, ZeroAddress)
}

// IsAddress reports whether s looks like a 20-byte hex account address.
func IsAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeAddress lowercases an address for storage and comparison.
func NormalizeAddress(address string) string {
	return normalizeAddress(address)
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
