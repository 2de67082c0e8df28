package submission

import "time"

// Kind identifies what a submission asks the ledger to do
type Kind string

const (
	KindBuy   Kind = "buy"
	KindClaim Kind = "claim"
)

// Status tracks a submission from preparation to its reported outcome
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Call is an unsigned contract call for the wallet to sign and broadcast.
// Numeric arguments and value are base-10 integer strings.
type Call struct {
	Contract string   `json:"contract"`
	Function string   `json:"function"`
	Args     []string `json:"args"`
	Value    string   `json:"value"`
}

// Submission records a prepared ledger write and what the wallet reported
// back about it.
type Submission struct {
	ID        string    `json:"id"`
	ChainID   int64     `json:"chain_id"`
	Wallet    string    `json:"wallet"`
	Kind      Kind      `json:"kind"`
	RoundID   uint32    `json:"round_id"`
	Token     string    `json:"token,omitempty"`
	Amount    string    `json:"amount"`
	PromoCode string    `json:"promo_code,omitempty"`
	Calls     []Call    `json:"calls"`
	Status    Status    `json:"status"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
