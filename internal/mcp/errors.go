package mcp

import (
	"errors"
	"fmt"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
)

var (
	// ErrUnknownMethod is returned for a method the handler does not serve.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams is returned when params do not decode.
	ErrInvalidParams = errors.New("invalid params")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check argument names and types"}
	case errors.Is(err, round.ErrRoundNotFound):
		return &APIError{Code: "ROUND_NOT_FOUND", Message: "round not found", RecoveryHint: "Call list_rounds for valid round ids"}
	case errors.Is(err, round.ErrPresaleNotFound):
		return &APIError{Code: "PRESALE_NOT_FOUND", Message: "no presale state for this chain", RecoveryHint: "Check chain_id or import a ledger snapshot"}
	case errors.Is(err, round.ErrNoPrice):
		return &APIError{Code: "ROUND_NOT_PRICED", Message: "round has no token price", RecoveryHint: "Pick another round"}
	case errors.Is(err, claim.ErrInvalidWallet), errors.Is(err, submission.ErrInvalidWallet):
		return &APIError{Code: "INVALID_WALLET", Message: "wallet address is missing or malformed", RecoveryHint: "Pass a 0x-prefixed 20-byte address"}
	case errors.Is(err, promoter.ErrPromoterNotFound):
		return &APIError{Code: "PROMOTER_NOT_FOUND", Message: "promoter not found", RecoveryHint: "Check the address or promo code"}
	case errors.Is(err, submission.ErrSubmissionNotFound):
		return &APIError{Code: "SUBMISSION_NOT_FOUND", Message: "submission not found", RecoveryHint: "Call list_submissions"}
	case errors.Is(err, submission.ErrPresalePaused):
		return &APIError{Code: "PRESALE_PAUSED", Message: "presale is paused", RecoveryHint: "Wait for the owner to resume the sale"}
	case errors.Is(err, submission.ErrRoundNotActive):
		return &APIError{Code: "ROUND_NOT_ACTIVE", Message: "round is not open for purchases", RecoveryHint: "Call get_round without round_id for the active round"}
	case errors.Is(err, submission.ErrInvalidPromoCode):
		return &APIError{Code: "INVALID_PROMO_CODE", Message: "promo code is unknown or inactive", RecoveryHint: "Omit promo_code or ask the promoter for a new one"}
	case errors.Is(err, submission.ErrNothingToClaim):
		return &APIError{Code: "NOTHING_TO_CLAIM", Message: "no unlocked tokens to claim", RecoveryHint: "Check next_unlock in get_vesting_schedule"}
	case errors.Is(err, submission.ErrAlreadyResolved):
		return &APIError{Code: "ALREADY_RESOLVED", Message: "submission already has an outcome", RecoveryHint: "Prepare a new transaction to retry"}
	case errors.Is(err, submission.ErrWalletMismatch):
		return &APIError{Code: "WALLET_MISMATCH", Message: "submission belongs to another wallet", RecoveryHint: "Report from the wallet that prepared it"}
	case errors.Is(err, chain.ErrUnsupportedChain):
		return &APIError{Code: "UNSUPPORTED_CHAIN", Message: "chain is not supported", RecoveryHint: "Call list_networks"}
	case errors.Is(err, chain.ErrUnsupportedToken):
		return &APIError{Code: "UNSUPPORTED_TOKEN", Message: "payment token is not available on this chain", RecoveryHint: "Call list_networks for payment tokens"}
	case errors.Is(err, chain.ErrNotDeployed):
		return &APIError{Code: "NOT_DEPLOYED", Message: "presale contract is not deployed on this chain", RecoveryHint: "Switch to a network with a deployed presale"}
	case errors.Is(err, round.ErrInvalidInput),
		errors.Is(err, claim.ErrInvalidInput),
		errors.Is(err, promoter.ErrInvalidInput),
		errors.Is(err, submission.ErrInvalidInput),
		errors.Is(err, amount.ErrInvalidAmount):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check ids and amounts"}
	default:
		return nil
	}
}
