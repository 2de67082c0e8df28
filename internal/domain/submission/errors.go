package submission

import "errors"

var (
	// ErrSubmissionNotFound indicates the submission doesn't exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrInvalidInput indicates invalid submission input.
	ErrInvalidInput = errors.New("invalid submission input")
	// ErrInvalidWallet indicates the wallet address is malformed.
	ErrInvalidWallet = errors.New("invalid wallet address")
	// ErrPresalePaused indicates the presale contract is paused.
	ErrPresalePaused = errors.New("presale is paused")
	// ErrRoundNotActive indicates the round is outside its sale window.
	ErrRoundNotActive = errors.New("round is not active")
	// ErrInvalidPromoCode indicates the promo code is unknown or disabled.
	ErrInvalidPromoCode = errors.New("invalid promo code")
	// ErrNothingToClaim indicates no tranche is currently claimable.
	ErrNothingToClaim = errors.New("nothing to claim")
	// ErrAlreadyResolved indicates the outcome was already reported.
	ErrAlreadyResolved = errors.New("submission already resolved")
	// ErrWalletMismatch indicates the submission belongs to another wallet.
	ErrWalletMismatch = errors.New("submission belongs to another wallet")
)
