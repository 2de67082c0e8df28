package submission

// ListOptions provides filtering options for listing submissions.
type ListOptions struct {
	ChainID int64
	Kind    *Kind
	Status  *Status
	Limit   int
	Offset  int
}

// Options configures buy call defaults.
type Options struct {
	DefaultSlippage uint32
	MaxSlippage     uint32
}
