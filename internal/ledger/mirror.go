// Package ledger holds the read side of the presale ledger: the snapshot
// format mirrors are loaded from and a caching reader in front of them.
package ledger

import (
	"context"
	"log/slog"

	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
)

// Mirror is a ledger reader that can be refreshed from a snapshot.
type Mirror interface {
	Reader
	// Import replaces everything known about each chain in states.
	Import(ctx context.Context, states []ChainState) error
}

// Import loads states into a mirror and reports vesting configuration
// problems found in the imported rounds.
func Import(ctx context.Context, mirror Mirror, states []ChainState, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, s := range states {
		for _, r := range s.Rounds {
			for _, w := range vesting.Validate(r.VestingConfig()) {
				logger.Warn("imported round has vesting configuration warning",
					"chain_id", s.State.ChainID,
					"round_id", r.ID,
					"code", w.Code,
					"message", w.Message,
				)
			}
		}
	}
	if err := mirror.Import(ctx, states); err != nil {
		return err
	}
	for _, s := range states {
		logger.Info("ledger snapshot imported",
			"chain_id", s.State.ChainID,
			"rounds", len(s.Rounds),
			"purchases", len(s.Purchases),
			"promoters", len(s.Promoters),
		)
	}
	return nil
}
