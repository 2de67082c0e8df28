package promoter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/repository"
)

// Service exposes promoter stats. Referral bookkeeping lives on the ledger;
// this service only reads it.
type Service struct {
	ledger Reader
	logger *slog.Logger
}

// NewService creates a new promoter service.
func NewService(ledger Reader, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, logger: logger}
}

// Get fetches stats for a promoter address.
func (s *Service) Get(ctx context.Context, chainID int64, address string) (*Stats, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrInvalidInput
	}
	return s.lookup(s.ledger.Promoter(ctx, chainID, address))
}

// GetByCode fetches stats for the promoter owning a promo code.
func (s *Service) GetByCode(ctx context.Context, chainID int64, code string) (*Stats, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidInput
	}
	return s.lookup(s.ledger.PromoterByCode(ctx, chainID, code))
}

func (s *Service) lookup(stats *Stats, err error) (*Stats, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromoterNotFound
		}
		return nil, fmt.Errorf("getting promoter: %w", err)
	}
	return stats, nil
}
