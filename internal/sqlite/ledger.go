package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/hmesh/presale-dashboard/internal/ledger"
	"github.com/hmesh/presale-dashboard/internal/repository"
)

// LedgerRepository is a SQLite mirror of presale ledger state. It implements
// ledger.Mirror.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// State returns the presale state of a chain
func (r *LedgerRepository) State(ctx context.Context, chainID int64) (*round.State, error) {
	query := `SELECT chain_id, owner, paused, total_rounds FROM presale_state WHERE chain_id = ?`

	var s round.State
	err := r.db.QueryRowContext(ctx, query, chainID).Scan(&s.ChainID, &s.Owner, &s.Paused, &s.TotalRounds)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presale state: %w", err)
	}
	return &s, nil
}

// Round returns a round by ID
func (r *LedgerRepository) Round(ctx context.Context, chainID int64, id uint32) (*round.Round, error) {
	query := `
		SELECT
			chain_id, round_id, token_price, token_amount, sold_amount,
			start_time, end_time, cliff_duration, vesting_duration, vesting_time_unit,
			release_after_cliff, user_bonus, promoter_reward, vesting_percentages
		FROM rounds
		WHERE chain_id = ? AND round_id = ?
	`

	var (
		rd                       round.Round
		price, total, sold, pcts string
	)
	err := r.db.QueryRowContext(ctx, query, chainID, id).Scan(
		&rd.ChainID,
		&rd.ID,
		&price,
		&total,
		&sold,
		&rd.StartTime,
		&rd.EndTime,
		&rd.CliffDuration,
		&rd.VestingDuration,
		&rd.VestingTimeUnit,
		&rd.ReleasePercentageAfterCliff,
		&rd.UserBonusPercentage,
		&rd.PromoterRewardPercentage,
		&pcts,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	if rd.TokenPrice, err = parseAmount(price); err != nil {
		return nil, err
	}
	if rd.TokenAmount, err = parseAmount(total); err != nil {
		return nil, err
	}
	if rd.SoldAmount, err = parseAmount(sold); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(pcts), &rd.ReleasePercentageInVestingPerMonth); err != nil {
		return nil, fmt.Errorf("failed to decode vesting percentages: %w", err)
	}
	return &rd, nil
}

// Purchase returns what a wallet bought in a round
func (r *LedgerRepository) Purchase(ctx context.Context, chainID int64, wallet string, roundID uint32) (*vesting.Purchase, error) {
	query := `SELECT amount FROM purchases WHERE chain_id = ? AND wallet = ? AND round_id = ?`

	var raw string
	err := r.db.QueryRowContext(ctx, query, chainID, wallet, roundID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}

	amt, err := parseAmount(raw)
	if err != nil {
		return nil, err
	}
	return &vesting.Purchase{RoundID: roundID, Amount: amt}, nil
}

// Claimed returns which tranches of a purchase were withdrawn
func (r *LedgerRepository) Claimed(ctx context.Context, chainID int64, wallet string, roundID uint32) (vesting.Claimed, error) {
	var claimed vesting.Claimed

	err := r.db.QueryRowContext(ctx,
		`SELECT claimed_immediate FROM purchases WHERE chain_id = ? AND wallet = ? AND round_id = ?`,
		chainID, wallet, roundID,
	).Scan(&claimed.Immediate)
	if err == sql.ErrNoRows {
		return vesting.Claimed{}, repository.ErrNotFound
	}
	if err != nil {
		return vesting.Claimed{}, fmt.Errorf("failed to get claim state: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT period FROM claimed_tranches
		WHERE chain_id = ? AND wallet = ? AND round_id = ?
		ORDER BY period
	`, chainID, wallet, roundID)
	if err != nil {
		return vesting.Claimed{}, fmt.Errorf("failed to list claimed tranches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var period int
		if err := rows.Scan(&period); err != nil {
			return vesting.Claimed{}, fmt.Errorf("failed to scan claimed tranche: %w", err)
		}
		claimed.Periods = append(claimed.Periods, period)
	}
	if err := rows.Err(); err != nil {
		return vesting.Claimed{}, fmt.Errorf("error iterating claimed tranches: %w", err)
	}
	return claimed, nil
}

// Promoter returns stats for a promoter address
func (r *LedgerRepository) Promoter(ctx context.Context, chainID int64, address string) (*promoter.Stats, error) {
	return r.promoter(ctx, `WHERE chain_id = ? AND address = ?`, chainID, address)
}

// PromoterByCode returns stats for the promoter owning a promo code
func (r *LedgerRepository) PromoterByCode(ctx context.Context, chainID int64, code string) (*promoter.Stats, error) {
	return r.promoter(ctx, `WHERE chain_id = ? AND promo_code = ?`, chainID, code)
}

func (r *LedgerRepository) promoter(ctx context.Context, where string, args ...any) (*promoter.Stats, error) {
	query := `
		SELECT chain_id, address, promo_code, active, referral_count, total_raised, total_reward
		FROM promoters
	` + where

	var (
		s             promoter.Stats
		raised, award string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ChainID,
		&s.Address,
		&s.PromoCode,
		&s.Active,
		&s.ReferralCount,
		&raised,
		&award,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promoter: %w", err)
	}
	if s.TotalRaised, err = parseAmount(raised); err != nil {
		return nil, err
	}
	if s.TotalReward, err = parseAmount(award); err != nil {
		return nil, err
	}
	return &s, nil
}

// Import replaces the mirrored state of each chain in a single transaction
func (r *LedgerRepository) Import(ctx context.Context, states []ledger.ChainState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for _, s := range states {
		if err := importChain(ctx, tx, s); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("chain %d: %w", s.State.ChainID, repository.ErrInvalidInput)
			}
			return fmt.Errorf("failed to import chain %d: %w", s.State.ChainID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func importChain(ctx context.Context, tx *sql.Tx, s ledger.ChainState) error {
	chainID := s.State.ChainID
	for _, table := range []string{"claimed_tranches", "purchases", "promoters", "rounds", "presale_state"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE chain_id = ?`, chainID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO presale_state (chain_id, owner, paused, total_rounds)
		VALUES (?, ?, ?, ?)
	`, chainID, s.State.Owner, s.State.Paused, s.State.TotalRounds); err != nil {
		return err
	}

	for _, rd := range s.Rounds {
		pcts := rd.ReleasePercentageInVestingPerMonth
		if pcts == nil {
			pcts = []uint32{}
		}
		encoded, err := json.Marshal(pcts)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rounds (
				chain_id, round_id, token_price, token_amount, sold_amount,
				start_time, end_time, cliff_duration, vesting_duration, vesting_time_unit,
				release_after_cliff, user_bonus, promoter_reward, vesting_percentages
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			chainID,
			rd.ID,
			amount.String(rd.TokenPrice),
			amount.String(rd.TokenAmount),
			amount.String(rd.SoldAmount),
			rd.StartTime,
			rd.EndTime,
			rd.CliffDuration,
			rd.VestingDuration,
			rd.VestingTimeUnit,
			rd.ReleasePercentageAfterCliff,
			rd.UserBonusPercentage,
			rd.PromoterRewardPercentage,
			string(encoded),
		); err != nil {
			return err
		}
	}

	for _, p := range s.Purchases {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchases (chain_id, wallet, round_id, amount, claimed_immediate)
			VALUES (?, ?, ?, ?, ?)
		`, chainID, p.Wallet, p.Purchase.RoundID, amount.String(p.Purchase.Amount), p.Claimed.Immediate); err != nil {
			return err
		}
		for _, period := range p.Claimed.Periods {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO claimed_tranches (chain_id, wallet, round_id, period)
				VALUES (?, ?, ?, ?)
			`, chainID, p.Wallet, p.Purchase.RoundID, period); err != nil {
				return err
			}
		}
	}

	for _, p := range s.Promoters {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO promoters (
				chain_id, address, promo_code, active, referral_count, total_raised, total_reward
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			chainID,
			p.Address,
			p.PromoCode,
			p.Active,
			p.ReferralCount,
			amount.String(p.TotalRaised),
			amount.String(p.TotalReward),
		); err != nil {
			return err
		}
	}
	return nil
}

func parseAmount(raw string) (*big.Int, error) {
	v, err := amount.ParseBig(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode amount %q: %w", raw, errors.Join(repository.ErrInvalidInput, err))
	}
	return v, nil
}
