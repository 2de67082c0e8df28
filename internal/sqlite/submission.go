package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	"github.com/hmesh/presale-dashboard/internal/repository"
)

// SubmissionRepository implements submission.Repository for SQLite
type SubmissionRepository struct {
	db *DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `
	id, chain_id, wallet, kind, round_id, token, amount, promo_code,
	calls, status, tx_hash, message, created_at, updated_at
`

// Create inserts a new submission
func (r *SubmissionRepository) Create(ctx context.Context, sub *submission.Submission) error {
	calls, err := json.Marshal(sub.Calls)
	if err != nil {
		return fmt.Errorf("failed to encode calls: %w", err)
	}

	query := `INSERT INTO submissions (` + submissionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		sub.ID,
		sub.ChainID,
		sub.Wallet,
		sub.Kind,
		sub.RoundID,
		sub.Token,
		sub.Amount,
		sub.PromoCode,
		string(calls),
		sub.Status,
		sub.TxHash,
		sub.Message,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// Get retrieves a submission by ID
func (r *SubmissionRepository) Get(ctx context.Context, id string) (*submission.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = ?`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// Resolve moves a pending submission to its final status
func (r *SubmissionRepository) Resolve(ctx context.Context, id string, status submission.Status, txHash, message string, at time.Time) error {
	query := `
		UPDATE submissions
		SET status = ?, tx_hash = ?, message = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, status, txHash, message, at, id)
	if err != nil {
		return fmt.Errorf("failed to resolve submission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM submissions WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check submission: %w", err)
	}
	return repository.ErrConflict
}

// List returns a wallet's submissions matching the given filters, newest first
func (r *SubmissionRepository) List(ctx context.Context, wallet string, opts submission.ListOptions) ([]submission.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE wallet = ?`

	args := []interface{}{wallet}
	conditions := []string{}

	if opts.ChainID != 0 {
		conditions = append(conditions, "chain_id = ?")
		args = append(args, opts.ChainID)
	}
	if opts.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *opts.Kind)
	}
	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}

	if len(conditions) > 0 {
		query += " AND " + joinConditions(conditions)
	}

	query += " ORDER BY created_at DESC, id"

	switch {
	case opts.Limit > 0:
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	case opts.Offset > 0:
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := []submission.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	return subs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*submission.Submission, error) {
	var (
		sub   submission.Submission
		calls string
	)
	if err := row.Scan(
		&sub.ID,
		&sub.ChainID,
		&sub.Wallet,
		&sub.Kind,
		&sub.RoundID,
		&sub.Token,
		&sub.Amount,
		&sub.PromoCode,
		&calls,
		&sub.Status,
		&sub.TxHash,
		&sub.Message,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(calls), &sub.Calls); err != nil {
		return nil, fmt.Errorf("failed to decode calls: %w", err)
	}
	return &sub, nil
}
