package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hmesh/presale-dashboard/internal/repository"
)

// APIKeyRepository stores hashed API keys for HTTP clients
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Add stores a key for a client. Only the key hash is persisted.
func (r *APIKeyRepository) Add(ctx context.Context, key, client, description string) error {
	if strings.TrimSpace(key) == "" || strings.TrimSpace(client) == "" {
		return repository.ErrInvalidInput
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, client, description)
		VALUES (?, ?, ?)
	`, hashToken(key), client, description)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// Resolve returns the client owning a key and records its use.
func (r *APIKeyRepository) Resolve(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", repository.ErrNotFound
	}
	hash := hashToken(key)

	var client string
	err := r.db.QueryRowContext(ctx, `SELECT client FROM api_keys WHERE key_hash = ?`, hash).Scan(&client)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return client, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
