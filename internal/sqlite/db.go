package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps pragmas and in-memory databases consistent
	// across queries.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema if it does not exist yet
func (db *DB) RunMigrations() error {
	migration := `
-- Presale contract state per chain
CREATE TABLE IF NOT EXISTS presale_state (
    chain_id INTEGER PRIMARY KEY,
    owner TEXT NOT NULL DEFAULT '',
    paused INTEGER NOT NULL DEFAULT 0,
    total_rounds INTEGER NOT NULL DEFAULT 0,
    imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Sale rounds
CREATE TABLE IF NOT EXISTS rounds (
    chain_id INTEGER NOT NULL,
    round_id INTEGER NOT NULL,
    token_price TEXT NOT NULL,
    token_amount TEXT NOT NULL,
    sold_amount TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    end_time INTEGER NOT NULL,
    cliff_duration INTEGER NOT NULL DEFAULT 0,
    vesting_duration INTEGER NOT NULL DEFAULT 0,
    vesting_time_unit INTEGER NOT NULL DEFAULT 0,
    release_after_cliff INTEGER NOT NULL DEFAULT 0,
    user_bonus INTEGER NOT NULL DEFAULT 0,
    promoter_reward INTEGER NOT NULL DEFAULT 0,
    vesting_percentages TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (chain_id, round_id),
    FOREIGN KEY (chain_id) REFERENCES presale_state(chain_id)
);

-- Wallet purchases per round
CREATE TABLE IF NOT EXISTS purchases (
    chain_id INTEGER NOT NULL,
    wallet TEXT NOT NULL,
    round_id INTEGER NOT NULL,
    amount TEXT NOT NULL,
    claimed_immediate INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chain_id, wallet, round_id),
    FOREIGN KEY (chain_id, round_id) REFERENCES rounds(chain_id, round_id)
);
CREATE INDEX IF NOT EXISTS idx_wallet_purchases ON purchases(wallet);

-- Vesting periods the ledger reports as withdrawn
CREATE TABLE IF NOT EXISTS claimed_tranches (
    chain_id INTEGER NOT NULL,
    wallet TEXT NOT NULL,
    round_id INTEGER NOT NULL,
    period INTEGER NOT NULL,
    PRIMARY KEY (chain_id, wallet, round_id, period),
    FOREIGN KEY (chain_id, wallet, round_id) REFERENCES purchases(chain_id, wallet, round_id)
);

-- Promoter referral stats
CREATE TABLE IF NOT EXISTS promoters (
    chain_id INTEGER NOT NULL,
    address TEXT NOT NULL,
    promo_code TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 0,
    referral_count INTEGER NOT NULL DEFAULT 0,
    total_raised TEXT NOT NULL DEFAULT '0',
    total_reward TEXT NOT NULL DEFAULT '0',
    PRIMARY KEY (chain_id, address),
    FOREIGN KEY (chain_id) REFERENCES presale_state(chain_id)
);
CREATE INDEX IF NOT EXISTS idx_promo_code ON promoters(chain_id, promo_code);

-- Prepared ledger writes and their reported outcome
CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    chain_id INTEGER NOT NULL,
    wallet TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('buy', 'claim')),
    round_id INTEGER NOT NULL,
    token TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    promo_code TEXT NOT NULL DEFAULT '',
    calls TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('pending', 'confirmed', 'failed')),
    tx_hash TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wallet_submissions ON submissions(wallet, created_at);
CREATE INDEX IF NOT EXISTS idx_submission_status ON submissions(status);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    client TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func joinConditions(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	joined := conditions[0]
	for i := 1; i < len(conditions); i++ {
		joined += " AND " + conditions[i]
	}
	return joined
}
