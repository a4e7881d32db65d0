// Package history persists session outcomes across runs in SQLite (pure Go
// driver, no CGo). The journal stays the canonical in-session record; history
// exists so past sessions survive for later inspection. Write failures are
// reported to the caller, who logs and moves on.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"llm-crypto-agent/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT     NOT NULL,
    outcome    TEXT     NOT NULL,
    detail     TEXT     NOT NULL DEFAULT '',
    at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    order_id       TEXT PRIMARY KEY,
    session_id     TEXT     NOT NULL,
    product_id     TEXT     NOT NULL,
    action         TEXT     NOT NULL,
    status         TEXT     NOT NULL,
    amount_usdc    REAL     NOT NULL,
    filled_size    REAL     NOT NULL DEFAULT 0,
    avg_price      REAL     NOT NULL DEFAULT 0,
    net_delta_usdc REAL     NOT NULL,
    at             DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_session ON cycles(session_id);
CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session_id);
CREATE INDEX IF NOT EXISTS idx_trades_at      ON trades(at DESC);
`

const retention = 90 * 24 * time.Hour

// Store is the SQLite-backed session history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn, applies the schema, and
// prunes entries older than the retention window.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history.Open: open %q: %w", dsn, err)
	}
	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history.Open: apply schema: %w", err)
	}

	s := &Store{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// RecordCycle appends one cycle outcome row.
func (s *Store) RecordCycle(ctx context.Context, sessionID, outcome, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (session_id, outcome, detail, at) VALUES (?, ?, ?, ?)`,
		sessionID, outcome, detail, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("history.RecordCycle: %w", err)
	}
	return nil
}

// RecordTrade persists one executed trade. The order id is the primary key,
// so a replayed record is a no-op rather than a duplicate.
func (s *Store) RecordTrade(ctx context.Context, sessionID string, rec types.TradeRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
			(order_id, session_id, product_id, action, status,
			 amount_usdc, filled_size, avg_price, net_delta_usdc, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id) DO NOTHING
	`,
		rec.OrderID, sessionID, rec.ProductID, rec.Action, rec.Status,
		rec.AmountUSDC, rec.FilledSize, rec.AvgPrice, rec.NetDeltaUSDC, rec.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("history.RecordTrade: %w", err)
	}
	return nil
}

// SessionTrades returns the trades of one session in execution order.
func (s *Store) SessionTrades(ctx context.Context, sessionID string) ([]types.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, action, status,
		       amount_usdc, filled_size, avg_price, net_delta_usdc, at
		FROM trades
		WHERE session_id = ?
		ORDER BY at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history.SessionTrades: query: %w", err)
	}
	defer rows.Close()

	var recs []types.TradeRecord
	for rows.Next() {
		var rec types.TradeRecord
		if err := rows.Scan(
			&rec.OrderID, &rec.ProductID, &rec.Action, &rec.Status,
			&rec.AmountUSDC, &rec.FilledSize, &rec.AvgPrice, &rec.NetDeltaUSDC, &rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("history.SessionTrades: scan row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SessionProfit sums the net deltas of one session's trades.
func (s *Store) SessionProfit(ctx context.Context, sessionID string) (float64, error) {
	var profit float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(net_delta_usdc), 0) FROM trades WHERE session_id = ?`,
		sessionID,
	).Scan(&profit)
	if err != nil {
		return 0, fmt.Errorf("history.SessionProfit: %w", err)
	}
	return profit, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retention)
	s.db.ExecContext(ctx, `DELETE FROM cycles WHERE at < ?`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM trades WHERE at < ?`, cutoff)
}
