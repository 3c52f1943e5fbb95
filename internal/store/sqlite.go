package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (or creates) the journal database at dbPath.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	schema := `
	-- Scan results, one row per symbol per scan
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scanned_at DATETIME NOT NULL,
		interval TEXT NOT NULL,
		sentiment INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		score REAL NOT NULL,
		setup_type TEXT NOT NULL,
		direction TEXT NOT NULL,
		confidence REAL NOT NULL,
		opportunity TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_symbol ON scans(symbol, scanned_at);
	CREATE INDEX IF NOT EXISTS idx_scans_time ON scans(scanned_at);

	-- Position sizing decisions
	CREATE TABLE IF NOT EXISTS sizings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		decided_at DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		equity REAL NOT NULL,
		position_size REAL NOT NULL,
		entry_price REAL NOT NULL,
		notional REAL NOT NULL,
		margin REAL NOT NULL,
		risk_amount REAL NOT NULL,
		leverage REAL NOT NULL,
		tier TEXT NOT NULL,
		warnings TEXT,
		result TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sizings_symbol ON sizings(symbol, decided_at);
	`

	_, err := j.db.Exec(schema)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// SaveScan persists every opportunity from one scan under a shared
// timestamp.
func (j *SQLiteJournal) SaveScan(ctx context.Context, interval models.Interval, sentiment int, opportunities []models.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scans (scanned_at, interval, sentiment, symbol, score, setup_type, direction, confidence, opportunity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, opp := range opportunities {
		blob, err := json.Marshal(opp)
		if err != nil {
			return fmt.Errorf("encode opportunity %s: %w", opp.Symbol, err)
		}
		if _, err := stmt.ExecContext(ctx, now, string(interval), sentiment,
			opp.Symbol, opp.Score, opp.Setup.Type, string(opp.Setup.Direction),
			opp.Setup.Confidence, string(blob)); err != nil {
			return fmt.Errorf("insert scan for %s: %w", opp.Symbol, err)
		}
	}

	return tx.Commit()
}

// GetScans returns journal entries matching the filter, newest first.
func (j *SQLiteJournal) GetScans(ctx context.Context, filter ScanFilter) ([]ScanRecord, error) {
	query := `SELECT id, scanned_at, interval, sentiment, opportunity FROM scans`
	conditions, args := filter.clauses()
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scanned_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var interval, blob string
		if err := rows.Scan(&rec.ID, &rec.ScannedAt, &interval, &rec.Sentiment, &blob); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Interval = models.Interval(interval)
		if err := json.Unmarshal([]byte(blob), &rec.Opportunity); err != nil {
			return nil, fmt.Errorf("decode opportunity: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveSizing persists one sizing decision.
func (j *SQLiteJournal) SaveSizing(ctx context.Context, equity float64, result *models.PositionSizeResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO sizings (decided_at, symbol, equity, position_size, entry_price, notional, margin, risk_amount, leverage, tier, warnings, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), result.Symbol, equity, result.PositionSize, result.EntryPrice,
		result.NotionalValue, result.MarginRequired, result.RiskAmount, result.Leverage,
		result.Profile.Tier, strings.Join(result.Warnings, "; "), string(blob))
	if err != nil {
		return fmt.Errorf("insert sizing: %w", err)
	}
	return nil
}

// GetSizings returns sizing decisions matching the filter, newest first.
func (j *SQLiteJournal) GetSizings(ctx context.Context, filter ScanFilter) ([]SizingRecord, error) {
	query := `SELECT id, decided_at, equity, result FROM sizings`
	conditions, args := filter.sizingClauses()
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY decided_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sizings: %w", err)
	}
	defer rows.Close()

	var records []SizingRecord
	for rows.Next() {
		var rec SizingRecord
		var blob string
		if err := rows.Scan(&rec.ID, &rec.DecidedAt, &rec.Equity, &blob); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &rec.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (f ScanFilter) clauses() ([]string, []any) {
	var conditions []string
	var args []any
	if f.Symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, "scanned_at >= ?")
		args = append(args, f.Since)
	}
	return conditions, args
}

func (f ScanFilter) sizingClauses() ([]string, []any) {
	var conditions []string
	var args []any
	if f.Symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, "decided_at >= ?")
		args = append(args, f.Since)
	}
	return conditions, args
}
