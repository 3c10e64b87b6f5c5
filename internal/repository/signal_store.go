// Package repository provides the ClickHouse signal history store and
// the Kafka signal publisher behind the domain interfaces.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
)

const reasonSeparator = " | "

// ClickHouseSignalStore implements SignalStore on ClickHouse. Signals
// are append-only; the table is the audit log the history API reads.
type ClickHouseSignalStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseSignalStore creates the ClickHouse-backed signal store.
func NewClickHouseSignalStore(db *sql.DB, table string) repository.SignalStore {
	return &ClickHouseSignalStore{db: db, table: table}
}

// Schema returns idempotent DDL for the signal table.
func Schema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts          DateTime,
		asset       String,
		action      String,
		strength    String,
		score       UInt8,
		raw_score   Float64,
		confidence  Float64,
		price       Float64,
		change_24h  Float64,
		reasons     String
	) ENGINE = MergeTree()
	ORDER BY (asset, ts)
	TTL ts + INTERVAL 90 DAY`, table)}
}

func (s *ClickHouseSignalStore) Init(ctx context.Context) error {
	for _, stmt := range Schema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init signal schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseSignalStore) Store(ctx context.Context, sig *models.Signal) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, asset, action, strength, score, raw_score, confidence, price, change_24h, reasons) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, signalArgs(sig)...)
	if err != nil {
		return fmt.Errorf("store signal: %w", err)
	}
	return nil
}

func (s *ClickHouseSignalStore) StoreBatch(ctx context.Context, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	values := make([]string, 0, len(signals))
	args := make([]interface{}, 0, len(signals)*10)
	for i := range signals {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, signalArgs(&signals[i])...)
	}

	q := fmt.Sprintf("INSERT INTO %s (ts, asset, action, strength, score, raw_score, confidence, price, change_24h, reasons) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store signal batch: %w", err)
	}
	return nil
}

func (s *ClickHouseSignalStore) Query(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.Signal, error) {
	q := fmt.Sprintf("SELECT ts, asset, action, strength, score, raw_score, confidence, price, change_24h, reasons FROM %s WHERE asset = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, asset, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []models.Signal
	for rows.Next() {
		var sig models.Signal
		var action, reasons string
		if err := rows.Scan(&sig.Timestamp, &sig.Asset, &action, &sig.Strength,
			&sig.Score, &sig.RawScore, &sig.Confidence, &sig.Price, &sig.Change24h, &reasons); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Action = models.Action(action)
		if reasons != "" {
			sig.Reasons = strings.Split(reasons, reasonSeparator)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the connection pool is owned by pkg/clickhouse.
func (s *ClickHouseSignalStore) Close() error {
	return nil
}

func signalArgs(sig *models.Signal) []interface{} {
	return []interface{}{
		sig.Timestamp,
		sig.Asset,
		string(sig.Action),
		sig.Strength,
		uint8(sig.Score),
		sig.RawScore,
		sig.Confidence,
		sig.Price,
		sig.Change24h,
		strings.Join(sig.Reasons, reasonSeparator),
	}
}
