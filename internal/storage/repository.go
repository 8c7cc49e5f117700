package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"payperless/internal/core"
	"payperless/internal/log"
	"payperless/internal/recipes"

	_ "modernc.org/sqlite"
)

var _ recipes.Store = (*SQLiteRepository)(nil)

// ErrOutcomeNotFound is returned when no outcome exists for a receipt.
var ErrOutcomeNotFound = errors.New("ingestion outcome not found")

// Fixed-width UTC timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores saved recipes and ingestion outcomes.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping backs the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// List implements recipes.Store.
func (r *SQLiteRepository) List(ctx context.Context) ([]recipes.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload, saved_at FROM saved_recipes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query saved recipes: %w", err)
	}
	defer rows.Close()

	out := []recipes.Recipe{}
	for rows.Next() {
		var payload, savedAt string
		if err := rows.Scan(&payload, &savedAt); err != nil {
			return nil, fmt.Errorf("scan saved recipe: %w", err)
		}
		var rec recipes.Recipe
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode saved recipe: %w", err)
		}
		rec.SavedAt = parseTime(savedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Put implements recipes.Store.
func (r *SQLiteRepository) Put(ctx context.Context, rec recipes.Recipe) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recipe: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_recipes (recipe_id, name, payload, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(recipe_id) DO NOTHING`,
		rec.ID, rec.Name, string(payload), rec.SavedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	if n == 0 {
		return recipes.ErrAlreadySaved
	}
	r.logger.DebugContext(ctx, "recipe stored", log.FieldRecipeID, rec.ID)
	return nil
}

// Delete implements recipes.Store.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_recipes WHERE recipe_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	return n > 0, nil
}

// RecordOutcome stores or replaces the outcome for a receipt. A re-validated
// receipt keeps its export reference only while it stays valid.
func (r *SQLiteRepository) RecordOutcome(ctx context.Context, o core.IngestionOutcome) error {
	var receipt sql.NullString
	if o.Receipt != nil {
		b, err := json.Marshal(o.Receipt)
		if err != nil {
			return fmt.Errorf("encode receipt: %w", err)
		}
		receipt = sql.NullString{String: string(b), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_outcomes (receipt_id, label, status, reason, receipt, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(receipt_id) DO UPDATE SET
			label = excluded.label,
			status = excluded.status,
			reason = excluded.reason,
			receipt = excluded.receipt,
			checked_at = excluded.checked_at,
			export_ref = CASE WHEN excluded.status = 'valid' THEN ingestion_outcomes.export_ref ELSE '' END`,
		o.ReceiptID, o.Label, string(o.Status), o.Reason, receipt, o.CheckedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	r.logger.DebugContext(ctx, "outcome recorded", log.FieldReceiptID, o.ReceiptID, "status", string(o.Status))
	return nil
}

// GetOutcome returns the outcome for receiptID.
func (r *SQLiteRepository) GetOutcome(ctx context.Context, receiptID string) (core.IngestionOutcome, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT receipt_id, label, status, reason, receipt, export_ref, checked_at
		FROM ingestion_outcomes WHERE receipt_id = ?`, receiptID)
	o, err := scanOutcome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IngestionOutcome{}, ErrOutcomeNotFound
	}
	return o, err
}

// PendingExports returns valid outcomes without an export reference, oldest first.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]core.IngestionOutcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT receipt_id, label, status, reason, receipt, export_ref, checked_at
		FROM ingestion_outcomes
		WHERE status = 'valid' AND export_ref = ''
		ORDER BY checked_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending exports: %w", err)
	}
	defer rows.Close()

	var out []core.IngestionOutcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkExported stores the exporter's row reference.
func (r *SQLiteRepository) MarkExported(ctx context.Context, receiptID, ref string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ingestion_outcomes
		SET export_ref = ?, exported_at = ?, export_attempts = export_attempts + 1, last_export_error = ''
		WHERE receipt_id = ?`, ref, time.Now().UTC().Format(timeLayout), receiptID)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// MarkExportError counts a failed export attempt.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, receiptID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE ingestion_outcomes
		SET export_attempts = export_attempts + 1, last_export_error = ?
		WHERE receipt_id = ?`, msg, receiptID)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	r.logger.WarnContext(ctx, "export failed", log.FieldReceiptID, receiptID, log.FieldError, msg)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutcome(s scanner) (core.IngestionOutcome, error) {
	var (
		o         core.IngestionOutcome
		status    string
		receipt   sql.NullString
		checkedAt string
	)
	if err := s.Scan(&o.ReceiptID, &o.Label, &status, &o.Reason, &receipt, &o.ExportRef, &checkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, err
		}
		return o, fmt.Errorf("scan outcome: %w", err)
	}
	o.Status = core.OutcomeStatus(status)
	o.CheckedAt = parseTime(checkedAt)
	if receipt.Valid {
		var rec core.Receipt
		if err := json.Unmarshal([]byte(receipt.String), &rec); err != nil {
			return o, fmt.Errorf("decode outcome receipt: %w", err)
		}
		o.Receipt = &rec
	}
	return o, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
