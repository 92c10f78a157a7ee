// Package storage persists the last successfully fetched server state per
// user, so the CLI can render transactions, banks and shipments offline.
// Saves replace the user's previous snapshot wholesale: the backend is the
// source of truth and the snapshot only mirrors its latest observed state.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lifeassistant/internal/core"

	_ "modernc.org/sqlite"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveTransactions replaces the user's transaction snapshot.
func (r *SnapshotRepository) SaveTransactions(ctx context.Context, userID string, ts []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range ts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions
				(id, user_id, name, value_cents, income, kind, bank_id, grouping_date,
				 is_installment, installment_index, installment_group_id, is_paid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, userID, t.Name, t.Value.Cents, t.Income, t.Kind, t.BankID, t.Timestamp,
			t.IsInstallment, t.InstallmentIndex, t.InstallmentGroupID, t.IsPaid)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// ListTransactions returns the user's transaction snapshot, newest grouping
// date first.
func (r *SnapshotRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, value_cents, income, kind, bank_id, grouping_date,
		       is_installment, installment_index, installment_group_id, is_paid
		FROM transactions WHERE user_id = ? ORDER BY grouping_date DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t := core.Transaction{UserID: userID}
		if err := rows.Scan(&t.ID, &t.Name, &t.Value.Cents, &t.Income, &t.Kind, &t.BankID,
			&t.Timestamp, &t.IsInstallment, &t.InstallmentIndex, &t.InstallmentGroupID, &t.IsPaid); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveBanks replaces the user's bank snapshot.
func (r *SnapshotRepository) SaveBanks(ctx context.Context, userID string, banks []core.Bank) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM banks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear banks: %w", err)
	}
	for _, b := range banks {
		var revision sql.NullInt64
		if b.Revision != nil {
			revision = sql.NullInt64{Int64: int64(*b.Revision), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO banks (id, user_id, name, balance_cents, revision)
			VALUES (?, ?, ?, ?, ?)`,
			b.ID, userID, b.Name, b.Balance.Cents, revision)
		if err != nil {
			return fmt.Errorf("insert bank %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

func (r *SnapshotRepository) ListBanks(ctx context.Context, userID string) ([]core.Bank, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, balance_cents, revision FROM banks
		WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query banks: %w", err)
	}
	defer rows.Close()

	var out []core.Bank
	for rows.Next() {
		b := core.Bank{UserID: userID}
		var revision sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Name, &b.Balance.Cents, &revision); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		if revision.Valid {
			v := int(revision.Int64)
			b.Revision = &v
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SaveShipments replaces the user's shipment snapshot. Tracking details are
// stored as the JSON the backend sent; the client never edits them.
func (r *SnapshotRepository) SaveShipments(ctx context.Context, userID string, shipments []core.Shipment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shipments WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear shipments: %w", err)
	}
	for _, s := range shipments {
		details, err := json.Marshal(s.Details)
		if err != nil {
			return fmt.Errorf("encode details for %s: %w", s.ShipmentNumber, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO shipments (user_id, shipment_number, remote_id, details_json)
			VALUES (?, ?, ?, ?)`,
			userID, s.ShipmentNumber, s.ID, string(details))
		if err != nil {
			return fmt.Errorf("insert shipment %s: %w", s.ShipmentNumber, err)
		}
	}

	return tx.Commit()
}

func (r *SnapshotRepository) ListShipments(ctx context.Context, userID string) ([]core.Shipment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT shipment_number, remote_id, details_json FROM shipments
		WHERE user_id = ? ORDER BY shipment_number`, userID)
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}
	defer rows.Close()

	var out []core.Shipment
	for rows.Next() {
		s := core.Shipment{UserID: userID}
		var details string
		if err := rows.Scan(&s.ShipmentNumber, &s.ID, &details); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &s.Details); err != nil {
			return nil, fmt.Errorf("decode details for %s: %w", s.ShipmentNumber, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
