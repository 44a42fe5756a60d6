package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

type ActionJournalRepository struct {
	db *sql.DB
}

func NewActionJournalRepository(db *sql.DB) *ActionJournalRepository {
	return &ActionJournalRepository{db: db}
}

func (r *ActionJournalRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS checkout_actions (
			id VARCHAR(64) PRIMARY KEY,
			checkout_id VARCHAR(255) NOT NULL,
			sequence BIGINT NOT NULL,
			action_type VARCHAR(128) NOT NULL,
			payload JSONB,
			error_kind VARCHAR(50),
			error_message TEXT,
			meta JSONB,
			applied_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (checkout_id, sequence)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkout_actions_checkout ON checkout_actions(checkout_id, sequence)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *ActionJournalRepository) Append(ctx context.Context, record models.ActionRecord) error {
	meta, err := json.Marshal(record.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	var payload any
	if len(record.Payload) > 0 {
		payload = string(record.Payload)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO checkout_actions (id, checkout_id, sequence, action_type, payload, error_kind, error_message, meta, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, record.ID, record.CheckoutID, record.Sequence, record.Type, payload,
		nullable(record.ErrorKind), nullable(record.ErrorMessage), string(meta), record.AppliedAt)
	return err
}

func (r *ActionJournalRepository) ListByCheckout(ctx context.Context, checkoutID string) ([]models.ActionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, checkout_id, sequence, action_type, payload, error_kind, error_message, meta, applied_at
		FROM checkout_actions WHERE checkout_id = $1
		ORDER BY sequence
	`, checkoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ActionRecord
	for rows.Next() {
		var (
			rec                 models.ActionRecord
			payload, meta       []byte
			errKind, errMessage sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.CheckoutID, &rec.Sequence, &rec.Type, &payload, &errKind, &errMessage, &meta, &rec.AppliedAt); err != nil {
			return nil, err
		}
		rec.Payload = payload
		rec.ErrorKind = errKind.String
		rec.ErrorMessage = errMessage.String
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal meta of action %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
