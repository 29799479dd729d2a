package repository

import (
	"context"
	"database/sql"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/entity"
)

type WebhookEventRepository struct {
	db DBTX
}

func NewWebhookEventRepository(db DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Create(ctx context.Context, event *entity.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (
			id, provider, transaction_ref, signature, payload_json,
			raw_status, outcome, amount, disposition, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Provider,
		event.TransactionRef,
		event.Signature,
		event.PayloadJSON,
		event.RawStatus,
		event.Outcome,
		event.Amount,
		event.Disposition,
		nullableStringValue(event.Error),
		event.CreatedAt,
	)
	return err
}

func (r *WebhookEventRepository) ListByTransactionRef(ctx context.Context, transactionRef string, limit int32) ([]*entity.WebhookEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, provider, transaction_ref, signature, payload_json,
			raw_status, outcome, amount, disposition, error, created_at
		FROM webhook_events
		WHERE transaction_ref = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, transactionRef, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*entity.WebhookEvent, 0)
	for rows.Next() {
		event := &entity.WebhookEvent{}
		var errText sql.NullString
		if err := rows.Scan(
			&event.ID,
			&event.Provider,
			&event.TransactionRef,
			&event.Signature,
			&event.PayloadJSON,
			&event.RawStatus,
			&event.Outcome,
			&event.Amount,
			&event.Disposition,
			&errText,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		event.Error = stringPtrFromNull(errText)
		events = append(events, event)
	}

	return events, rows.Err()
}
