package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"horizon/internal/domain/transfer"
)

// TransferRepository implements transfer.Repository for PostgreSQL.
type TransferRepository struct {
	db *DB
}

var _ transfer.Repository = (*TransferRepository)(nil)

func NewTransferRepository(db *DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, params transfer.CreateParams) (*transfer.Transfer, error) {
	query := `
		INSERT INTO transfers (id, name, amount, channel, category, sender_id, receiver_id, sender_account_id, receiver_account_id, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, name, amount, channel, category, sender_id, receiver_id, sender_account_id, receiver_account_id, external_id, created_at
	`

	var t transfer.Transfer
	var amount string
	err := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.Name, params.Amount.String(), params.Channel, params.Category,
		params.SenderID, params.ReceiverID, params.SenderAccountID, params.ReceiverAccountID,
		params.ExternalID,
	).Scan(
		&t.ID, &t.Name, &amount, &t.Channel, &t.Category,
		&t.SenderID, &t.ReceiverID, &t.SenderAccountID, &t.ReceiverAccountID,
		&t.ExternalID, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer amount '%s': %w", amount, err)
	}

	return &t, nil
}

// ListByAccountID returns all transfers that reference the linked account as
// either sender or receiver, newest first.
func (r *TransferRepository) ListByAccountID(ctx context.Context, linkedAccountID string) ([]*transfer.Transfer, error) {
	query := `
		SELECT id, name, amount, channel, category, sender_id, receiver_id, sender_account_id, receiver_account_id, external_id, created_at
		FROM transfers
		WHERE sender_account_id = $1 OR receiver_account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, linkedAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []*transfer.Transfer
	for rows.Next() {
		var t transfer.Transfer
		var amount string
		err := rows.Scan(
			&t.ID, &t.Name, &amount, &t.Channel, &t.Category,
			&t.SenderID, &t.ReceiverID, &t.SenderAccountID, &t.ReceiverAccountID,
			&t.ExternalID, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}

		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transfer amount '%s': %w", amount, err)
		}

		transfers = append(transfers, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	return transfers, nil
}
