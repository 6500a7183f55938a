package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/infrastructure/crypto"
)

// LinkedAccountRepository implements bankaccount.Repository for PostgreSQL.
// Access tokens pass through the encryptor on the way in and out; the column
// only ever holds ciphertext.
type LinkedAccountRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

var _ bankaccount.Repository = (*LinkedAccountRepository)(nil)

func NewLinkedAccountRepository(db *DB, encryptor *crypto.Encryptor) *LinkedAccountRepository {
	return &LinkedAccountRepository{db: db, encryptor: encryptor}
}

const linkedAccountColumns = `id, user_id, item_id, external_account_id, access_token, funding_source_url, shareable_id, created_at, updated_at`

func (r *LinkedAccountRepository) Create(ctx context.Context, params bankaccount.CreateParams) (*bankaccount.LinkedAccount, error) {
	encrypted, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO linked_accounts (id, user_id, item_id, external_account_id, access_token, funding_source_url, shareable_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + linkedAccountColumns

	row := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.ItemID, params.ExternalAccountID,
		encrypted, params.FundingSourceURL, params.ShareableID,
	)

	acct, err := r.scanOne(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create linked account: %w", err)
	}
	return acct, nil
}

func (r *LinkedAccountRepository) GetByID(ctx context.Context, id string) (*bankaccount.LinkedAccount, error) {
	query := `SELECT ` + linkedAccountColumns + ` FROM linked_accounts WHERE id = $1`
	acct, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (r *LinkedAccountRepository) GetByExternalAccountID(ctx context.Context, externalAccountID string) (*bankaccount.LinkedAccount, error) {
	query := `SELECT ` + linkedAccountColumns + ` FROM linked_accounts WHERE external_account_id = $1`
	acct, err := r.scanOne(r.db.QueryRowContext(ctx, query, externalAccountID))
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// ListByUserID returns the user's linked accounts in creation order. This
// order defines the aggregate's output order.
func (r *LinkedAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*bankaccount.LinkedAccount, error) {
	query := `SELECT ` + linkedAccountColumns + ` FROM linked_accounts WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*bankaccount.LinkedAccount
	for rows.Next() {
		acct, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate linked accounts: %w", err)
	}

	return accounts, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *LinkedAccountRepository) scanOne(row *sql.Row) (*bankaccount.LinkedAccount, error) {
	acct, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bankaccount.ErrNotFound
	}
	return acct, err
}

func (r *LinkedAccountRepository) scanRow(row scannable) (*bankaccount.LinkedAccount, error) {
	var acct bankaccount.LinkedAccount
	var encryptedToken string

	err := row.Scan(
		&acct.ID, &acct.UserID, &acct.ItemID, &acct.ExternalAccountID,
		&encryptedToken, &acct.FundingSourceURL, &acct.ShareableID,
		&acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan linked account: %w", err)
	}

	token, err := r.encryptor.Decrypt(encryptedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	acct.AccessToken = token

	return &acct, nil
}
