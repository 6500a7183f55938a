// Package bankaccount models bank accounts linked through the aggregation
// provider and the flow that links them.
package bankaccount

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no linked account matches the lookup.
var ErrNotFound = errors.New("linked account not found")

// LinkedAccount is a user's external bank account connected through the
// aggregation provider. AccessToken is the opaque credential issued by the
// provider; it is encrypted at rest and must never leave the service in any
// response shape.
type LinkedAccount struct {
	ID                string    `json:"id"`
	UserID            int64     `json:"userId"`
	ItemID            string    `json:"itemId"`
	ExternalAccountID string    `json:"accountId"`
	AccessToken       string    `json:"-"`
	FundingSourceURL  string    `json:"-"`
	ShareableID       string    `json:"shareableId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type CreateParams struct {
	ID                string
	UserID            int64
	ItemID            string
	ExternalAccountID string
	AccessToken       string
	FundingSourceURL  string
	ShareableID       string
}

// Repository defines persistence operations for linked accounts.
// Implementations are responsible for encrypting AccessToken at rest.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*LinkedAccount, error)
	GetByID(ctx context.Context, id string) (*LinkedAccount, error)
	GetByExternalAccountID(ctx context.Context, externalAccountID string) (*LinkedAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*LinkedAccount, error)
}
