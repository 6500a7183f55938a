// Package transfer handles peer-to-peer transfers: initiating them through
// the payments provider and recording them for reconciliation.
package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a transfer relative to one account.
const (
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// Transfer is an internally recorded peer-to-peer transfer. These records are
// the reconciler's second source next to provider-synced transactions.
type Transfer struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	Channel           string          `json:"channel"`
	Category          string          `json:"category"`
	SenderID          int64           `json:"senderId"`
	ReceiverID        int64           `json:"receiverId"`
	SenderAccountID   string          `json:"senderBankId"`
	ReceiverAccountID string          `json:"receiverBankId"`
	ExternalID        string          `json:"-"` // payments provider transfer id
	CreatedAt         time.Time       `json:"createdAt"`
}

// DirectionFor classifies the transfer as seen from linkedAccountID: debit if
// that account initiated it, credit otherwise.
func (t *Transfer) DirectionFor(linkedAccountID string) string {
	if t.SenderAccountID == linkedAccountID {
		return DirectionDebit
	}
	return DirectionCredit
}

type CreateParams struct {
	ID                string
	Name              string
	Amount            decimal.Decimal
	Channel           string
	Category          string
	SenderID          int64
	ReceiverID        int64
	SenderAccountID   string
	ReceiverAccountID string
	ExternalID        string
}

// Repository defines persistence operations for transfer records.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transfer, error)
	ListByAccountID(ctx context.Context, linkedAccountID string) ([]*Transfer, error)
}
