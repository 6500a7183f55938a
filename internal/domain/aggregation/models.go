// Package aggregation builds the user-facing views of linked accounts:
// per-user balance aggregates and per-account reconciled transaction history.
package aggregation

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is the non-secret view of one linked account, derived fresh
// from the provider on every fetch and never persisted.
type AccountSnapshot struct {
	ID               string           `json:"id"` // provider account id
	AvailableBalance *decimal.Decimal `json:"availableBalance"`
	CurrentBalance   *decimal.Decimal `json:"currentBalance"`
	InstitutionID    string           `json:"institutionId"`
	InstitutionName  string           `json:"institutionName"`
	Name             string           `json:"name"`
	OfficialName     *string          `json:"officialName"`
	Mask             string           `json:"mask"`
	Type             string           `json:"type"`
	Subtype          string           `json:"subtype"`
	LinkedAccountID  string           `json:"linkedAccountId"`
	ShareableID      string           `json:"shareableId"`
}

// Summary aggregates all of a user's accounts. Accounts preserves storage
// order. Errors lists accounts skipped under the skip failure policy.
type Summary struct {
	Accounts            []AccountSnapshot `json:"accounts"`
	TotalBanks          int               `json:"totalBanks"`
	TotalCurrentBalance decimal.Decimal   `json:"totalCurrentBalance"`
	Errors              []string          `json:"-"`
}

// Transaction is the unified shape for both provider-synced transactions and
// internally recorded transfers.
type Transaction struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentChannel string          `json:"paymentChannel"`
	Category       string          `json:"category"`
	Date           time.Time       `json:"date"`
	Pending        bool            `json:"pending"`
	Type           string          `json:"type"` // "debit" or "credit"
	Image          *string         `json:"image,omitempty"`
	AccountID      string          `json:"accountId"`
}

// AccountDetail is one account's snapshot plus its reconciled transaction
// history, newest first.
type AccountDetail struct {
	Account      AccountSnapshot `json:"account"`
	Transactions []Transaction   `json:"transactions"`
}
