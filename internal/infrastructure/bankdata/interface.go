package bankdata

import (
	"context"
)

// ClientInterface defines the operations consumed from the aggregation
// provider.
type ClientInterface interface {
	GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error)
	GetInstitution(ctx context.Context, institutionID string) (*Institution, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*TransactionSyncPage, error)
	CreateLinkToken(ctx context.Context, clientUserID, clientName string) (*LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error)
}
