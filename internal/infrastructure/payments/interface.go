package payments

import (
	"context"
)

// ClientInterface defines the operations consumed from the payments provider.
type ClientInterface interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error)
	CreateFundingSource(ctx context.Context, params FundingSourceParams) (string, error)
	AuthorizeTransfer(ctx context.Context, params AuthorizeParams) (*Authorization, error)
	CreateTransfer(ctx context.Context, params CreateParams) (*Transfer, error)
}
