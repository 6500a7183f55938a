package aggregation

import (
	"context"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/transfer"
	"horizon/internal/infrastructure/bankdata"
)

// MockClient implements bankdata.ClientInterface
type MockClient struct {
	GetAccountsFunc          func(ctx context.Context, accessToken string) (*bankdata.AccountsResponse, error)
	GetInstitutionFunc       func(ctx context.Context, institutionID string) (*bankdata.Institution, error)
	SyncTransactionsFunc     func(ctx context.Context, accessToken, cursor string) (*bankdata.TransactionSyncPage, error)
	CreateLinkTokenFunc      func(ctx context.Context, clientUserID, clientName string) (*bankdata.LinkTokenResponse, error)
	ExchangePublicTokenFunc  func(ctx context.Context, publicToken string) (*bankdata.ExchangeResult, error)
	CreateProcessorTokenFunc func(ctx context.Context, accessToken, accountID, processor string) (string, error)
}

func (m *MockClient) GetAccounts(ctx context.Context, accessToken string) (*bankdata.AccountsResponse, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, accessToken)
	}
	return &bankdata.AccountsResponse{}, nil
}

func (m *MockClient) GetInstitution(ctx context.Context, institutionID string) (*bankdata.Institution, error) {
	if m.GetInstitutionFunc != nil {
		return m.GetInstitutionFunc(ctx, institutionID)
	}
	return &bankdata.Institution{InstitutionID: institutionID}, nil
}

func (m *MockClient) SyncTransactions(ctx context.Context, accessToken, cursor string) (*bankdata.TransactionSyncPage, error) {
	if m.SyncTransactionsFunc != nil {
		return m.SyncTransactionsFunc(ctx, accessToken, cursor)
	}
	return &bankdata.TransactionSyncPage{}, nil
}

func (m *MockClient) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (*bankdata.LinkTokenResponse, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, clientUserID, clientName)
	}
	return &bankdata.LinkTokenResponse{}, nil
}

func (m *MockClient) ExchangePublicToken(ctx context.Context, publicToken string) (*bankdata.ExchangeResult, error) {
	if m.ExchangePublicTokenFunc != nil {
		return m.ExchangePublicTokenFunc(ctx, publicToken)
	}
	return &bankdata.ExchangeResult{}, nil
}

func (m *MockClient) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	if m.CreateProcessorTokenFunc != nil {
		return m.CreateProcessorTokenFunc(ctx, accessToken, accountID, processor)
	}
	return "", nil
}

// MockAccountRepo implements bankaccount.Repository
type MockAccountRepo struct {
	CreateFunc                 func(ctx context.Context, params bankaccount.CreateParams) (*bankaccount.LinkedAccount, error)
	GetByIDFunc                func(ctx context.Context, id string) (*bankaccount.LinkedAccount, error)
	GetByExternalAccountIDFunc func(ctx context.Context, externalAccountID string) (*bankaccount.LinkedAccount, error)
	ListByUserIDFunc           func(ctx context.Context, userID int64) ([]*bankaccount.LinkedAccount, error)
}

func (m *MockAccountRepo) Create(ctx context.Context, params bankaccount.CreateParams) (*bankaccount.LinkedAccount, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*bankaccount.LinkedAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, bankaccount.ErrNotFound
}

func (m *MockAccountRepo) GetByExternalAccountID(ctx context.Context, externalAccountID string) (*bankaccount.LinkedAccount, error) {
	if m.GetByExternalAccountIDFunc != nil {
		return m.GetByExternalAccountIDFunc(ctx, externalAccountID)
	}
	return nil, bankaccount.ErrNotFound
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*bankaccount.LinkedAccount, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

// MockTransferRepo implements transfer.Repository
type MockTransferRepo struct {
	CreateFunc          func(ctx context.Context, params transfer.CreateParams) (*transfer.Transfer, error)
	ListByAccountIDFunc func(ctx context.Context, linkedAccountID string) ([]*transfer.Transfer, error)
}

func (m *MockTransferRepo) Create(ctx context.Context, params transfer.CreateParams) (*transfer.Transfer, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockTransferRepo) ListByAccountID(ctx context.Context, linkedAccountID string) ([]*transfer.Transfer, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, linkedAccountID)
	}
	return nil, nil
}
