package bankaccount

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/bankdata"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/payments"
)

// LinkService runs the account-linking flow against the aggregation and
// payments providers.
type LinkService struct {
	bankdata  bankdata.ClientInterface
	payments  payments.ClientInterface
	accounts  Repository
	processor string
	timeout   time.Duration
}

// NewLinkService creates a link service. processor names the payments
// provider on processor-token requests.
func NewLinkService(
	bankdataClient bankdata.ClientInterface,
	paymentsClient payments.ClientInterface,
	accountRepo Repository,
	processor string,
	timeout time.Duration,
) *LinkService {
	return &LinkService{
		bankdata:  bankdataClient,
		payments:  paymentsClient,
		accounts:  accountRepo,
		processor: processor,
		timeout:   timeout,
	}
}

// CreateLinkToken creates the short-lived token that starts the client-side
// link flow.
func (s *LinkService) CreateLinkToken(ctx context.Context, u *user.User) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.bankdata.CreateLinkToken(callCtx, fmt.Sprintf("%d", u.ID), u.FullName())
	if err != nil {
		return "", fmt.Errorf("failed to create link token: %w", err)
	}
	return resp.LinkToken, nil
}

// ExchangePublicToken completes the link flow: exchange the public token for
// the access credential, register the first reported account as a funding
// source with the payments provider, and persist the linked account.
func (s *LinkService) ExchangePublicToken(ctx context.Context, u *user.User, publicToken string) (*LinkedAccount, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exchanged, err := s.bankdata.ExchangePublicToken(callCtx, publicToken)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}

	accountsResp, err := s.bankdata.GetAccounts(callCtx, exchanged.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for new item: %w", err)
	}
	if len(accountsResp.Accounts) == 0 {
		return nil, fmt.Errorf("provider returned no accounts for item %s", exchanged.ItemID)
	}

	// The link flow connects one account at a time; the provider reports it
	// first.
	accountData := accountsResp.Accounts[0]

	processorToken, err := s.bankdata.CreateProcessorToken(callCtx, exchanged.AccessToken, accountData.AccountID, s.processor)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor token: %w", err)
	}

	fundingSourceURL, err := s.payments.CreateFundingSource(callCtx, payments.FundingSourceParams{
		CustomerURL:    u.PaymentsCustomerURL,
		ProcessorToken: processorToken,
		Name:           accountData.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create funding source: %w", err)
	}

	linked, err := s.accounts.Create(ctx, CreateParams{
		ID:                uuid.NewString(),
		UserID:            u.ID,
		ItemID:            exchanged.ItemID,
		ExternalAccountID: accountData.AccountID,
		AccessToken:       exchanged.AccessToken,
		FundingSourceURL:  fundingSourceURL,
		ShareableID:       crypto.ShareableID(accountData.AccountID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist linked account: %w", err)
	}

	log.Printf("User %d: Linked account %s (item %s)", u.ID, linked.ID, linked.ItemID)
	return linked, nil
}
