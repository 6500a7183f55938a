package aggregation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/infrastructure/bankdata"
)

// FailurePolicy controls what happens when one account's provider fetch fails
// during aggregation.
type FailurePolicy string

const (
	// PolicySkip drops the failed account from the aggregate and records the
	// error on the summary.
	PolicySkip FailurePolicy = "skip"
	// PolicyAbort fails the whole aggregation on the first account error.
	PolicyAbort FailurePolicy = "abort"
)

// Valid reports whether p is a recognized policy.
func (p FailurePolicy) Valid() bool {
	return p == PolicySkip || p == PolicyAbort
}

// Aggregator assembles the per-user account summary from the aggregation
// provider.
type Aggregator struct {
	client   bankdata.ClientInterface
	accounts bankaccount.Repository
	policy   FailurePolicy
	timeout  time.Duration
}

// NewAggregator creates an aggregator with the given failure policy and
// per-call provider timeout.
func NewAggregator(client bankdata.ClientInterface, accountRepo bankaccount.Repository, policy FailurePolicy, timeout time.Duration) *Aggregator {
	return &Aggregator{
		client:   client,
		accounts: accountRepo,
		policy:   policy,
		timeout:  timeout,
	}
}

// GetAccounts fetches a snapshot for every linked account of the user and
// computes the aggregate totals. A user with no linked accounts gets an empty
// summary, not an error. Snapshots are fetched concurrently but the output
// preserves storage order.
func (a *Aggregator) GetAccounts(ctx context.Context, userID int64) (*Summary, error) {
	linked, err := a.accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked accounts: %w", err)
	}

	summary := &Summary{
		Accounts:            []AccountSnapshot{},
		TotalCurrentBalance: decimal.Zero,
	}
	if len(linked) == 0 {
		return summary, nil
	}

	snapshots := make([]*AccountSnapshot, len(linked))
	errs := make([]error, len(linked))

	var wg sync.WaitGroup
	for i, acct := range linked {
		wg.Add(1)
		go func(i int, acct *bankaccount.LinkedAccount) {
			defer wg.Done()
			snapshots[i], errs[i] = a.fetchSnapshot(ctx, acct)
		}(i, acct)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if a.policy == PolicyAbort {
			return nil, fmt.Errorf("failed to fetch account %s: %w", linked[i].ID, err)
		}
		log.Printf("User %d: Skipping account %s in aggregate: %v", userID, linked[i].ID, err)
		summary.Errors = append(summary.Errors, fmt.Sprintf("account %s: %v", linked[i].ID, err))
	}

	for _, snap := range snapshots {
		if snap == nil {
			continue
		}
		summary.Accounts = append(summary.Accounts, *snap)
		if snap.CurrentBalance != nil {
			summary.TotalCurrentBalance = summary.TotalCurrentBalance.Add(*snap.CurrentBalance)
		}
	}
	summary.TotalBanks = len(summary.Accounts)

	return summary, nil
}

// fetchSnapshot derives one account's snapshot from the provider.
func (a *Aggregator) fetchSnapshot(ctx context.Context, acct *bankaccount.LinkedAccount) (*AccountSnapshot, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.GetAccounts(callCtx, acct.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	if len(resp.Accounts) == 0 {
		return nil, fmt.Errorf("provider returned no accounts for item %s", acct.ItemID)
	}

	accountData := resp.Accounts[0]

	institution, err := a.client.GetInstitution(callCtx, resp.Item.InstitutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch institution: %w", err)
	}

	return &AccountSnapshot{
		ID:               accountData.AccountID,
		AvailableBalance: accountData.Balances.Available,
		CurrentBalance:   accountData.Balances.Current,
		InstitutionID:    institution.InstitutionID,
		InstitutionName:  institution.Name,
		Name:             accountData.Name,
		OfficialName:     accountData.OfficialName,
		Mask:             accountData.Mask,
		Type:             accountData.Type,
		Subtype:          accountData.Subtype,
		LinkedAccountID:  acct.ID,
		ShareableID:      acct.ShareableID,
	}, nil
}
