package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/transfer"
	"horizon/internal/infrastructure/bankdata"
)

// ErrPageLimit is returned by the sync drain when the provider still reports
// more pages after the configured maximum. The accumulated transactions are
// still returned alongside it.
var ErrPageLimit = errors.New("transaction sync page limit reached")

// Reconciler merges provider-synced transactions with internally recorded
// transfers into one chronologically ordered view of an account.
type Reconciler struct {
	client     bankdata.ClientInterface
	accounts   bankaccount.Repository
	transfers  transfer.Repository
	maxPages   int
	maxRetries int
	retryBase  time.Duration
	timeout    time.Duration
}

// NewReconciler creates a reconciler. maxPages bounds the sync drain;
// transient page failures are retried maxRetries times with exponential
// backoff starting at retryBase.
func NewReconciler(
	client bankdata.ClientInterface,
	accountRepo bankaccount.Repository,
	transferRepo transfer.Repository,
	maxPages, maxRetries int,
	retryBase, timeout time.Duration,
) *Reconciler {
	return &Reconciler{
		client:     client,
		accounts:   accountRepo,
		transfers:  transferRepo,
		maxPages:   maxPages,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		timeout:    timeout,
	}
}

// GetAccount returns one account's snapshot plus its reconciled transaction
// history, newest first. The account must belong to userID.
func (r *Reconciler) GetAccount(ctx context.Context, userID int64, linkedAccountID string) (*AccountDetail, error) {
	acct, err := r.accounts.GetByID(ctx, linkedAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	if acct.UserID != userID {
		return nil, bankaccount.ErrNotFound
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.GetAccounts(callCtx, acct.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account snapshot: %w", err)
	}
	if len(resp.Accounts) == 0 {
		return nil, fmt.Errorf("provider returned no accounts for item %s", acct.ItemID)
	}
	accountData := resp.Accounts[0]

	institution, err := r.client.GetInstitution(callCtx, resp.Item.InstitutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch institution: %w", err)
	}

	synced, err := r.drainTransactions(ctx, acct.AccessToken)
	if err != nil {
		// A hit page bound still yields a usable (truncated) history; any
		// other failure aborts the reconciliation.
		if !errors.Is(err, ErrPageLimit) {
			return nil, err
		}
		log.Printf("User %d: %v for account %s, continuing with %d transactions", userID, err, acct.ID, len(synced))
	}

	transfers, err := r.transfers.ListByAccountID(ctx, acct.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	merged := make([]Transaction, 0, len(synced)+len(transfers))
	merged = append(merged, synced...)
	for _, t := range transfers {
		merged = append(merged, transferToTransaction(t, acct.ID))
	}

	// Stable: relative order is preserved for equal dates, there is no
	// secondary key.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	return &AccountDetail{
		Account: AccountSnapshot{
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
		},
		Transactions: merged,
	}, nil
}

// drainTransactions requests sync pages until the provider reports no more,
// the page bound is hit, or a page fails past its retry budget.
func (r *Reconciler) drainTransactions(ctx context.Context, accessToken string) ([]Transaction, error) {
	var out []Transaction
	cursor := ""

	for page := 0; ; page++ {
		if page >= r.maxPages {
			return out, fmt.Errorf("%w after %d pages", ErrPageLimit, r.maxPages)
		}

		resp, err := r.syncPage(ctx, accessToken, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to sync transactions page %d: %w", page, err)
		}

		for i := range resp.Added {
			tx, err := syncedToTransaction(&resp.Added[i])
			if err != nil {
				return nil, err
			}
			out = append(out, tx)
		}

		if !resp.HasMore {
			return out, nil
		}
		cursor = resp.NextCursor
	}
}

// syncPage fetches one page, retrying transient failures with exponential
// backoff.
func (r *Reconciler) syncPage(ctx context.Context, accessToken, cursor string) (*bankdata.TransactionSyncPage, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.retryBase << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			log.Printf("Retrying transaction sync (attempt %d/%d)", attempt, r.maxRetries)
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		resp, err := r.client.SyncTransactions(callCtx, accessToken, cursor)
		cancel()

		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !bankdata.IsTransient(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// syncedToTransaction reshapes a provider transaction into the unified form.
func syncedToTransaction(tx *bankdata.SyncedTransaction) (Transaction, error) {
	date, err := tx.GetDate()
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", tx.TransactionID, err)
	}

	category := ""
	if len(tx.Category) > 0 {
		category = tx.Category[0]
	}

	return Transaction{
		ID:             tx.TransactionID,
		Name:           tx.Name,
		Amount:         tx.Amount,
		PaymentChannel: tx.PaymentChannel,
		Category:       category,
		Date:           date,
		Pending:        tx.Pending,
		Type:           tx.PaymentChannel,
		Image:          tx.LogoURL,
		AccountID:      tx.AccountID,
	}, nil
}

// transferToTransaction reshapes an internal transfer record as seen from
// linkedAccountID.
func transferToTransaction(t *transfer.Transfer, linkedAccountID string) Transaction {
	return Transaction{
		ID:             t.ID,
		Name:           t.Name,
		Amount:         t.Amount,
		PaymentChannel: t.Channel,
		Category:       t.Category,
		Date:           t.CreatedAt,
		Type:           t.DirectionFor(linkedAccountID),
		AccountID:      linkedAccountID,
	}
}
