package transfer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/payments"
)

const (
	transferCategory = "Transfer"
	transferChannel  = "online"

	transferType     = "credit"
	transferNetwork  = "ach"
	transferACHClass = "ppd"
)

// Notifier sends a push notification about a completed transfer. Implemented
// by the FCM client in the infrastructure layer; may be absent.
type Notifier interface {
	Send(ctx context.Context, userID int64, title, body string, data map[string]string) error
}

// Service initiates transfers: authorize with the payments provider, create
// the transfer with the returned authorization id, then record the result.
// Both provider steps fail fast; there is no compensation for partial
// failures.
type Service struct {
	payments  payments.ClientInterface
	accounts  bankaccount.Repository
	transfers Repository
	users     user.Repository
	notifier  Notifier
	timeout   time.Duration
}

// NewService creates a transfer service. notifier may be nil.
func NewService(
	paymentsClient payments.ClientInterface,
	accountRepo bankaccount.Repository,
	transferRepo Repository,
	userRepo user.Repository,
	notifier Notifier,
	timeout time.Duration,
) *Service {
	return &Service{
		payments:  paymentsClient,
		accounts:  accountRepo,
		transfers: transferRepo,
		users:     userRepo,
		notifier:  notifier,
		timeout:   timeout,
	}
}

// InitiateParams describes a transfer from one of the caller's linked
// accounts to the account behind a shareable id.
type InitiateParams struct {
	UserID              int64
	SenderAccountID     string
	ReceiverShareableID string
	Amount              decimal.Decimal
	Description         string
}

// Initiate runs the two-step transfer sequence and records the result.
func (s *Service) Initiate(ctx context.Context, params InitiateParams) (*Transfer, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("transfer amount must be positive, got %s", params.Amount)
	}

	sender, err := s.accounts.GetByID(ctx, params.SenderAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender account: %w", err)
	}
	if sender.UserID != params.UserID {
		return nil, bankaccount.ErrNotFound
	}

	receiverExternalID, err := crypto.DecodeShareableID(params.ReceiverShareableID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver: %w", err)
	}

	receiver, err := s.accounts.GetByExternalAccountID(ctx, receiverExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver account: %w", err)
	}

	payer, err := s.users.GetByID(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payer: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	auth, err := s.payments.AuthorizeTransfer(callCtx, payments.AuthorizeParams{
		AccountID:        sender.ExternalAccountID,
		FundingAccountID: receiver.FundingSourceURL,
		Type:             transferType,
		Network:          transferNetwork,
		ACHClass:         transferACHClass,
		Amount:           params.Amount,
		LegalName:        payer.FullName(),
	})
	if err != nil {
		return nil, fmt.Errorf("transfer authorization failed: %w", err)
	}

	created, err := s.payments.CreateTransfer(callCtx, payments.CreateParams{
		AccountID:       sender.ExternalAccountID,
		AuthorizationID: auth.ID,
		Description:     params.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("transfer creation failed: %w", err)
	}

	name := params.Description
	if name == "" {
		name = fmt.Sprintf("Transfer to %s", receiverExternalID)
	}

	record, err := s.transfers.Create(ctx, CreateParams{
		ID:                uuid.NewString(),
		Name:              name,
		Amount:            params.Amount,
		Channel:           transferChannel,
		Category:          transferCategory,
		SenderID:          params.UserID,
		ReceiverID:        receiver.UserID,
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		ExternalID:        created.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	if s.notifier != nil {
		body := fmt.Sprintf("You received %s", params.Amount.StringFixed(2))
		if err := s.notifier.Send(ctx, receiver.UserID, "Transfer received", body, map[string]string{"transferId": record.ID}); err != nil {
			log.Printf("Failed to notify user %d about transfer %s: %v", receiver.UserID, record.ID, err)
		}
	}

	log.Printf("Transfer %s created: %s from account %s to account %s",
		record.ID, params.Amount.StringFixed(2), sender.ID, receiver.ID)

	return record, nil
}
