package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/transfer"
	"horizon/internal/infrastructure/payments"
)

// TransferHandler handles transfer initiation.
type TransferHandler struct {
	transfers *transfer.Service
}

func NewTransferHandler(transferService *transfer.Service) *TransferHandler {
	return &TransferHandler{transfers: transferService}
}

type TransferRequest struct {
	SenderAccountID     string `json:"senderBankId" validate:"required"`
	ReceiverShareableID string `json:"shareableId" validate:"required"`
	Amount              string `json:"amount" validate:"required"`
	Description         string `json:"description"`
}

// HandleCreate initiates a transfer from one of the caller's accounts to the
// account behind a shareable id.
func (h *TransferHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req TransferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}
	if !amount.IsPositive() {
		http.Error(w, "Amount must be positive", http.StatusBadRequest)
		return
	}

	created, err := h.transfers.Initiate(r.Context(), transfer.InitiateParams{
		UserID:              userID,
		SenderAccountID:     req.SenderAccountID,
		ReceiverShareableID: req.ReceiverShareableID,
		Amount:              amount,
		Description:         req.Description,
	})
	if err != nil {
		if errors.Is(err, bankaccount.ErrNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		var apiErr *payments.APIError
		if errors.As(err, &apiErr) {
			log.Printf("Payments provider rejected transfer for user %d: %v", userID, err)
			http.Error(w, "Transfer rejected by payments provider", http.StatusBadGateway)
			return
		}
		log.Printf("Error initiating transfer for user %d: %v", userID, err)
		http.Error(w, "Failed to initiate transfer", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
