package http

import (
	"errors"
	"log"
	"net/http"

	"horizon/internal/domain/aggregation"
	"horizon/internal/domain/bankaccount"
	"horizon/internal/infrastructure/bankdata"
)

// AccountHandler serves the aggregate account summary and per-account detail.
type AccountHandler struct {
	aggregator *aggregation.Aggregator
	reconciler *aggregation.Reconciler
}

func NewAccountHandler(aggregator *aggregation.Aggregator, reconciler *aggregation.Reconciler) *AccountHandler {
	return &AccountHandler{
		aggregator: aggregator,
		reconciler: reconciler,
	}
}

// HandleList returns the caller's aggregated account summary. A user with no
// linked accounts gets an empty summary, not an error.
func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	summary, err := h.aggregator.GetAccounts(r.Context(), userID)
	if err != nil {
		log.Printf("Error aggregating accounts for user %d: %v", userID, err)
		if isProviderError(err) {
			http.Error(w, "Upstream provider error", http.StatusBadGateway)
			return
		}
		http.Error(w, "Failed to fetch accounts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandleGet returns one account's snapshot plus its reconciled transactions.
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account id is required", http.StatusBadRequest)
		return
	}

	detail, err := h.reconciler.GetAccount(r.Context(), userID, accountID)
	if err != nil {
		if errors.Is(err, bankaccount.ErrNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error reconciling account %s for user %d: %v", accountID, userID, err)
		if isProviderError(err) {
			http.Error(w, "Upstream provider error", http.StatusBadGateway)
			return
		}
		http.Error(w, "Failed to fetch account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// isProviderError reports whether err originated in the aggregation provider.
func isProviderError(err error) bool {
	var apiErr *bankdata.APIError
	return errors.As(err, &apiErr)
}
