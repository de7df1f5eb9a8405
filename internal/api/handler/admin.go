package handler

import (
	"encoding/json"
	"net/http"

	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/damilare/otc-exchange/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AdminHandler serves catalog management, order review and the dashboard.
// Every route behind it requires the admin role.
type AdminHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	stats   *service.StatsService
}

func NewAdminHandler(catalog *service.CatalogService, orders *service.OrderService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{catalog: catalog, orders: orders, stats: stats}
}

// UpsertCoin creates or updates a coin listing.
func (h *AdminHandler) UpsertCoin(w http.ResponseWriter, r *http.Request) {
	var coin models.Coin
	if err := json.NewDecoder(r.Body).Decode(&coin); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if err := h.catalog.UpsertCoin(r.Context(), &coin); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, coin)
}

// UpsertToken creates or updates a custom token listing.
func (h *AdminHandler) UpsertToken(w http.ResponseWriter, r *http.Request) {
	var token models.CustomToken
	if err := json.NewDecoder(r.Body).Decode(&token); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if err := h.catalog.UpsertToken(r.Context(), &token); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, token)
}

// ListAllAssets returns every listing including inactive ones.
func (h *AdminHandler) ListAllAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.catalog.ListAssets(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

// DeleteAsset removes a listing unless live orders still reference it.
func (h *AdminHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := h.catalog.DeleteAsset(r.Context(), symbol); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "status": "deleted"})
}

// UpsertBankAccount creates or updates a settlement bank account.
func (h *AdminHandler) UpsertBankAccount(w http.ResponseWriter, r *http.Request) {
	var account models.BankAccount
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if err := h.catalog.UpsertBankAccount(r.Context(), &account); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

// ListBankAccounts returns every account, active and inactive.
func (h *AdminHandler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.catalog.ListBankAccounts(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"bank_accounts": accounts})
}

// DeleteBankAccount removes a bank account.
func (h *AdminHandler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid account id")
		return
	}
	if err := h.catalog.DeleteBankAccount(r.Context(), id); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpsertWallet creates or updates a receiving wallet address.
func (h *AdminHandler) UpsertWallet(w http.ResponseWriter, r *http.Request) {
	var wallet models.WalletAddress
	if err := json.NewDecoder(r.Body).Decode(&wallet); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if err := h.catalog.UpsertWallet(r.Context(), &wallet); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, wallet)
}

// ListWallets returns every wallet row.
func (h *AdminHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.catalog.ListWallets(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"wallets": wallets})
}

// DeleteWallet removes a wallet address.
func (h *AdminHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid wallet id")
		return
	}
	if err := h.catalog.DeleteWallet(r.Context(), id); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListAllOrders returns orders across all users, filterable by status,
// symbol and user id.
func (h *AdminHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Symbol: r.URL.Query().Get("symbol"),
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid user_id")
			return
		}
		filter.UserID = &userID
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// ResolveOrder records the admin verdict on an order under review.
func (h *AdminHandler) ResolveOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid order id")
		return
	}

	var req struct {
		Outcome       string `json:"outcome"`
		Notes         string `json:"notes"`
		FailureReason string `json:"failure_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}

	order, err := h.orders.Resolve(r.Context(), orderID, req.Outcome, req.Notes, req.FailureReason)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, order)
}

// Stats returns the dashboard projection.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Compute(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, stats)
}
