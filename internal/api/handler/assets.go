package handler

import (
	"net/http"

	"github.com/damilare/otc-exchange/internal/service"
	"github.com/go-chi/chi/v5"
)

// AssetHandler serves the public catalog: tradable assets, their networks
// and the payment accounts offered to buyers.
type AssetHandler struct {
	catalog *CatalogDeps
}

// CatalogDeps groups the catalog-facing services the public handlers need.
type CatalogDeps struct {
	Catalog *service.CatalogService
	Wallets *service.WalletResolver
	Pricing *service.PricingService
}

func NewAssetHandler(deps *CatalogDeps) *AssetHandler {
	return &AssetHandler{catalog: deps}
}

// ListAssets returns every active asset.
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.catalog.Catalog.ListActiveAssets(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

// GetAsset returns one active asset by symbol.
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	asset, err := h.catalog.Catalog.GetActiveAsset(r.Context(), symbol)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, asset)
}

// ListNetworks returns the networks a seller can deposit the asset on.
func (h *AssetHandler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if _, err := h.catalog.Catalog.GetActiveAsset(r.Context(), symbol); err != nil {
		RespondServiceError(w, r, err)
		return
	}

	networks, err := h.catalog.Wallets.NetworksFor(r.Context(), symbol)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	if networks == nil {
		networks = []string{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"symbol": symbol, "networks": networks})
}

// GetWallet returns the receiving wallet a seller sends the asset to,
// optionally narrowed to one network via the network query parameter.
func (h *AssetHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if _, err := h.catalog.Catalog.GetActiveAsset(r.Context(), symbol); err != nil {
		RespondServiceError(w, r, err)
		return
	}

	wallet, err := h.catalog.Wallets.Resolve(r.Context(), symbol, r.URL.Query().Get("network"))
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	if wallet == nil {
		RespondError(w, r, http.StatusNotFound, "order/no-settlement-method", "no active wallet for this asset and network")
		return
	}
	RespondJSON(w, http.StatusOK, wallet)
}

// ListBankAccounts returns the active settlement accounts buyers pay into.
func (h *AssetHandler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.catalog.Catalog.ListActiveBankAccounts(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"bank_accounts": accounts})
}
