package handler

import (
	"encoding/json"
	"net/http"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/service"
)

// QuoteHandler issues price quotes with a short redemption window.
type QuoteHandler struct {
	quotes *service.QuoteService
}

func NewQuoteHandler(quotes *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// CreateQuote resolves the current price for (symbol, direction) and
// returns a token the client presents on order creation.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol    string `json:"symbol"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if req.Symbol == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-field", "symbol is required")
		return
	}
	if req.Direction != domain.DirectionBuy && req.Direction != domain.DirectionSell {
		RespondError(w, r, http.StatusBadRequest, "request/missing-field", "direction must be buy or sell")
		return
	}

	quote, err := h.quotes.Issue(r.Context(), req.Symbol, req.Direction)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, quote)
}
