package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/damilare/otc-exchange/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxProofUploadBytes caps proof-of-payment uploads at 10 MiB.
const maxProofUploadBytes = 10 << 20

// OrderHandler serves the user-facing order lifecycle.
type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder validates and persists a new order for the caller.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-token-claims", err.Error())
		return
	}

	var req struct {
		Direction   string              `json:"direction"`
		Symbol      string              `json:"symbol"`
		Amount      decimal.Decimal     `json:"amount"`
		Unit        string              `json:"unit"`
		QuoteID     string              `json:"quote_id"`
		Network     string              `json:"network"`
		BankDetails *models.BankDetails `json:"bank_details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if req.Symbol == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-field", "symbol is required")
		return
	}

	var quoteID uuid.UUID
	if req.QuoteID != "" {
		quoteID, err = uuid.Parse(req.QuoteID)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid quote_id")
			return
		}
	}

	order, err := h.orders.Create(r.Context(), service.CreateOrderRequest{
		UserID:      actorID,
		Direction:   req.Direction,
		Symbol:      req.Symbol,
		Amount:      req.Amount,
		Unit:        req.Unit,
		QuoteID:     quoteID,
		Network:     req.Network,
		BankDetails: req.BankDetails,
	})
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, order)
}

// ListOrders returns the caller's orders, newest first.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-token-claims", err.Error())
		return
	}

	orders, err := h.orders.List(r.Context(), repository.OrderFilter{
		UserID: &actorID,
		Status: r.URL.Query().Get("status"),
		Symbol: r.URL.Query().Get("symbol"),
	})
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// GetOrder returns one of the caller's orders. Admins can read any order.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-token-claims", err.Error())
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid order id")
		return
	}

	ownerID := actorID
	if isAdmin {
		ownerID = uuid.Nil
	}
	order, err := h.orders.Get(r.Context(), orderID, ownerID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, order)
}

// AttachProof accepts a multipart upload with the proof file and payment
// reference, moving the order to under_review.
func (h *OrderHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-token-claims", err.Error())
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid order id")
		return
	}

	if err := r.ParseMultipartForm(maxProofUploadBytes); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "expected multipart form with file and reference")
		return
	}
	reference := r.FormValue("reference")

	var filename string
	var blob []byte
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		filename = header.Filename
		blob, err = io.ReadAll(io.LimitReader(file, maxProofUploadBytes))
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "failed to read upload")
			return
		}
	}

	order, err := h.orders.AttachProof(r.Context(), orderID, actorID, filename, blob, reference)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, order)
}

// CancelOrder cancels one of the caller's orders.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-token-claims", err.Error())
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "invalid order id")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	ownerID := actorID
	if isAdmin {
		ownerID = uuid.Nil
	}
	order, err := h.orders.Cancel(r.Context(), orderID, ownerID, req.Reason)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, order)
}
