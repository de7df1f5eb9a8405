package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/damilare/otc-exchange/internal/api/middleware"
	"github.com/damilare/otc-exchange/internal/api/problem"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// RespondServiceError maps an engine error to the right status and problem
// type. Validation failures surface every accumulated check in the detail.
func RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := models.ErrKind(err)

	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		kind = "validation-failed"
	}

	status := http.StatusInternalServerError
	switch kind {
	case "asset-not-found", "order-not-found", "not-found":
		status = http.StatusNotFound
	case "invalid-transition", "conflict", "quote-expired":
		status = http.StatusConflict
	case "invalid-request", "invalid-amount":
		status = http.StatusBadRequest
	case "validation-failed", "direction-disabled", "amount-out-of-range",
		"no-settlement-method", "missing-bank-details", "kyc-required",
		"incomplete-proof":
		status = http.StatusUnprocessableEntity
	case "internal":
		RespondError(w, r, status, "internal-server-error", "unexpected server error")
		return
	}
	RespondError(w, r, status, "order/"+kind, err.Error())
}

func requestActor(r *http.Request) (uuid.UUID, bool, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, false, errors.New("missing user in auth context")
	}

	actorID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, false, errors.New("invalid user_id in auth context")
	}

	return actorID, middleware.UserRoleFromContext(r.Context()) == "admin", nil
}
