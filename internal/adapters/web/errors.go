package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// mapped pairs a core sentinel with its wire code and HTTP status.
type mapped struct {
	err    error
	code   string
	status int
}

var errorTable = []mapped{
	{core.ErrInvalidQuantity, "INVALID_QUANTITY", http.StatusUnprocessableEntity},
	{core.ErrInvalidSKUFormat, "INVALID_SKU_FORMAT", http.StatusUnprocessableEntity},
	{core.ErrInvalidReversal, "INVALID_REVERSAL", http.StatusConflict},
	{core.ErrInsufficientQuantity, "INSUFFICIENT_QUANTITY", http.StatusConflict},
	{core.ErrInsufficientInHand, "INSUFFICIENT_IN_HAND_QUANTITY", http.StatusConflict},
	{core.ErrQuantityExceedsAvailable, "QUANTITY_EXCEEDS_AVAILABLE", http.StatusConflict},
	{core.ErrQuantityExceedsAllocated, "QUANTITY_EXCEEDS_ALLOCATED", http.StatusConflict},
	{core.ErrInventoryNotFound, "INVENTORY_NOT_FOUND", http.StatusNotFound},
	{core.ErrLocationNotFound, "LOCATION_NOT_FOUND", http.StatusNotFound},
	{core.ErrLocationNotEmpty, "LOCATION_NOT_EMPTY", http.StatusConflict},
}

// writeCoreError maps a core sentinel error to its stable code and status;
// anything unrecognized becomes a generic 500 without leaking internals.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			writeError(w, r, err.Error(), m.code, m.status)
			return
		}
	}
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}
