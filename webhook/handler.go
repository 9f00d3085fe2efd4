// Package webhook exposes the HTTP surface that receives trade signals
// and translates engine outcomes into the JSON responses alert senders
// expect.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/redwarrior112/ema-webhook-trader/engine"
	"github.com/redwarrior112/ema-webhook-trader/metrics"
)

// Executor runs the decision sequence for one inbound signal.
type Executor interface {
	Execute(ctx context.Context, raw engine.RawSignal) (*engine.Result, error)
}

// Handler serves POST /webhook.
type Handler struct {
	exec Executor
}

// NewHandler creates a webhook handler backed by the given executor.
func NewHandler(exec Executor) *Handler {
	return &Handler{exec: exec}
}

// RegisterRoutes attaches the webhook endpoint to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", h.handleWebhook)
}

type successResponse struct {
	Status          string               `json:"status"`
	BrokerResponse  *engine.OrderReceipt `json:"broker_response"`
	Qty             int64                `json:"qty"`
	SizedFromSignal bool                 `json:"sized_from_signal"`
}

type skippedResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raw engine.RawSignal
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		metrics.IncWebhookRequest("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid JSON",
			"details": err.Error(),
		})
		return
	}

	res, err := h.exec.Execute(r.Context(), raw)
	if err != nil {
		h.writeError(w, raw, err)
		return
	}

	if res.Status == engine.StatusSkipped {
		metrics.IncWebhookRequest("skipped")
		metrics.IncSkip(string(res.Reason))
		writeJSON(w, http.StatusOK, skippedResponse{
			Status: string(engine.StatusSkipped),
			Reason: string(res.Reason),
		})
		return
	}

	metrics.IncWebhookRequest("success")
	metrics.IncOrderPlaced(strings.ToLower(raw.Action), res.OrderClass)
	writeJSON(w, http.StatusOK, successResponse{
		Status:          string(engine.StatusSuccess),
		BrokerResponse:  res.Receipt,
		Qty:             res.Qty,
		SizedFromSignal: res.SizedFromSignal,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, raw engine.RawSignal, err error) {
	var brokerErr *engine.BrokerError

	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		metrics.IncWebhookRequest("unauthorized")
		log.Printf("[WARN] unauthorized webhook request")
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Unauthorized"})

	case errors.Is(err, engine.ErrInvalidPayload):
		metrics.IncWebhookRequest("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid payload",
			"details": err.Error(),
		})

	case errors.Is(err, engine.ErrQuoteUnavailable),
		errors.Is(err, engine.ErrInvalidTakeProfit),
		errors.Is(err, engine.ErrInvalidStopLoss):
		metrics.IncWebhookRequest("error")
		log.Printf("[WARN] bracket rejected for %s: %v", raw.Ticker, err)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Status:  string(engine.StatusError),
			Message: "Bracket validation failed",
			Details: err.Error(),
		})

	case errors.As(err, &brokerErr):
		metrics.IncWebhookRequest("error")
		metrics.IncBrokerFailure()
		log.Printf("[ERROR] broker rejected %s order: %v", raw.Ticker, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Status:  string(engine.StatusError),
			Message: "Alpaca API Error",
			Details: brokerErr.Message,
		})

	default:
		metrics.IncWebhookRequest("error")
		log.Printf("[ERROR] webhook execution failed for %s: %v", raw.Ticker, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  string(engine.StatusError),
			Message: "Webhook execution error",
			Details: err.Error(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encoding response: %v", err)
	}
}
