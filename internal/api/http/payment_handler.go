package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/service"
)

// PaymentHandler exposes the three reconciliation triggers: provider
// webhooks, the seeker's redirect return, and transfer webhooks.
type PaymentHandler struct {
	reconciler service.ReconcilerService
	payoutSvc  service.PayoutService
	// baseURL is where the seeker's browser lands after a hosted checkout.
	baseURL string
}

func NewPaymentHandler(reconciler service.ReconcilerService, payoutSvc service.PayoutService, baseURL string) *PaymentHandler {
	return &PaymentHandler{reconciler: reconciler, payoutSvc: payoutSvc, baseURL: baseURL}
}

type webhookPayload struct {
	OrderID    string `json:"order_id"`
	Reference  string `json:"reference"`
	TransferID string `json:"transfer_id"`
}

// HandlePaymentWebhook processes an asynchronous payment notification. The
// payload's status is ignored on purpose: the reconciler verifies with the
// gateway directly, so a forged or stale notification can never confirm a
// booking.
func (h *PaymentHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	gatewayName := mux.Vars(r)["gateway"]

	var payload webhookPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	orderID := payload.OrderID
	if orderID == "" {
		orderID = payload.Reference
	}
	if orderID == "" {
		writeError(w, domain.Validationf("order_id is required"))
		return
	}

	tx, err := h.reconciler.Reconcile(r.Context(), gatewayName, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// HandlePaymentReturn is the seeker's browser coming back from a hosted
// checkout page. It reconciles synchronously so the redirect already
// reflects the outcome, without waiting for the webhook.
func (h *PaymentHandler) HandlePaymentReturn(w http.ResponseWriter, r *http.Request) {
	gatewayName := mux.Vars(r)["gateway"]
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		orderID = r.URL.Query().Get("reference")
	}
	if orderID == "" {
		h.redirectToStatus(w, r, url.Values{"state": {"error"}, "message": {"missing order reference"}})
		return
	}

	tx, err := h.reconciler.Reconcile(r.Context(), gatewayName, orderID)
	if err != nil {
		h.redirectToStatus(w, r, url.Values{"state": {"error"}, "message": {err.Error()}})
		return
	}
	h.redirectToStatus(w, r, url.Values{
		"booking_id": {strconv.FormatInt(tx.BookingID, 10)},
		"state":      {strings.ToLower(string(tx.Status))},
	})
}

func (h *PaymentHandler) redirectToStatus(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, h.baseURL+"/payments/status?"+params.Encode(), http.StatusFound)
}

// HandleTransferWebhook processes outbound transfer notifications and
// settles the matching payout.
func (h *PaymentHandler) HandleTransferWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if payload.TransferID == "" {
		writeError(w, domain.Validationf("transfer_id is required"))
		return
	}

	if err := h.payoutSvc.ReconcileTransfer(r.Context(), payload.TransferID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
