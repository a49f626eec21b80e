package http

import (
	"net/http"

	"consultly-backend/internal/service"
)

// StaffHandler serves the back-office payout review, dispute resolution
// and bank account deletion endpoints.
type StaffHandler struct {
	payoutSvc  service.PayoutService
	bankSvc    service.BankAccountService
	disputeSvc service.DisputeService
}

func NewStaffHandler(payoutSvc service.PayoutService, bankSvc service.BankAccountService, disputeSvc service.DisputeService) *StaffHandler {
	return &StaffHandler{payoutSvc: payoutSvc, bankSvc: bankSvc, disputeSvc: disputeSvc}
}

func (h *StaffHandler) ListPendingPayouts(w http.ResponseWriter, r *http.Request) {
	payouts, err := h.payoutSvc.ListPendingPayouts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payouts": payouts})
}

func (h *StaffHandler) GetPayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	payout, logs, err := h.payoutSvc.GetPayout(r.Context(), payoutID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payout": payout, "logs": logs})
}

type approvePayoutRequest struct {
	FeeCents int64 `json:"fee_cents"`
}

func (h *StaffHandler) ApprovePayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req approvePayoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	payout, err := h.payoutSvc.ApprovePayout(r.Context(), callerID(r), payoutID, req.FeeCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payout)
}

type rejectPayoutRequest struct {
	Reason string `json:"reason"`
}

func (h *StaffHandler) RejectPayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req rejectPayoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.payoutSvc.RejectPayout(r.Context(), callerID(r), payoutID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *StaffHandler) ReleaseFailedPayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.payoutSvc.ReleaseFailedPayout(r.Context(), callerID(r), payoutID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

func (h *StaffHandler) ListPendingDeleteRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.bankSvc.ListPendingDeleteRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

type reviewDeleteRequest struct {
	Approve bool `json:"approve"`
}

func (h *StaffHandler) ReviewDeleteRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req reviewDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.bankSvc.ReviewDeleteRequest(r.Context(), callerID(r), requestID, req.Approve); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reviewed"})
}

type resolveDisputeRequest struct {
	Resolution     string `json:"resolution"`
	ReleaseEarning bool   `json:"release_earning"`
}

func (h *StaffHandler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req resolveDisputeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.disputeSvc.ResolveDispute(r.Context(), callerID(r), disputeID, req.Resolution, req.ReleaseEarning); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
