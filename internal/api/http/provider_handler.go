package http

import (
	"net/http"
	"strconv"

	"consultly-backend/internal/service"
)

// ProviderHandler serves the provider-facing earnings, bank account and
// payout endpoints.
type ProviderHandler struct {
	earningsSvc service.EarningsService
	payoutSvc   service.PayoutService
	bankSvc     service.BankAccountService
}

func NewProviderHandler(earningsSvc service.EarningsService, payoutSvc service.PayoutService, bankSvc service.BankAccountService) *ProviderHandler {
	return &ProviderHandler{earningsSvc: earningsSvc, payoutSvc: payoutSvc, bankSvc: bankSvc}
}

func pagination(r *http.Request) (int32, int32) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32)
	pageSize, _ := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32)
	return int32(page), int32(pageSize)
}

func (h *ProviderHandler) ListEarnings(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	earnings, total, err := h.earningsSvc.ListEarnings(r.Context(), callerID(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"earnings": earnings, "total": total})
}

func (h *ProviderHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.earningsSvc.GetBalance(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"available_cents": balance})
}

type addBankAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
}

func (h *ProviderHandler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	var req addBankAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.bankSvc.AddAccount(r.Context(), callerID(r), req.BankName, req.AccountNumber, req.HolderName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *ProviderHandler) GetBankAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.bankSvc.GetActiveAccount(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

type verifyPennyRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *ProviderHandler) VerifyBankAccount(w http.ResponseWriter, r *http.Request) {
	var req verifyPennyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	remaining, err := h.bankSvc.VerifyPennyAmount(r.Context(), callerID(r), req.AmountCents)
	if err != nil {
		// A wrong guess reports how many attempts are left alongside the
		// validation error.
		if remaining > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":              err.Error(),
				"remaining_attempts": remaining,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

type deleteAccountRequest struct {
	Reason string `json:"reason"`
}

func (h *ProviderHandler) RequestAccountDeletion(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	delReq, err := h.bankSvc.RequestDeletion(r.Context(), callerID(r), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, delReq)
}

type requestPayoutRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *ProviderHandler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	var req requestPayoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	payout, err := h.payoutSvc.RequestPayout(r.Context(), callerID(r), req.AmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payout)
}

func (h *ProviderHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	payouts, total, err := h.payoutSvc.ListPayouts(r.Context(), callerID(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payouts": payouts, "total": total})
}
