package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc  service.BookingService
	earningsSvc service.EarningsService
	disputeSvc  service.DisputeService
}

func NewBookingHandler(bookingSvc service.BookingService, earningsSvc service.EarningsService, disputeSvc service.DisputeService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, earningsSvc: earningsSvc, disputeSvc: disputeSvc}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("invalid %s", name)
	}
	return id, nil
}

type createBookingRequest struct {
	ProviderID  int64  `json:"provider_id"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	AmountCents int64  `json:"amount_cents"`
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.bookingSvc.CreateBooking(r.Context(), callerID(r), req.ProviderID, req.StartAt, req.EndAt, req.AmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

type initiatePaymentRequest struct {
	Gateway string `json:"gateway"`
}

func (h *BookingHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req initiatePaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	payURL, err := h.bookingSvc.InitiatePayment(r.Context(), callerID(r), bookingID, req.Gateway)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pay_url": payURL})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.bookingSvc.GetBooking(r.Context(), callerID(r), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type completeSessionRequest struct {
	CompletionCode string `json:"completion_code"`
}

func (h *BookingHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req completeSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	earning, err := h.earningsSvc.CompleteSession(r.Context(), callerID(r), bookingID, req.CompletionCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, earning)
}

type openDisputeRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req openDisputeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	dispute, err := h.disputeSvc.OpenDispute(r.Context(), callerID(r), bookingID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dispute)
}
