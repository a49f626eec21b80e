package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"consultly-backend/internal/security"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Payment    *PaymentHandler
	Booking    *BookingHandler
	Provider   *ProviderHandler
	Staff      *StaffHandler
	Cron       *CronHandler
	Tokens     security.TokenManager
	CronSecret string
}

// NewRouter builds the full route table. Webhooks and redirect returns are
// unauthenticated (the reconciler trusts only the gateway, never the
// payload); everything else requires a bearer token or the cron secret.
func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Gateway-facing endpoints.
	r.HandleFunc("/webhooks/payments/{gateway}", deps.Payment.HandlePaymentWebhook).Methods(http.MethodPost)
	r.HandleFunc("/webhooks/transfers", deps.Payment.HandleTransferWebhook).Methods(http.MethodPost)
	r.HandleFunc("/payments/return/{gateway}", deps.Payment.HandlePaymentReturn).Methods(http.MethodGet)

	// Authenticated API.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(deps.Tokens))

	api.HandleFunc("/bookings", deps.Booking.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", deps.Booking.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/pay", deps.Booking.InitiatePayment).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/complete", deps.Booking.CompleteSession).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/disputes", deps.Booking.OpenDispute).Methods(http.MethodPost)

	provider := api.PathPrefix("/provider").Subrouter()
	provider.Use(RequireRole("PROVIDER"))
	provider.HandleFunc("/earnings", deps.Provider.ListEarnings).Methods(http.MethodGet)
	provider.HandleFunc("/balance", deps.Provider.GetBalance).Methods(http.MethodGet)
	provider.HandleFunc("/bank-account", deps.Provider.AddBankAccount).Methods(http.MethodPost)
	provider.HandleFunc("/bank-account", deps.Provider.GetBankAccount).Methods(http.MethodGet)
	provider.HandleFunc("/bank-account/verify", deps.Provider.VerifyBankAccount).Methods(http.MethodPost)
	provider.HandleFunc("/bank-account/delete-requests", deps.Provider.RequestAccountDeletion).Methods(http.MethodPost)
	provider.HandleFunc("/payouts", deps.Provider.RequestPayout).Methods(http.MethodPost)
	provider.HandleFunc("/payouts", deps.Provider.ListPayouts).Methods(http.MethodGet)

	staff := api.PathPrefix("/staff").Subrouter()
	staff.Use(RequireRole("STAFF"))
	staff.HandleFunc("/payouts", deps.Staff.ListPendingPayouts).Methods(http.MethodGet)
	staff.HandleFunc("/payouts/{id}", deps.Staff.GetPayout).Methods(http.MethodGet)
	staff.HandleFunc("/payouts/{id}/approve", deps.Staff.ApprovePayout).Methods(http.MethodPost)
	staff.HandleFunc("/payouts/{id}/reject", deps.Staff.RejectPayout).Methods(http.MethodPost)
	staff.HandleFunc("/payouts/{id}/release", deps.Staff.ReleaseFailedPayout).Methods(http.MethodPost)
	staff.HandleFunc("/delete-requests", deps.Staff.ListPendingDeleteRequests).Methods(http.MethodGet)
	staff.HandleFunc("/delete-requests/{id}/review", deps.Staff.ReviewDeleteRequest).Methods(http.MethodPost)
	staff.HandleFunc("/disputes/{id}/resolve", deps.Staff.ResolveDispute).Methods(http.MethodPost)

	// External scheduler triggers.
	cron := r.PathPrefix("/cron").Subrouter()
	cron.Use(CronAuthMiddleware(deps.CronSecret))
	cron.HandleFunc("/sweep-dispute-windows", deps.Cron.SweepDisputeWindows()).Methods(http.MethodPost)
	cron.HandleFunc("/expire-unpaid-bookings", deps.Cron.ExpireUnpaidBookings()).Methods(http.MethodPost)
	cron.HandleFunc("/auto-complete-sessions", deps.Cron.AutoCompleteSessions()).Methods(http.MethodPost)
	cron.HandleFunc("/poll-transfer-statuses", deps.Cron.PollTransferStatuses()).Methods(http.MethodPost)
	cron.HandleFunc("/send-session-reminders", deps.Cron.SendSessionReminders()).Methods(http.MethodPost)

	return r
}
