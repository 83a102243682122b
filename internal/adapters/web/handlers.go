package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-assistant/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures the router.
type Options struct {
	AllowedOrigins     string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	Development        bool
	Logger             *slog.Logger
}

// Handler holds the ApplicationService and the pending action store.
type Handler struct {
	svc     app.ApplicationService
	pending *PendingStore
	logger  *slog.Logger
}

// NewHandler creates and wires the chi router with all routes.
// Chat routes are mounted only when pending is non-nil.
func NewHandler(svc app.ApplicationService, pending *PendingStore, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	h := &Handler{svc: svc, pending: pending, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(SecureHeaders(opts.Development, logger))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RateLimit(opts.RateLimitPerMinute))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Financing plans ──────────────────────────────────────────────────────
	r.Post("/api/plans", h.apiCreatePlan)
	r.Get("/api/plans/{id}", h.apiGetPlan)
	r.Get("/api/plans/{id}/installments", h.apiListPendingInstallments)
	r.Get("/api/clients/{id}/plans", h.apiListClientPlans)
	r.Get("/api/clients/{id}/credit", h.apiClientCredit)

	// ── Payments and orders ──────────────────────────────────────────────────
	r.Post("/api/payments", h.apiRegisterPayment)
	r.Post("/api/orders/{id}/payments", h.apiRegisterDirectPayment)
	r.Get("/api/orders/{id}/payments", h.apiListOrderPayments)
	r.Get("/api/orders/{id}/balance", h.apiOrderBalance)

	// ── Cash register ────────────────────────────────────────────────────────
	r.Get("/api/cash-register/{entity}", h.apiConsultRegister)
	r.Post("/api/cash-register/{entity}/open", h.apiOpenRegister)
	r.Post("/api/cash-register/{entity}/close", h.apiCloseRegister)

	// ── Chat ─────────────────────────────────────────────────────────────────
	if pending != nil {
		r.Post("/chat", h.chatMessage)
		r.Post("/chat/confirm", h.chatConfirm)
	}

	return r
}

// health reports liveness and whether the chat surface is mounted.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Chat   bool   `json:"chat"`
	}
	writeJSON(w, response{Status: "ok", Chat: h.pending != nil})
}

// pathID parses the {name} URL parameter as a positive integer id.
// On failure it writes a 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name+": "+raw, "VALIDATION_ERROR", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
