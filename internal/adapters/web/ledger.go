package web

import (
	"net/http"

	"sales-assistant/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// apiCreatePlan handles POST /api/plans.
func (h *Handler) apiCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := h.svc.CreateFinancingPlan(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, plan)
}

// apiGetPlan handles GET /api/plans/{id}.
func (h *Handler) apiGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	plan, err := h.svc.GetPlan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, plan)
}

// apiListPendingInstallments handles GET /api/plans/{id}/installments.
func (h *Handler) apiListPendingInstallments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListPendingInstallments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiListClientPlans handles GET /api/clients/{id}/plans.
func (h *Handler) apiListClientPlans(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListPlansByClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiClientCredit handles GET /api/clients/{id}/credit.
func (h *Handler) apiClientCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetClientCredit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiRegisterPayment handles POST /api/payments.
func (h *Handler) apiRegisterPayment(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	receipt, err := h.svc.RegisterPayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, receipt)
}

// apiRegisterDirectPayment handles POST /api/orders/{id}/payments.
// The path id wins; a body order_id that disagrees with it is rejected.
func (h *Handler) apiRegisterDirectPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req app.DirectPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OrderID != 0 && req.OrderID != orderID {
		writeError(w, r, "order_id in body does not match the URL", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	req.OrderID = orderID

	receipt, err := h.svc.RegisterDirectPayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, receipt)
}

// apiListOrderPayments handles GET /api/orders/{id}/payments.
func (h *Handler) apiListOrderPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListOrderPayments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiOrderBalance handles GET /api/orders/{id}/balance.
func (h *Handler) apiOrderBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	balance, err := h.svc.GetOrderBalance(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, balance)
}

// apiConsultRegister handles GET /api/cash-register/{entity}.
func (h *Handler) apiConsultRegister(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ConsultRegister(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

type openRegisterBody struct {
	Balances []decimal.Decimal `json:"balances"`
}

// apiOpenRegister handles POST /api/cash-register/{entity}/open.
func (h *Handler) apiOpenRegister(w http.ResponseWriter, r *http.Request) {
	var body openRegisterBody
	if !decodeJSON(w, r, &body) {
		return
	}
	st, err := h.svc.OpenRegister(r.Context(), app.OpenRegisterRequest{
		Entity:   chi.URLParam(r, "entity"),
		Balances: body.Balances,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

// apiCloseRegister handles POST /api/cash-register/{entity}/close.
func (h *Handler) apiCloseRegister(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.CloseRegister(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}
