package app

import (
	"encoding/json"

	"sales-assistant/internal/core"
)

// PlanListResult holds the open plans of one client.
type PlanListResult struct {
	ClientID int64              `json:"client_id"`
	Plans    []core.PaymentPlan `json:"plans"`
}

// PendingInstallmentsResult holds the unpaid installments of one plan.
// Pay an installment by its real_id, or by plan_id + installment_number.
type PendingInstallmentsResult struct {
	PlanID       int64                     `json:"plan_id"`
	Installments []core.PendingInstallment `json:"installments"`
}

// OrderPaymentsResult holds every payment recorded against an order.
type OrderPaymentsResult struct {
	OrderID  int64          `json:"order_id"`
	Payments []core.Payment `json:"payments"`
}

// DomainActionKind is the outcome type of InterpretDomainAction.
type DomainActionKind string

const (
	// DomainActionKindAnswer is a final text answer, possibly after read tools ran.
	DomainActionKindAnswer DomainActionKind = "answer"
	// DomainActionKindProposed is a write tool awaiting human confirmation.
	DomainActionKindProposed DomainActionKind = "proposed"
)

// DomainActionResult is what the agent loop produced for one message.
type DomainActionResult struct {
	Kind     DomainActionKind `json:"kind"`
	Answer   string           `json:"answer,omitempty"`
	ToolName string           `json:"tool,omitempty"`
	ToolArgs json.RawMessage  `json:"args,omitempty"`
	// Summary is a one-line description of the proposed action for the confirmation card.
	Summary string `json:"summary,omitempty"`
}
