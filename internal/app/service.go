package app

import (
	"context"
	"encoding/json"

	"sales-assistant/internal/core"
)

// LedgerOperations is the fixed, typed set of ledger operations. Every caller reaches the
// ledger through these methods: the HTTP API and CLI call them directly and the chat agent
// goes through the Dispatcher.
type LedgerOperations interface {
	// CreateFinancingPlan builds the installment schedule for an order and persists it atomically.
	CreateFinancingPlan(ctx context.Context, req CreatePlanRequest) (*core.PaymentPlan, error)

	// GetPlan returns a plan with all of its installments.
	GetPlan(ctx context.Context, planID int64) (*core.PaymentPlan, error)

	// ListPlansByClient returns the client's plans that still owe money.
	ListPlansByClient(ctx context.Context, clientID int64) (*PlanListResult, error)

	// ListPendingInstallments returns the unpaid installments of a plan with display numbers and real ids.
	ListPendingInstallments(ctx context.Context, planID int64) (*PendingInstallmentsResult, error)

	// RegisterPayment applies a payment to one installment.
	RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*core.PaymentReceipt, error)

	// RegisterDirectPayment records a payment against an order without touching any installment.
	RegisterDirectPayment(ctx context.Context, req DirectPaymentRequest) (*core.PaymentReceipt, error)

	// GetOrderBalance returns the order total less discount and payments.
	GetOrderBalance(ctx context.Context, orderID int64) (*core.OrderBalance, error)

	// ListOrderPayments returns the payments recorded against an order.
	ListOrderPayments(ctx context.Context, orderID int64) (*OrderPaymentsResult, error)

	// GetClientCredit returns the money a client has paid beyond what their orders owe.
	GetClientCredit(ctx context.Context, clientID int64) (*core.ClientCredit, error)

	// ConsultRegister reads the state of the drawer or of the reconciliation pair.
	ConsultRegister(ctx context.Context, entity string) (*core.RegisterState, error)

	// OpenRegister opens the drawer (one balance) or both reconciliations (two balances).
	OpenRegister(ctx context.Context, req OpenRegisterRequest) (*core.RegisterState, error)

	// CloseRegister closes the drawer or both reconciliations.
	CloseRegister(ctx context.Context, entity string) (*core.RegisterState, error)
}

// ApplicationService is the single interface all adapters (CLI, Web) call.
// Implementations contain no display logic of any kind.
type ApplicationService interface {
	LedgerOperations

	// InterpretDomainAction routes a natural language message through the agent tool loop.
	// Read tools run autonomously; a write tool ends the loop and is returned as a proposal
	// that must be confirmed before ExecuteWriteTool runs it.
	InterpretDomainAction(ctx context.Context, text string) (*DomainActionResult, error)

	// ExecuteWriteTool runs a previously proposed write tool after human confirmation.
	ExecuteWriteTool(ctx context.Context, toolName string, args json.RawMessage) (any, error)
}
