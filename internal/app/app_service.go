package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"sales-assistant/internal/ai"
	"sales-assistant/internal/core"
)

// ErrAgentDisabled is returned by InterpretDomainAction when no OpenAI key is configured.
var ErrAgentDisabled = errors.New("chat agent is not configured")

type appService struct {
	financing  core.FinancingService
	payments   core.PaymentService
	orders     core.OrderService
	register   core.CashRegisterService
	agent      *ai.Agent
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil, in which case only the typed operations are available.
func NewAppService(
	financing core.FinancingService,
	payments core.PaymentService,
	orders core.OrderService,
	register core.CashRegisterService,
	agent *ai.Agent,
	logger *slog.Logger,
) ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &appService{
		financing: financing,
		payments:  payments,
		orders:    orders,
		register:  register,
		agent:     agent,
		logger:    logger,
	}
	s.dispatcher = NewDispatcher(s)
	return s
}

// CreateFinancingPlan builds and stores the installment schedule for an order.
func (s *appService) CreateFinancingPlan(ctx context.Context, req CreatePlanRequest) (*core.PaymentPlan, error) {
	plan, err := s.financing.CreateFinancingPlan(ctx, req.toInput())
	if err != nil {
		s.logger.WarnContext(ctx, "create financing plan failed",
			slog.Int64("order_id", req.OrderID), slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "financing plan created",
		slog.Int64("plan_id", plan.ID),
		slog.Int64("order_id", plan.SalesOrderID),
		slog.Int("installments", plan.NumInstallments),
		slog.String("total", plan.TotalAmount.StringFixed(2)))
	return plan, nil
}

// GetPlan returns a plan with all of its installments.
func (s *appService) GetPlan(ctx context.Context, planID int64) (*core.PaymentPlan, error) {
	return s.financing.GetPlan(ctx, planID)
}

// ListPlansByClient returns the client's open plans.
func (s *appService) ListPlansByClient(ctx context.Context, clientID int64) (*PlanListResult, error) {
	plans, err := s.financing.ListPlansByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &PlanListResult{ClientID: clientID, Plans: plans}, nil
}

// ListPendingInstallments returns the unpaid installments of a plan.
func (s *appService) ListPendingInstallments(ctx context.Context, planID int64) (*PendingInstallmentsResult, error) {
	items, err := s.financing.ListPendingInstallments(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PendingInstallmentsResult{PlanID: planID, Installments: items}, nil
}

// RegisterPayment applies a payment to one installment.
func (s *appService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*core.PaymentReceipt, error) {
	receipt, err := s.payments.RegisterPayment(ctx, req.ref(), req.PaymentFields.toInput())
	if err != nil {
		s.logger.WarnContext(ctx, "register payment failed",
			slog.Int64("installment_id", req.InstallmentID),
			slog.Int64("plan_id", req.PlanID),
			slog.Int("installment_number", req.InstallmentNumber),
			slog.Any("error", err))
		return nil, err
	}
	s.logReceipt(ctx, "installment payment registered", receipt)
	return receipt, nil
}

// RegisterDirectPayment records a payment against an order outside any plan.
func (s *appService) RegisterDirectPayment(ctx context.Context, req DirectPaymentRequest) (*core.PaymentReceipt, error) {
	receipt, err := s.payments.RegisterDirectPayment(ctx, req.PaymentFields.toInput())
	if err != nil {
		s.logger.WarnContext(ctx, "register direct payment failed",
			slog.Int64("order_id", req.OrderID), slog.Any("error", err))
		return nil, err
	}
	s.logReceipt(ctx, "direct payment registered", receipt)
	return receipt, nil
}

func (s *appService) logReceipt(ctx context.Context, msg string, r *core.PaymentReceipt) {
	attrs := []any{
		slog.Int64("payment_id", r.PaymentID),
		slog.String("amount", r.Amount.StringFixed(2)),
	}
	if r.InstallmentID != nil {
		attrs = append(attrs,
			slog.Int64("installment_id", *r.InstallmentID),
			slog.String("accumulated", r.NewAccumulated.StringFixed(2)),
			slog.String("plan_pending", r.PlanPending.StringFixed(2)),
			slog.String("plan_status", string(r.PlanStatus)))
	}
	s.logger.InfoContext(ctx, msg, attrs...)
}

// GetOrderBalance returns total less discount less payments for an order.
func (s *appService) GetOrderBalance(ctx context.Context, orderID int64) (*core.OrderBalance, error) {
	return s.orders.GetOrderBalance(ctx, orderID)
}

// ListOrderPayments returns every payment recorded against an order.
func (s *appService) ListOrderPayments(ctx context.Context, orderID int64) (*OrderPaymentsResult, error) {
	payments, err := s.orders.ListOrderPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderPaymentsResult{OrderID: orderID, Payments: payments}, nil
}

// GetClientCredit returns the client's overpayments across orders.
func (s *appService) GetClientCredit(ctx context.Context, clientID int64) (*core.ClientCredit, error) {
	return s.orders.GetClientCredit(ctx, clientID)
}

// ConsultRegister reads the drawer or the reconciliation pair.
func (s *appService) ConsultRegister(ctx context.Context, entity string) (*core.RegisterState, error) {
	e, err := core.ParseCashEntity(entity)
	if err != nil {
		return nil, err
	}
	return s.register.Consult(ctx, e)
}

// OpenRegister opens the drawer or the reconciliation pair.
func (s *appService) OpenRegister(ctx context.Context, req OpenRegisterRequest) (*core.RegisterState, error) {
	e, err := core.ParseCashEntity(req.Entity)
	if err != nil {
		return nil, err
	}
	st, err := s.register.Open(ctx, core.OpenRegisterInput{Entity: e, Balances: req.Balances})
	if err != nil {
		s.logger.WarnContext(ctx, "open cash register failed", slog.String("entity", string(e)), slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "cash register opened", slog.String("entity", string(e)))
	return st, nil
}

// CloseRegister closes the drawer or the reconciliation pair.
func (s *appService) CloseRegister(ctx context.Context, entity string) (*core.RegisterState, error) {
	e, err := core.ParseCashEntity(entity)
	if err != nil {
		return nil, err
	}
	st, err := s.register.Close(ctx, e)
	if err != nil {
		s.logger.WarnContext(ctx, "close cash register failed", slog.String("entity", string(e)), slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "cash register closed", slog.String("entity", string(e)))
	return st, nil
}

// InterpretDomainAction runs the agent tool loop over the dispatcher's commands.
func (s *appService) InterpretDomainAction(ctx context.Context, text string) (*DomainActionResult, error) {
	if s.agent == nil {
		return nil, ErrAgentDisabled
	}
	out, err := s.agent.Run(ctx, systemPrompt(), text, s.dispatcher.Tools())
	if err != nil {
		return nil, err
	}
	if out.Kind == ai.OutcomeProposal {
		return &DomainActionResult{
			Kind:     DomainActionKindProposed,
			ToolName: out.ToolName,
			ToolArgs: out.ToolArgs,
			Summary:  s.dispatcher.Summarize(out.ToolName, out.ToolArgs),
		}, nil
	}
	return &DomainActionResult{Kind: DomainActionKindAnswer, Answer: out.Answer}, nil
}

// ExecuteWriteTool runs a confirmed write command. Read commands are refused here;
// they already ran inside the agent loop.
func (s *appService) ExecuteWriteTool(ctx context.Context, toolName string, args json.RawMessage) (any, error) {
	write, known := s.dispatcher.IsWrite(toolName)
	if !known {
		return nil, fmt.Errorf("%w: unknown tool %q", core.ErrValidation, toolName)
	}
	if !write {
		return nil, fmt.Errorf("%w: %q is not a write tool", core.ErrValidation, toolName)
	}
	s.logger.InfoContext(ctx, "executing confirmed write tool", slog.String("tool", toolName))
	return s.dispatcher.Execute(ctx, toolName, args)
}
