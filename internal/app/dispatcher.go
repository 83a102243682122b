package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sales-assistant/internal/ai"
	"sales-assistant/internal/core"
)

// Command names accepted by the Dispatcher. They double as agent tool names.
const (
	CmdCreateFinancingPlan     = "create_financing_plan"
	CmdRegisterPayment         = "register_payment"
	CmdRegisterDirectPayment   = "register_direct_payment"
	CmdOpenCashRegister        = "open_cash_register"
	CmdCloseCashRegister       = "close_cash_register"
	CmdConsultCashRegister     = "consult_cash_register"
	CmdListPendingInstallments = "list_pending_installments"
	CmdGetPaymentPlan          = "get_payment_plan"
	CmdListClientPlans         = "list_client_plans"
	CmdGetOrderBalance         = "get_order_balance"
	CmdListOrderPayments       = "list_order_payments"
	CmdGetClientCredit         = "get_client_credit"
)

type commandSpec struct {
	write       bool
	description string
	prototype   any
	run         func(ctx context.Context, ops LedgerOperations, args json.RawMessage) (any, error)
	summarize   func(args json.RawMessage) string
}

// Dispatcher maps a command name and its JSON arguments onto one typed LedgerOperations call.
// Names outside the fixed table are rejected; nothing is invoked dynamically.
type Dispatcher struct {
	ops      LedgerOperations
	names    []string
	commands map[string]commandSpec
}

func NewDispatcher(ops LedgerOperations) *Dispatcher {
	d := &Dispatcher{ops: ops, commands: make(map[string]commandSpec)}

	d.add(CmdCreateFinancingPlan, command(true,
		"Create a financing plan for a sales order. Splits total_amount into num_installments installments "+
			"spaced by frequency from start_date. Use plan_type Letra with a letra_number for a bill of exchange.",
		func(ctx context.Context, ops LedgerOperations, req CreatePlanRequest) (any, error) {
			return ops.CreateFinancingPlan(ctx, req)
		},
		func(req CreatePlanRequest) string {
			return fmt.Sprintf("Create a %d-installment plan of %s for order %d starting %s",
				req.NumInstallments, req.TotalAmount.StringFixed(2), req.OrderID, req.StartDate)
		}))

	d.add(CmdRegisterPayment, command(true,
		"Register a payment against one installment. Identify it by installment_id (the real_id from "+
			"list_pending_installments) or by plan_id plus installment_number. Never pass a display number as installment_id.",
		func(ctx context.Context, ops LedgerOperations, req RegisterPaymentRequest) (any, error) {
			return ops.RegisterPayment(ctx, req)
		},
		func(req RegisterPaymentRequest) string {
			target := fmt.Sprintf("installment %d", req.InstallmentID)
			if req.InstallmentID == 0 {
				target = fmt.Sprintf("installment #%d of plan %d", req.InstallmentNumber, req.PlanID)
			}
			return fmt.Sprintf("Register %s payment on %s (order %d)", describeAmount(req.PaymentFields), target, req.OrderID)
		}))

	d.add(CmdRegisterDirectPayment, command(true,
		"Register a payment against a sales order that is not part of any financing plan.",
		func(ctx context.Context, ops LedgerOperations, req DirectPaymentRequest) (any, error) {
			return ops.RegisterDirectPayment(ctx, req)
		},
		func(req DirectPaymentRequest) string {
			return fmt.Sprintf("Register %s direct payment on order %d", describeAmount(req.PaymentFields), req.OrderID)
		}))

	d.add(CmdOpenCashRegister, command(true,
		"Open the cash drawer with one opening balance, or both bank reconciliations with two balances (Bancolombia, Davivienda).",
		func(ctx context.Context, ops LedgerOperations, req OpenRegisterRequest) (any, error) {
			return ops.OpenRegister(ctx, req)
		},
		func(req OpenRegisterRequest) string {
			parts := make([]string, len(req.Balances))
			for i, b := range req.Balances {
				parts[i] = b.StringFixed(2)
			}
			return fmt.Sprintf("Open %s with balance(s) %s", req.Entity, strings.Join(parts, ", "))
		}))

	d.add(CmdCloseCashRegister, command(true,
		"Close the cash drawer or both bank reconciliations.",
		func(ctx context.Context, ops LedgerOperations, req registerRef) (any, error) {
			return ops.CloseRegister(ctx, req.Entity)
		},
		func(req registerRef) string { return fmt.Sprintf("Close %s", req.Entity) }))

	d.add(CmdConsultCashRegister, command(false,
		"Show whether the cash drawer or the bank reconciliations are open, with their opening balances.",
		func(ctx context.Context, ops LedgerOperations, req registerRef) (any, error) {
			return ops.ConsultRegister(ctx, req.Entity)
		}, nil))

	d.add(CmdListPendingInstallments, command(false,
		"List the unpaid installments of a plan. Each row has a display_number for the user and a real_id to pay with.",
		func(ctx context.Context, ops LedgerOperations, req planRef) (any, error) {
			return ops.ListPendingInstallments(ctx, req.PlanID)
		}, nil))

	d.add(CmdGetPaymentPlan, command(false,
		"Get a financing plan with all of its installments.",
		func(ctx context.Context, ops LedgerOperations, req planRef) (any, error) {
			return ops.GetPlan(ctx, req.PlanID)
		}, nil))

	d.add(CmdListClientPlans, command(false,
		"List the financing plans of a client that still owe money.",
		func(ctx context.Context, ops LedgerOperations, req clientRef) (any, error) {
			return ops.ListPlansByClient(ctx, req.ClientID)
		}, nil))

	d.add(CmdGetOrderBalance, command(false,
		"Get the outstanding balance of a sales order: total less discount less payments.",
		func(ctx context.Context, ops LedgerOperations, req orderRef) (any, error) {
			return ops.GetOrderBalance(ctx, req.OrderID)
		}, nil))

	d.add(CmdListOrderPayments, command(false,
		"List every payment recorded against a sales order.",
		func(ctx context.Context, ops LedgerOperations, req orderRef) (any, error) {
			return ops.ListOrderPayments(ctx, req.OrderID)
		}, nil))

	d.add(CmdGetClientCredit, command(false,
		"Get the money a client has in favor: what they paid beyond each order's total less discount.",
		func(ctx context.Context, ops LedgerOperations, req clientRef) (any, error) {
			return ops.GetClientCredit(ctx, req.ClientID)
		}, nil))

	return d
}

func (d *Dispatcher) add(name string, spec commandSpec) {
	d.names = append(d.names, name)
	d.commands[name] = spec
}

// command binds a typed handler to its argument prototype and JSON decoding.
func command[T any](
	write bool,
	description string,
	run func(ctx context.Context, ops LedgerOperations, req T) (any, error),
	summarize func(req T) string,
) commandSpec {
	var proto T
	spec := commandSpec{
		write:       write,
		description: description,
		prototype:   proto,
		run: func(ctx context.Context, ops LedgerOperations, args json.RawMessage) (any, error) {
			req, err := decodeArgs[T](args)
			if err != nil {
				return nil, err
			}
			return run(ctx, ops, req)
		},
	}
	if summarize != nil {
		spec.summarize = func(args json.RawMessage) string {
			req, err := decodeArgs[T](args)
			if err != nil {
				return ""
			}
			return summarize(req)
		}
	}
	return spec
}

// decodeArgs decodes strictly: unknown fields are a validation error, not silently dropped.
func decodeArgs[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: invalid arguments: %v", core.ErrValidation, err)
	}
	return v, nil
}

func describeAmount(f PaymentFields) string {
	amount := f.Amount
	if m, ok := core.ParsePaymentMethod(f.Method); ok && m == core.MethodCheque {
		amount = f.ChequeValue
	}
	return fmt.Sprintf("%s %s", amount.StringFixed(2), f.Method)
}

// Names returns every command name in registration order.
func (d *Dispatcher) Names() []string {
	return append([]string(nil), d.names...)
}

// IsWrite reports whether name is a known command that mutates the ledger.
func (d *Dispatcher) IsWrite(name string) (write, known bool) {
	spec, ok := d.commands[name]
	return spec.write, ok
}

// Execute runs one command.
func (d *Dispatcher) Execute(ctx context.Context, name string, args json.RawMessage) (any, error) {
	spec, ok := d.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown command %q", core.ErrValidation, name)
	}
	return spec.run(ctx, d.ops, args)
}

// Summarize renders a proposed write for a confirmation prompt. Read commands and
// undecodable arguments fall back to the command name.
func (d *Dispatcher) Summarize(name string, args json.RawMessage) string {
	spec, ok := d.commands[name]
	if !ok || spec.summarize == nil {
		return name
	}
	if s := spec.summarize(args); s != "" {
		return s
	}
	return name
}

// Tools exposes every command to the agent. Read commands execute in the loop;
// write commands carry no handler and surface as proposals.
func (d *Dispatcher) Tools() *ai.ToolRegistry {
	reg := ai.NewToolRegistry()
	for _, name := range d.names {
		spec := d.commands[name]
		def := ai.ToolDefinition{
			Name:        name,
			Description: spec.description,
			InputSchema: ai.MustSchemaFor(spec.prototype),
			IsReadTool:  !spec.write,
		}
		if !spec.write {
			cmd := name
			def.Handler = func(ctx context.Context, args json.RawMessage) (string, error) {
				out, err := d.Execute(ctx, cmd, args)
				if err != nil {
					return "", err
				}
				b, err := json.Marshal(out)
				if err != nil {
					return "", fmt.Errorf("failed to encode %s result: %w", cmd, err)
				}
				return string(b), nil
			}
		}
		reg.MustRegister(def)
	}
	return reg
}
