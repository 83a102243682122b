package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sales-assistant/internal/app"
	"sales-assistant/internal/core"

	"github.com/shopspring/decimal"
)

// ErrUsage is returned for malformed command lines; the usage text has already been printed.
var ErrUsage = errors.New("usage error")

const usage = `Commands:
  plan create -order N -installments N -total X -start YYYY-MM-DD [-frequency Monthly|Biweekly|Weekly] [-type OtherFinancing|Letra -letra NUM]
  plan <plan-id>                       show a plan and its installments
  plans <client-id>                    open plans of a client
  installments <plan-id>               pending installments with display numbers and real ids
  pay (-installment ID | -plan ID -number N) -order N -client N -method Cash|Transfer|Cheque [payment flags]
  pay-direct -order N -client N -method Cash|Transfer|Cheque [payment flags]
  balance <order-id>                   order total, discount, payments and balance
  payments <order-id>                  payments recorded against an order
  credit <client-id>                   money in favor of a client across orders
  register consult|close <drawer|reconciliation>
  register open drawer <balance>
  register open reconciliation <bancolombia-balance> <davivienda-balance>

Payment flags:
  -amount X -date YYYY-MM-DD -notes TEXT
  -proof NUM -emission-bank NAME -dest-bank Bancolombia|Davivienda -emission-date YYYY-MM-DD   (Transfer)
  -cheque NUM -bank NAME -emission-date YYYY-MM-DD -collect-date YYYY-MM-DD -cheque-value X    (Cheque)`

// Usage prints the command summary.
func Usage(w io.Writer) {
	fmt.Fprintln(w, usage)
}

// Run executes one command line and prints its result to out.
// args[0] is the subcommand name.
func Run(ctx context.Context, svc app.LedgerOperations, out io.Writer, args []string) error {
	if len(args) == 0 {
		Usage(out)
		return ErrUsage
	}

	result, err := dispatch(ctx, svc, out, args[0], args[1:])
	if err != nil {
		return err
	}
	PrintResult(out, result)
	return nil
}

func dispatch(ctx context.Context, svc app.LedgerOperations, out io.Writer, cmd string, args []string) (any, error) {
	switch strings.ToLower(cmd) {
	case "plan":
		if len(args) > 0 && args[0] == "create" {
			req, err := parsePlanCreate(out, args[1:])
			if err != nil {
				return nil, err
			}
			return svc.CreateFinancingPlan(ctx, req)
		}
		id, err := positionalID(out, "plan <plan-id>", args)
		if err != nil {
			return nil, err
		}
		return svc.GetPlan(ctx, id)

	case "plans":
		id, err := positionalID(out, "plans <client-id>", args)
		if err != nil {
			return nil, err
		}
		return svc.ListPlansByClient(ctx, id)

	case "installments", "inst":
		id, err := positionalID(out, "installments <plan-id>", args)
		if err != nil {
			return nil, err
		}
		return svc.ListPendingInstallments(ctx, id)

	case "pay":
		req, err := parsePay(out, args)
		if err != nil {
			return nil, err
		}
		return svc.RegisterPayment(ctx, req)

	case "pay-direct":
		fs, fields := paymentFlagSet(out, "pay-direct")
		if err := fs.Parse(args); err != nil {
			return nil, ErrUsage
		}
		pf, err := fields.build()
		if err != nil {
			return nil, err
		}
		return svc.RegisterDirectPayment(ctx, app.DirectPaymentRequest{PaymentFields: pf})

	case "balance", "bal":
		id, err := positionalID(out, "balance <order-id>", args)
		if err != nil {
			return nil, err
		}
		return svc.GetOrderBalance(ctx, id)

	case "payments":
		id, err := positionalID(out, "payments <order-id>", args)
		if err != nil {
			return nil, err
		}
		return svc.ListOrderPayments(ctx, id)

	case "credit":
		id, err := positionalID(out, "credit <client-id>", args)
		if err != nil {
			return nil, err
		}
		return svc.GetClientCredit(ctx, id)

	case "register", "reg":
		return runRegister(ctx, svc, out, args)

	case "help", "h":
		Usage(out)
		return nil, ErrUsage

	default:
		fmt.Fprintf(out, "Unknown command: %s\n", cmd)
		Usage(out)
		return nil, ErrUsage
	}
}

func runRegister(ctx context.Context, svc app.LedgerOperations, out io.Writer, args []string) (any, error) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: register consult|open|close <drawer|reconciliation> [balances...]")
		return nil, ErrUsage
	}
	action, entity := strings.ToLower(args[0]), args[1]
	switch action {
	case "consult", "status":
		return svc.ConsultRegister(ctx, entity)
	case "close":
		return svc.CloseRegister(ctx, entity)
	case "open":
		balances := make([]decimal.Decimal, 0, len(args)-2)
		for _, raw := range args[2:] {
			b, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid balance %q", core.ErrValidation, raw)
			}
			balances = append(balances, b)
		}
		return svc.OpenRegister(ctx, app.OpenRegisterRequest{Entity: entity, Balances: balances})
	default:
		fmt.Fprintf(out, "Unknown register action: %s (consult, open, close)\n", action)
		return nil, ErrUsage
	}
}

func positionalID(out io.Writer, form string, args []string) (int64, error) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: "+form)
		return 0, ErrUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, args[0])
	}
	return id, nil
}

func parsePlanCreate(out io.Writer, args []string) (app.CreatePlanRequest, error) {
	var (
		req   app.CreatePlanRequest
		total string
	)
	fs := flag.NewFlagSet("plan create", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Int64Var(&req.OrderID, "order", 0, "sales order id")
	fs.IntVar(&req.NumInstallments, "installments", 0, "number of installments")
	fs.StringVar(&total, "total", "", "amount to finance")
	fs.StringVar(&req.StartDate, "start", "", "start date YYYY-MM-DD")
	fs.StringVar(&req.Frequency, "frequency", "Monthly", "Monthly, Biweekly or Weekly")
	fs.StringVar(&req.PlanType, "type", "OtherFinancing", "OtherFinancing or Letra")
	fs.StringVar(&req.LetraNumber, "letra", "", "bill number for Letra plans")
	if err := fs.Parse(args); err != nil {
		return req, ErrUsage
	}
	amount, err := parseAmount("total", total)
	if err != nil {
		return req, err
	}
	req.TotalAmount = amount
	return req, nil
}

func parsePay(out io.Writer, args []string) (app.RegisterPaymentRequest, error) {
	var req app.RegisterPaymentRequest
	fs, fields := paymentFlagSet(out, "pay")
	fs.Int64Var(&req.InstallmentID, "installment", 0, "real installment id")
	fs.Int64Var(&req.PlanID, "plan", 0, "plan id (with -number)")
	fs.IntVar(&req.InstallmentNumber, "number", 0, "installment number within the plan")
	if err := fs.Parse(args); err != nil {
		return req, ErrUsage
	}
	pf, err := fields.build()
	if err != nil {
		return req, err
	}
	req.PaymentFields = pf
	return req, nil
}

// paymentFlags collects the raw flag values shared by pay and pay-direct.
type paymentFlags struct {
	fields      app.PaymentFields
	amount      string
	chequeValue string
}

func paymentFlagSet(out io.Writer, name string) (*flag.FlagSet, *paymentFlags) {
	p := &paymentFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Int64Var(&p.fields.OrderID, "order", 0, "sales order id")
	fs.Int64Var(&p.fields.ClientID, "client", 0, "client id")
	fs.StringVar(&p.amount, "amount", "", "amount received")
	fs.StringVar(&p.fields.Method, "method", "", "Cash, Transfer or Cheque")
	fs.StringVar(&p.fields.PaymentDate, "date", "", "payment date YYYY-MM-DD (default today)")
	fs.StringVar(&p.fields.Notes, "notes", "", "free text")
	fs.StringVar(&p.fields.EmissionDate, "emission-date", "", "transfer or cheque emission date")
	fs.StringVar(&p.fields.ProofNumber, "proof", "", "transfer proof number")
	fs.StringVar(&p.fields.EmissionBank, "emission-bank", "", "bank the transfer was sent from")
	fs.StringVar(&p.fields.DestinationBank, "dest-bank", "", "Bancolombia or Davivienda")
	fs.StringVar(&p.fields.ChequeNumber, "cheque", "", "cheque number")
	fs.StringVar(&p.fields.Bank, "bank", "", "bank the cheque is drawn on")
	fs.StringVar(&p.fields.EstimatedCollectionDate, "collect-date", "", "estimated cheque collection date")
	fs.StringVar(&p.chequeValue, "cheque-value", "", "cheque face value")
	return fs, p
}

func (p *paymentFlags) build() (app.PaymentFields, error) {
	f := p.fields
	if p.amount != "" {
		a, err := parseAmount("amount", p.amount)
		if err != nil {
			return f, err
		}
		f.Amount = a
	}
	if p.chequeValue != "" {
		v, err := parseAmount("cheque-value", p.chequeValue)
		if err != nil {
			return f, err
		}
		f.ChequeValue = v
	}
	return f, nil
}

// parseAmount accepts plain decimals and tolerates thousands separators ("3,000,000").
func parseAmount(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s %q", core.ErrValidation, name, raw)
	}
	return d, nil
}
