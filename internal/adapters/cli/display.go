package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sales-assistant/internal/app"
	"sales-assistant/internal/core"
)

// PrintResult renders any ledger operation result. Unknown types fall back to indented JSON.
func PrintResult(w io.Writer, v any) {
	switch r := v.(type) {
	case *core.PaymentPlan:
		printPlan(w, r)
	case *app.PlanListResult:
		printPlanList(w, r)
	case *app.PendingInstallmentsResult:
		printPendingInstallments(w, r)
	case *core.PaymentReceipt:
		printReceipt(w, r)
	case *core.OrderBalance:
		printOrderBalance(w, r)
	case *app.OrderPaymentsResult:
		printOrderPayments(w, r)
	case *core.ClientCredit:
		printClientCredit(w, r)
	case *core.RegisterState:
		printRegisterState(w, r)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(v)
	}
}

func rule(w io.Writer, ch string, n int) {
	fmt.Fprintln(w, strings.Repeat(ch, n))
}

func printPlan(w io.Writer, p *core.PaymentPlan) {
	fmt.Fprintln(w)
	rule(w, "=", 72)
	fmt.Fprintf(w, "  PAYMENT PLAN %d — Order %d\n", p.ID, p.SalesOrderID)
	fmt.Fprintf(w, "  Type      : %s   Frequency: %s   Status: %s\n", p.Type, p.Frequency, p.Status)
	fmt.Fprintf(w, "  Total     : %s   Pending: %s\n", p.TotalAmount.StringFixed(2), p.PendingAmount.StringFixed(2))
	if p.Letra != nil {
		fmt.Fprintf(w, "  Letra     : %s (last date %s)\n", p.Letra.LetraNumber, core.FormatDate(p.Letra.LastDate))
	}
	rule(w, "=", 72)
	fmt.Fprintf(w, "  %-4s %-8s %-12s %15s %15s  %s\n", "NO.", "ID", "DUE", "AMOUNT", "PAID", "STATUS")
	rule(w, "-", 72)
	for _, i := range p.Installments {
		fmt.Fprintf(w, "  %-4d %-8d %-12s %15s %15s  %s\n",
			i.Number, i.ID, core.FormatDate(i.DueDate), i.Amount.StringFixed(2), i.PayAmount.StringFixed(2), i.Status)
	}
	rule(w, "=", 72)
}

func printPlanList(w io.Writer, r *app.PlanListResult) {
	fmt.Fprintln(w)
	rule(w, "=", 72)
	fmt.Fprintf(w, "  OPEN PLANS — Client %d\n", r.ClientID)
	rule(w, "=", 72)
	if len(r.Plans) == 0 {
		fmt.Fprintln(w, "  No open plans.")
		rule(w, "=", 72)
		return
	}
	fmt.Fprintf(w, "  %-6s %-8s %-15s %5s %15s %15s\n", "PLAN", "ORDER", "TYPE", "N", "TOTAL", "PENDING")
	rule(w, "-", 72)
	for _, p := range r.Plans {
		fmt.Fprintf(w, "  %-6d %-8d %-15s %5d %15s %15s\n",
			p.ID, p.SalesOrderID, p.Type, p.NumInstallments, p.TotalAmount.StringFixed(2), p.PendingAmount.StringFixed(2))
	}
	rule(w, "=", 72)
}

func printPendingInstallments(w io.Writer, r *app.PendingInstallmentsResult) {
	fmt.Fprintln(w)
	rule(w, "=", 76)
	fmt.Fprintf(w, "  PENDING INSTALLMENTS — Plan %d\n", r.PlanID)
	rule(w, "=", 76)
	if len(r.Installments) == 0 {
		fmt.Fprintln(w, "  Nothing pending.")
		rule(w, "=", 76)
		return
	}
	fmt.Fprintf(w, "  %-3s %-8s %-4s %-12s %15s %15s %15s\n", "#", "REAL ID", "NO.", "DUE", "AMOUNT", "PAID", "REMAINING")
	rule(w, "-", 76)
	for _, i := range r.Installments {
		fmt.Fprintf(w, "  %-3d %-8d %-4d %-12s %15s %15s %15s\n",
			i.DisplayNumber, i.RealID, i.Number, core.FormatDate(i.DueDate),
			i.Amount.StringFixed(2), i.Paid.StringFixed(2), i.Remaining.StringFixed(2))
	}
	rule(w, "=", 76)
}

func printReceipt(w io.Writer, r *core.PaymentReceipt) {
	fmt.Fprintf(w, "Payment %d registered: %s\n", r.PaymentID, r.Amount.StringFixed(2))
	if r.InstallmentID == nil {
		return
	}
	state := "partially paid"
	if r.InstallmentPaid {
		state = "PAID"
	}
	fmt.Fprintf(w, "  Installment %d: %s of %s (%s)\n",
		*r.InstallmentID, r.NewAccumulated.StringFixed(2), r.InstallmentDue.StringFixed(2), state)
	fmt.Fprintf(w, "  Plan pending : %s  Status: %s\n", r.PlanPending.StringFixed(2), r.PlanStatus)
}

func printOrderBalance(w io.Writer, b *core.OrderBalance) {
	fmt.Fprintln(w)
	rule(w, "=", 48)
	fmt.Fprintf(w, "  ORDER %d — Client %d\n", b.OrderID, b.ClientID)
	rule(w, "=", 48)
	fmt.Fprintf(w, "  %-20s %25s\n", "Total", b.Total.StringFixed(2))
	fmt.Fprintf(w, "  %-20s %25s\n", "Discount", b.Discount.StringFixed(2))
	fmt.Fprintf(w, "  %-20s %25s\n", fmt.Sprintf("Paid (%d)", b.PaymentCount), b.Paid.StringFixed(2))
	rule(w, "-", 48)
	fmt.Fprintf(w, "  %-20s %25s\n", "Balance", b.Balance.StringFixed(2))
	rule(w, "=", 48)
}

func printClientCredit(w io.Writer, c *core.ClientCredit) {
	fmt.Fprintln(w)
	rule(w, "=", 60)
	fmt.Fprintf(w, "  CREDIT IN FAVOR: Client %d\n", c.ClientID)
	rule(w, "=", 60)
	if len(c.Orders) == 0 {
		fmt.Fprintln(w, "  No money in favor.")
		rule(w, "=", 60)
		return
	}
	fmt.Fprintf(w, "  %-8s %16s %16s %14s\n", "Order", "Owed", "Paid", "Credit")
	rule(w, "-", 60)
	for _, o := range c.Orders {
		fmt.Fprintf(w, "  %-8d %16s %16s %14s\n", o.OrderID, o.Owed.StringFixed(2), o.Paid.StringFixed(2), o.Credit.StringFixed(2))
	}
	rule(w, "-", 60)
	fmt.Fprintf(w, "  %-42s %14s\n", "Total", c.Total.StringFixed(2))
	rule(w, "=", 60)
}

func printOrderPayments(w io.Writer, r *app.OrderPaymentsResult) {
	fmt.Fprintln(w)
	rule(w, "=", 76)
	fmt.Fprintf(w, "  PAYMENTS — Order %d\n", r.OrderID)
	rule(w, "=", 76)
	if len(r.Payments) == 0 {
		fmt.Fprintln(w, "  No payments recorded.")
		rule(w, "=", 76)
		return
	}
	fmt.Fprintf(w, "  %-6s %-12s %-9s %15s %-12s  %s\n", "ID", "DATE", "METHOD", "AMOUNT", "INSTALLMENT", "DETAIL")
	rule(w, "-", 76)
	for _, p := range r.Payments {
		inst := "-"
		if p.InstallmentID != nil {
			inst = fmt.Sprintf("%d", *p.InstallmentID)
		}
		detail := ""
		switch {
		case p.Transfer != nil:
			detail = fmt.Sprintf("%s → %s", p.Transfer.ProofNumber, p.Transfer.DestinyBank)
		case p.Cheque != nil:
			detail = fmt.Sprintf("cheque %s (%s)", p.Cheque.ChequeNumber, p.Cheque.Bank)
		}
		fmt.Fprintf(w, "  %-6d %-12s %-9s %15s %-12s  %s\n",
			p.ID, core.FormatDate(p.PaymentDate), p.Method, p.Amount.StringFixed(2), inst, detail)
	}
	rule(w, "=", 76)
}

func printRegisterState(w io.Writer, st *core.RegisterState) {
	state := "CLOSED"
	if st.IsOpen {
		state = "OPEN"
	}
	fmt.Fprintln(w)
	rule(w, "=", 62)
	fmt.Fprintf(w, "  CASH REGISTER — %s: %s\n", st.Entity, state)
	rule(w, "=", 62)
	fmt.Fprintf(w, "  %-28s %-8s %20s\n", "ROW", "STATE", "OPENING BALANCE")
	rule(w, "-", 62)
	for _, r := range st.Rows {
		rs := "closed"
		if r.IsOpen {
			rs = "open"
		}
		fmt.Fprintf(w, "  %-28s %-8s %20s\n", r.Label, rs, r.OpeningBalance.StringFixed(2))
	}
	rule(w, "=", 62)
}
