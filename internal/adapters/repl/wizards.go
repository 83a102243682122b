package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sales-assistant/internal/adapters/cli"
	"sales-assistant/internal/app"
	"sales-assistant/internal/core"

	"github.com/shopspring/decimal"
)

// prompt prints label and returns the trimmed answer, or def when the answer is empty.
func prompt(reader *bufio.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	return raw
}

// handleNewPlan runs an interactive financing plan creation session.
func handleNewPlan(ctx context.Context, reader *bufio.Reader, out io.Writer, svc app.ApplicationService) {
	fmt.Fprintln(out, "Creating a financing plan. Type 'cancel' at any prompt to abort.")

	var req app.CreatePlanRequest
	ask := func(label, def string) (string, bool) {
		v := prompt(reader, out, label, def)
		if strings.EqualFold(v, "cancel") {
			fmt.Fprintln(out, "Plan creation cancelled.")
			return "", false
		}
		return v, true
	}

	v, ok := ask("Order id", "")
	if !ok {
		return
	}
	orderID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || orderID <= 0 {
		fmt.Fprintln(out, "Invalid order id.")
		return
	}
	req.OrderID = orderID

	if v, ok = ask("Amount to finance", ""); !ok {
		return
	}
	total, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil || !total.IsPositive() {
		fmt.Fprintln(out, "Invalid amount.")
		return
	}
	req.TotalAmount = total

	if v, ok = ask("Number of installments", ""); !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		fmt.Fprintln(out, "Invalid number of installments.")
		return
	}
	req.NumInstallments = n

	if req.StartDate, ok = ask("Start date (YYYY-MM-DD)", core.FormatDate(time.Now())); !ok {
		return
	}
	if req.Frequency, ok = ask("Frequency (Monthly/Biweekly/Weekly)", string(core.FrequencyMonthly)); !ok {
		return
	}
	if req.PlanType, ok = ask("Plan type (OtherFinancing/Letra)", string(core.PlanTypeOtherFinancing)); !ok {
		return
	}
	if core.ParsePlanType(req.PlanType) == core.PlanTypeLetra {
		if req.LetraNumber, ok = ask("Letra number", ""); !ok {
			return
		}
	}

	plan, err := svc.CreateFinancingPlan(ctx, req)
	if err != nil {
		fmt.Fprintf(out, "[REPL] Error creating plan: %v\n", err)
		return
	}
	cli.PrintResult(out, plan)
	fmt.Fprintf(out, "Use '/installments %d' to see what is pending.\n", plan.ID)
}
