package repl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"sales-assistant/internal/app"
	"sales-assistant/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService answers chat messages with a fixed result; unused ledger methods are left nil.
type scriptedService struct {
	app.LedgerOperations
	result   *app.DomainActionResult
	executed []string
	created  *app.CreatePlanRequest
}

func (s *scriptedService) InterpretDomainAction(_ context.Context, _ string) (*app.DomainActionResult, error) {
	return s.result, nil
}

func (s *scriptedService) ExecuteWriteTool(_ context.Context, toolName string, _ json.RawMessage) (any, error) {
	s.executed = append(s.executed, toolName)
	return &core.RegisterState{Entity: core.EntityDrawer}, nil
}

func (s *scriptedService) GetOrderBalance(_ context.Context, orderID int64) (*core.OrderBalance, error) {
	return &core.OrderBalance{OrderID: orderID, Balance: decimal.NewFromInt(750000)}, nil
}

func (s *scriptedService) CreateFinancingPlan(_ context.Context, req app.CreatePlanRequest) (*core.PaymentPlan, error) {
	s.created = &req
	return &core.PaymentPlan{ID: 3, SalesOrderID: req.OrderID, TotalAmount: req.TotalAmount}, nil
}

func run(t *testing.T, svc app.ApplicationService, input string) string {
	t.Helper()
	var out bytes.Buffer
	Run(context.Background(), svc, bufio.NewReader(strings.NewReader(input)), &out)
	return out.String()
}

func TestREPL_SlashCommandUsesCLI(t *testing.T) {
	out := run(t, &scriptedService{}, "/balance 151\n/exit\n")
	assert.Contains(t, out, "ORDER 151")
	assert.Contains(t, out, "750000.00")
	assert.Contains(t, out, "Goodbye!")
}

func TestREPL_ProposalConfirmed(t *testing.T) {
	svc := &scriptedService{result: &app.DomainActionResult{
		Kind:     app.DomainActionKindProposed,
		ToolName: app.CmdCloseCashRegister,
		ToolArgs: json.RawMessage(`{"entity":"drawer"}`),
		Summary:  "Close drawer",
	}}
	out := run(t, svc, "cierra la caja\ny\n/exit\n")
	require.Equal(t, []string{app.CmdCloseCashRegister}, svc.executed)
	assert.Contains(t, out, "PROPOSED: Close drawer")
	assert.Contains(t, out, "CASH REGISTER")
}

func TestREPL_ProposalDeclined(t *testing.T) {
	svc := &scriptedService{result: &app.DomainActionResult{
		Kind:     app.DomainActionKindProposed,
		ToolName: app.CmdCloseCashRegister,
		ToolArgs: json.RawMessage(`{"entity":"drawer"}`),
	}}
	out := run(t, svc, "cierra la caja\nn\n")
	assert.Empty(t, svc.executed)
	assert.Contains(t, out, "Cancelled.")
}

func TestREPL_Answer(t *testing.T) {
	svc := &scriptedService{result: &app.DomainActionResult{Kind: app.DomainActionKindAnswer, Answer: "Todo al día"}}
	out := run(t, svc, "como va el plan 7?\n")
	assert.Contains(t, out, "[AI]: Todo al día")
}

func TestREPL_NewPlanWizard(t *testing.T) {
	svc := &scriptedService{}
	out := run(t, svc, "/new-plan\n150\n3000000\n3\n2025-01-01\n\n\n/exit\n")
	require.NotNil(t, svc.created)
	assert.Equal(t, int64(150), svc.created.OrderID)
	assert.Equal(t, 3, svc.created.NumInstallments)
	assert.Equal(t, "Monthly", svc.created.Frequency)
	assert.Equal(t, "OtherFinancing", svc.created.PlanType)
	assert.Contains(t, out, "/installments 3")
}

func TestREPL_NewPlanWizardCancel(t *testing.T) {
	svc := &scriptedService{}
	out := run(t, svc, "/new-plan\ncancel\n/exit\n")
	assert.Nil(t, svc.created)
	assert.Contains(t, out, "Plan creation cancelled.")
}
