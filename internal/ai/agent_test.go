package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedResponder replays canned responses and records the params it was sent.
type scriptedResponder struct {
	replies []*responses.Response
	calls   []responses.ResponseNewParams
	err     error
}

func (s *scriptedResponder) New(_ context.Context, body responses.ResponseNewParams, _ ...option.RequestOption) (*responses.Response, error) {
	s.calls = append(s.calls, body)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func toolCall(id, callID, name, args string) *responses.Response {
	return &responses.Response{
		ID: id,
		Output: []responses.ResponseOutputItemUnion{
			{Type: "function_call", CallID: callID, Name: name, Arguments: args},
		},
	}
}

func textReply(id, text string) *responses.Response {
	return &responses.Response{
		ID: id,
		Output: []responses.ResponseOutputItemUnion{
			{
				Type: "message",
				Content: []responses.ResponseOutputMessageContentUnion{
					{Type: "output_text", Text: text},
				},
			},
		},
	}
}

func testRegistry(t *testing.T, reads *[]string) *ToolRegistry {
	t.Helper()
	type planArgs struct {
		PlanID int64 `json:"plan_id"`
	}
	reg := NewToolRegistry()
	reg.MustRegister(ToolDefinition{
		Name:        "list_pending_installments",
		Description: "List unpaid installments of a plan",
		InputSchema: MustSchemaFor(planArgs{}),
		IsReadTool:  true,
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			*reads = append(*reads, string(args))
			return `{"installments":[{"display_number":1,"real_id":41}]}`, nil
		},
	})
	reg.MustRegister(ToolDefinition{
		Name:        "register_payment",
		Description: "Register a payment against an installment",
		InputSchema: MustSchemaFor(planArgs{}),
	})
	return reg
}

func TestAgentRun_ReadThenAnswer(t *testing.T) {
	stub := &scriptedResponder{replies: []*responses.Response{
		toolCall("resp_1", "call_1", "list_pending_installments", `{"plan_id":7}`),
		textReply("resp_2", "Plan 7 has one pending installment."),
	}}
	var reads []string
	agent := newAgent(stub, "", nil)

	out, err := agent.Run(context.Background(), "instructions", "what is pending on plan 7?", testRegistry(t, &reads))
	require.NoError(t, err)

	assert.Equal(t, OutcomeAnswer, out.Kind)
	assert.Equal(t, "Plan 7 has one pending installment.", out.Answer)
	assert.Equal(t, []string{`{"plan_id":7}`}, reads)

	require.Len(t, stub.calls, 2)
	assert.Equal(t, "resp_1", stub.calls[1].PreviousResponseID.Value)
	assert.Len(t, stub.calls[1].Input.OfInputItemList, 1)
	assert.Len(t, stub.calls[0].Tools, 2)
}

func TestAgentRun_WriteToolBecomesProposal(t *testing.T) {
	stub := &scriptedResponder{replies: []*responses.Response{
		toolCall("resp_1", "call_1", "register_payment", `{"installment_id":41,"amount":"500000"}`),
	}}
	var reads []string
	agent := newAgent(stub, "gpt-4o-mini", nil)

	out, err := agent.Run(context.Background(), "instructions", "pay 500000 on installment 41", testRegistry(t, &reads))
	require.NoError(t, err)

	assert.Equal(t, OutcomeProposal, out.Kind)
	assert.Equal(t, "register_payment", out.ToolName)
	assert.JSONEq(t, `{"installment_id":41,"amount":"500000"}`, string(out.ToolArgs))
	assert.Empty(t, reads, "write tools never execute inside the loop")
}

func TestAgentRun_TurnLimit(t *testing.T) {
	stub := &scriptedResponder{}
	for i := 0; i < DefaultMaxTurns; i++ {
		stub.replies = append(stub.replies, toolCall("r", "c", "list_pending_installments", `{"plan_id":1}`))
	}
	var reads []string
	agent := newAgent(stub, "", nil)

	_, err := agent.Run(context.Background(), "instructions", "loop", testRegistry(t, &reads))
	assert.ErrorIs(t, err, ErrTurnLimit)
	assert.Len(t, reads, DefaultMaxTurns)
}

func TestAgentRun_ClientError(t *testing.T) {
	stub := &scriptedResponder{err: errors.New("rate limited")}
	var reads []string
	_, err := newAgent(stub, "", nil).Run(context.Background(), "i", "t", testRegistry(t, &reads))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSchemaFor_DecimalAsString(t *testing.T) {
	type req struct {
		Amount   decimal.Decimal `json:"amount"`
		Optional string          `json:"optional,omitempty"`
	}
	s, err := SchemaFor(req{})
	require.NoError(t, err)

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	amount, ok := props["amount"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", amount["type"])
	assert.Equal(t, []any{"amount"}, s["required"])
	assert.Equal(t, false, s["additionalProperties"])
	assert.NotContains(t, s, "$schema")
}
