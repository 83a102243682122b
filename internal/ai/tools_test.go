package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readHandler(context.Context, json.RawMessage) (string, error) { return `{}`, nil }

func TestToolRegistry_RegisterRules(t *testing.T) {
	reg := NewToolRegistry()

	require.NoError(t, reg.Register(ToolDefinition{Name: "get_order_balance", IsReadTool: true, Handler: readHandler}))
	require.NoError(t, reg.Register(ToolDefinition{Name: "register_payment"}))

	assert.ErrorContains(t, reg.Register(ToolDefinition{Name: "register_payment"}), "registered twice")
	assert.ErrorContains(t, reg.Register(ToolDefinition{Name: "list_order_payments", IsReadTool: true}), "has no handler")
	assert.ErrorContains(t, reg.Register(ToolDefinition{Name: "open_cash_register", Handler: readHandler}), "must not have a handler")
	assert.Error(t, reg.Register(ToolDefinition{IsReadTool: true, Handler: readHandler}))

	assert.Equal(t, 2, reg.Len())
	reads, writes := reg.Names()
	assert.Equal(t, []string{"get_order_balance"}, reads)
	assert.Equal(t, []string{"register_payment"}, writes)

	def, ok := reg.Get("register_payment")
	require.True(t, ok)
	assert.False(t, def.IsReadTool)
	_, ok = reg.Get("delete_payment")
	assert.False(t, ok)

	assert.Len(t, reg.ToOpenAITools(), 2)
}

func TestToolRegistry_MustRegisterPanics(t *testing.T) {
	reg := NewToolRegistry()
	reg.MustRegister(ToolDefinition{Name: "close_cash_register"})
	assert.Panics(t, func() { reg.MustRegister(ToolDefinition{Name: "close_cash_register"}) })
}
