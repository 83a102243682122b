package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// DefaultMaxTurns bounds the number of model round-trips per message.
const DefaultMaxTurns = 6

// ErrTurnLimit is returned when the model keeps calling read tools without concluding.
var ErrTurnLimit = errors.New("agent: turn limit reached without an answer")

// responder is the slice of the OpenAI client the agent needs.
type responder interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
}

// OutcomeKind tells the caller whether the loop ended in text or in a proposed write.
type OutcomeKind string

const (
	OutcomeAnswer   OutcomeKind = "answer"
	OutcomeProposal OutcomeKind = "proposal"
)

// Outcome is the result of one Run.
type Outcome struct {
	Kind     OutcomeKind
	Answer   string
	ToolName string
	ToolArgs json.RawMessage
}

type Agent struct {
	client   responder
	model    string
	maxTurns int
	logger   *slog.Logger
}

func NewAgent(apiKey, model string, logger *slog.Logger) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return newAgent(&client.Responses, model, logger)
}

func newAgent(client responder, model string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = string(shared.ChatModelGPT4oMini)
	}
	return &Agent{client: client, model: model, maxTurns: DefaultMaxTurns, logger: logger}
}

type functionCall struct {
	CallID    string
	Name      string
	Arguments string
}

func functionCalls(resp *responses.Response) []functionCall {
	var out []functionCall
	for _, item := range resp.Output {
		if item.Type == "function_call" {
			out = append(out, functionCall{CallID: item.CallID, Name: item.Name, Arguments: item.Arguments})
		}
	}
	return out
}

// Run sends text to the model with every registered tool available.
// Read tool calls are executed and their output fed back; the first write tool call ends
// the loop as a proposal. A response without tool calls ends the loop as an answer.
func (a *Agent) Run(ctx context.Context, instructions, text string, registry *ToolRegistry) (*Outcome, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(a.model),
		Instructions: openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
		Tools: registry.ToOpenAITools(),
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		resp, err := a.client.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("openai responses error: %w", err)
		}

		calls := functionCalls(resp)
		if len(calls) == 0 {
			answer := resp.OutputText()
			if answer == "" {
				return nil, fmt.Errorf("empty response content")
			}
			return &Outcome{Kind: OutcomeAnswer, Answer: answer}, nil
		}

		var outputs responses.ResponseInputParam
		for _, call := range calls {
			def, ok := registry.Get(call.Name)
			if !ok {
				outputs = append(outputs, responses.ResponseInputItemParamOfFunctionCallOutput(
					call.CallID, errorJSON(fmt.Errorf("unknown tool %q", call.Name))))
				continue
			}
			if !def.IsReadTool {
				a.logger.InfoContext(ctx, "agent proposed write tool", slog.String("tool", call.Name))
				return &Outcome{Kind: OutcomeProposal, ToolName: call.Name, ToolArgs: json.RawMessage(call.Arguments)}, nil
			}

			out, err := def.Handler(ctx, json.RawMessage(call.Arguments))
			if err != nil {
				a.logger.WarnContext(ctx, "read tool failed", slog.String("tool", call.Name), slog.Any("error", err))
				out = errorJSON(err)
			}
			outputs = append(outputs, responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, out))
		}

		params.PreviousResponseID = openai.String(resp.ID)
		params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: outputs}
	}
	return nil, ErrTurnLimit
}

// errorJSON renders err as a tool output so the model can read the message and recover.
func errorJSON(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}
