package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"listplicity-intake-backend/internal/types"
)

var (
	// ErrNoCredential means no model credential is configured. The chat
	// path still returns a renderable turn; the transport decides status.
	ErrNoCredential = errors.New("model credential not configured")
	// ErrUpstream means the model call itself failed or timed out.
	ErrUpstream = errors.New("model call failed")
)

const chatTimeout = 20 * time.Second

// CompletionAPI is the slice of the OpenAI client the orchestrator needs.
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Orchestrator advances one conversation turn: build request, call the
// model, normalize its output, merge the patch. It holds no per-conversation
// state; the caller carries state across turns.
type Orchestrator struct {
	client CompletionAPI
	spec   PromptSpec
	model  string
}

// NewOrchestrator wires the turn pipeline. A nil client marks the credential
// as absent and degrades every Advance call instead of failing the process.
func NewOrchestrator(client CompletionAPI, spec PromptSpec, model string) *Orchestrator {
	return &Orchestrator{client: client, spec: spec, model: model}
}

// Advance runs one conversation turn. On config or upstream failure the
// returned response is still schema-valid and renderable, the state is
// unchanged, and the error tells the transport to flag the turn as degraded.
func (o *Orchestrator) Advance(ctx context.Context, history []types.Turn, state types.ConversationState) (types.StructuredResponse, types.ConversationState, error) {
	if o.client == nil {
		return degradedTurn("The assistant is offline right now. Set OPENAI_API_KEY to enable it."), state, ErrNoCredential
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	req := BuildRequest(o.spec, o.model, history, state)
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Println("model call failed:", err)
		return degradedTurn("I couldn't reach the assistant just now. Please try again in a moment."), state, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		log.Println("model returned no choices")
		return degradedTurn("I couldn't reach the assistant just now. Please try again in a moment."), state, fmt.Errorf("%w: no choices", ErrUpstream)
	}

	out := Normalize(resp.Choices[0].Message.Content)
	res := Merge(state, out.StatePatch)
	if out.WantsSubmit() && !res.SubmissionReady {
		log.Println("model asserted submit before required fields were complete")
	}
	// Return the validated patch so callers merging it verbatim never store
	// a value the schema rejected.
	out.StatePatch = res.Applied
	return out, res.Next, nil
}
