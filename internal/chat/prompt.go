package chat

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"listplicity-intake-backend/internal/types"
)

// turnPayload is the single user message sent to the model: the trailing
// history window plus the current state, verbatim.
type turnPayload struct {
	History []types.Turn            `json:"history"`
	State   types.ConversationState `json:"state"`
}

// BuildRequest assembles the model request for one turn. History is truncated
// to the spec's window (older turns are dropped, never summarized) so request
// size stays bounded no matter how long the conversation runs.
func BuildRequest(spec PromptSpec, model string, history []types.Turn, state types.ConversationState) openai.ChatCompletionRequest {
	window := spec.HistoryWindow
	if window <= 0 {
		window = defaultHistoryWindow
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	if history == nil {
		history = []types.Turn{}
	}
	payload, _ := json.Marshal(turnPayload{History: history, State: state})

	return openai.ChatCompletionRequest{
		Model:       model,
		Temperature: spec.Style.Temperature,
		MaxTokens:   spec.Style.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: spec.System},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	}
}
