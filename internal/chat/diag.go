package chat

import (
	"context"
	"errors"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"listplicity-intake-backend/internal/types"
)

const (
	diagTimeout   = 10 * time.Second
	diagMaxTokens = 8
	sampleLimit   = 180
)

// Diagnose sends a minimal canned prompt to the model provider and reports
// reachability. Failures come back as data in the report, never as an error.
func (o *Orchestrator) Diagnose(ctx context.Context) types.DiagReport {
	if o.client == nil {
		return types.DiagReport{}
	}

	ctx, cancel := context.WithTimeout(ctx, diagTimeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: diagMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: `Return "ok" as plain text.`},
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return types.DiagReport{Status: strconv.Itoa(apiErr.HTTPStatusCode), Sample: truncate(err.Error())}
		}
		return types.DiagReport{Status: "exception", Sample: truncate(err.Error())}
	}
	sample := ""
	if len(resp.Choices) > 0 {
		sample = resp.Choices[0].Message.Content
	}
	return types.DiagReport{Status: "ok", Sample: truncate(sample)}
}

func truncate(s string) string {
	if len(s) > sampleLimit {
		return s[:sampleLimit]
	}
	return s
}
