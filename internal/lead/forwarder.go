// Package lead hands finished leads to the CRM webhook. At-most-once,
// best-effort: a failed attempt is terminal and the caller decides whether
// to retry.
package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"listplicity-intake-backend/internal/types"
)

const sourceTag = "listplicity-chatbot"

var (
	// ErrNotConfigured means no webhook destination is set.
	ErrNotConfigured = errors.New("lead webhook not configured")
	// ErrForward means the webhook rejected the lead or the call failed.
	ErrForward = errors.New("lead forward failed")
)

type Forwarder struct {
	webhookURL string
	httpClient *http.Client
}

func NewForwarder(webhookURL string) *Forwarder {
	return &Forwarder{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// RecordFromState builds the lead payload from a finished conversation:
// the collected answers plus path and, when set, the milestone tag.
func RecordFromState(state types.ConversationState) map[string]any {
	fields := make(map[string]any, len(state.Answers)+2)
	for k, v := range state.Answers {
		fields[k] = v
	}
	fields["path"] = state.Path
	if state.Tag != "" {
		fields["tag"] = state.Tag
	}
	return fields
}

// Forward stamps the payload with the source tag, a fresh lead_id, and a
// submission timestamp, then POSTs it to the webhook. The stamped keys
// overwrite caller-supplied ones; the source tag is authoritative.
func (f *Forwarder) Forward(ctx context.Context, fields map[string]any) error {
	if f.webhookURL == "" {
		return ErrNotConfigured
	}

	payload := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		payload[k] = v
	}
	payload["source"] = sourceTag
	payload["lead_id"] = uuid.NewString()
	payload["ts"] = time.Now().UTC().Format(time.RFC3339)

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForward, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForward, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForward, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bb, _ := io.ReadAll(resp.Body)
		log.Println("lead webhook error:", resp.StatusCode, strings.TrimSpace(string(bb)))
		return fmt.Errorf("%w: status %d", ErrForward, resp.StatusCode)
	}
	return nil
}
