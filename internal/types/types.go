package types

// Turn is one message in the caller-held conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the caller-owned record of everything collected so
// far. The server never stores it; each chat call receives a snapshot and
// the caller applies the returned patch.
type ConversationState struct {
	Path    string            `json:"path,omitempty"`
	Answers map[string]string `json:"answers,omitempty"`
	Tag     string            `json:"tag,omitempty"`
}

// StatePatch is a partial update produced by one assistant turn. Each field
// is independently optional.
type StatePatch struct {
	Path    string            `json:"path,omitempty"`
	Answers map[string]string `json:"answers,omitempty"`
	Tag     string            `json:"tag,omitempty"`
}

// CTA is an optional call-to-action surfaced to the end user.
type CTA struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

const (
	IntentCollectInfo      = "collect_info"
	IntentRelevantQuestion = "relevant_question"
	IntentOffTopic         = "off_topic"
	IntentHandoff          = "handoff"
	IntentWelcome          = "welcome"

	ActionSubmit = "submit"
)

// StructuredResponse is the validated output of one assistant turn. Every
// instance handed to callers is schema-conformant even when the upstream
// model output was not.
type StructuredResponse struct {
	Intent     string     `json:"intent"`
	BotText    string     `json:"bot_text"`
	StatePatch StatePatch `json:"state_patch"`
	CTA        *CTA       `json:"cta"`
	Action     *string    `json:"action"`
}

// WantsSubmit reports whether the turn asserts the lead is ready to forward.
func (r StructuredResponse) WantsSubmit() bool {
	return r.Action != nil && *r.Action == ActionSubmit
}

type ChatRequest struct {
	History []Turn            `json:"history"`
	State   ConversationState `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	LLM      bool   `json:"llm"`
}

type LeadResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// DiagReport is the liveness probe result. Failures are carried as data,
// never as faults.
type DiagReport struct {
	Status string `json:"status"`
	Sample string `json:"sample"`
}

type DiagResponse struct {
	OK       bool       `json:"ok"`
	Provider string     `json:"provider"`
	HasKey   bool       `json:"hasKey"`
	Model    string     `json:"model"`
	Diag     DiagReport `json:"diag"`
}
