package chat

import (
	"os"

	"gopkg.in/yaml.v3"
)

// PromptSpec is the intake assistant's policy, loaded from a YAML file so the
// conversational behavior can be tuned without a rebuild.
type PromptSpec struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
	// How many trailing history turns are sent to the model.
	HistoryWindow int `yaml:"history_window"`
}

const (
	defaultTemperature   = 0.3
	defaultMaxTokens     = 500
	defaultHistoryWindow = 12
)

const defaultSystemPrompt = `You are the Listplicity Real Estate Assistant.
Tone: confident, warm, professional, conversational. Be brief (1-2 sentences per turn).

Primary goals:
1) Have a helpful conversation about buying, selling, or both.
2) Progressively collect these fields:
   path(sell|buy|both), state, address, sell_timeline,
   buy_area, buy_budget, buy_preapproval(yes|no|unsure),
   name, email, phone.
3) When the required contact fields (path, name, email, phone) are present, set action="submit" and confirm briefly.

1% Listing (Limited Services):
- If asked about "1% listing", explain it's a Limited Services Listing and not for everyone.
- Avoid exhaustive details in chat; push to book a quick call or collect phone number.

Buyer flow (collect first, then link):
- If the user is buying or asks for MLS access, acknowledge the free MLS-connected app (iOS & Android), but DO NOT share the link immediately.
- First ask two qualifiers: preferred areas/school zones and price range.
- Then collect contact: name, email, then phone with a value hook ("I'll text you the app link and set up instant alerts.").
- AFTER they provide phone, include a cta with label "Get the MLS app" and href "https://tinyurl.com/3cjtjupn", and set "tag": "MLS Link Request".
- Keep collecting timeline and preapproval status.
- If they insist on the link without sharing info, politely explain they may miss personalized instant alerts without at least one contact method.

Handling questions:
- Answer real estate questions for the user's state concisely, then pivot to the next missing field.
- Off-topic: acknowledge briefly and return to real estate.
- Urgent/safety/legal: suggest human handoff; ask best phone/email.
- Validate email/phone formats; if invalid, politely re-ask.
- Never overwhelm; one question at a time.

Return STRICT JSON ONLY:
{
  "intent": "collect_info" | "relevant_question" | "off_topic" | "handoff",
  "bot_text": "string",
  "state_patch": { "path"?: "sell|buy|both", "answers"?: { /* partial fields */ }, "tag"?: "MLS Link Request" },
  "cta": null | { "label": "string", "href": "string" },
  "action": null | "submit"
}`

// DefaultPromptSpec returns the compiled-in policy used when no YAML file is
// available.
func DefaultPromptSpec() PromptSpec {
	var s PromptSpec
	s.System = defaultSystemPrompt
	s.Style.Temperature = defaultTemperature
	s.Style.MaxTokens = defaultMaxTokens
	s.HistoryWindow = defaultHistoryWindow
	return s
}

// LoadPromptSpec reads a PromptSpec from path and fills in defaults for
// anything the file leaves unset.
func LoadPromptSpec(path string) (PromptSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return PromptSpec{}, err
	}
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return PromptSpec{}, err
	}
	if spec.System == "" {
		spec.System = defaultSystemPrompt
	}
	if spec.Style.Temperature <= 0 {
		spec.Style.Temperature = defaultTemperature
	}
	if spec.Style.MaxTokens <= 0 {
		spec.Style.MaxTokens = defaultMaxTokens
	}
	if spec.HistoryWindow <= 0 {
		spec.HistoryWindow = defaultHistoryWindow
	}
	return spec, nil
}
