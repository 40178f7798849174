package chat

import (
	"encoding/json"
	"strings"

	"listplicity-intake-backend/internal/types"
)

// reaskText is the degraded bot_text used when the model's output was JSON
// but not something we can render as-is.
const reaskText = "Sorry, hiccup. Could you rephrase that?"

var validIntents = map[string]bool{
	types.IntentCollectInfo:      true,
	types.IntentRelevantQuestion: true,
	types.IntentOffTopic:         true,
	types.IntentHandoff:          true,
}

// Normalize turns raw model output into a schema-valid StructuredResponse.
// It never fails: malformed output degrades to a collect_info turn with an
// empty patch so downstream code only ever sees the strict shape.
//
// Fallback rules:
//   - not valid JSON: the raw text becomes bot_text (models often answer in
//     plain prose when they ignore the JSON contract, and that prose is still
//     worth showing the user)
//   - valid JSON but not an object: a generic re-ask message
//   - valid object: absent or invalid fields get safe defaults
func Normalize(raw string) types.StructuredResponse {
	if !json.Valid([]byte(raw)) {
		return degradedTurn(raw)
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return degradedTurn(raw)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return degradedTurn(reaskText)
	}

	out := types.StructuredResponse{StatePatch: types.StatePatch{}}

	if intent, ok := obj["intent"].(string); ok && validIntents[intent] {
		out.Intent = intent
	} else {
		out.Intent = types.IntentCollectInfo
	}

	if text, ok := obj["bot_text"].(string); ok && strings.TrimSpace(text) != "" {
		out.BotText = text
	} else {
		out.BotText = reaskText
	}

	if patch, ok := obj["state_patch"].(map[string]any); ok {
		out.StatePatch = decodePatch(patch)
	}

	if cta, ok := obj["cta"].(map[string]any); ok {
		label, _ := cta["label"].(string)
		href, _ := cta["href"].(string)
		if label != "" || href != "" {
			out.CTA = &types.CTA{Label: label, Href: href}
		}
	}

	if action, ok := obj["action"].(string); ok && action == types.ActionSubmit {
		a := types.ActionSubmit
		out.Action = &a
	}

	return out
}

func decodePatch(m map[string]any) types.StatePatch {
	var patch types.StatePatch
	if path, ok := m["path"].(string); ok {
		patch.Path = path
	}
	if tag, ok := m["tag"].(string); ok {
		patch.Tag = tag
	}
	if answers, ok := m["answers"].(map[string]any); ok {
		for k, v := range answers {
			if s, ok := stringValue(v); ok {
				if patch.Answers == nil {
					patch.Answers = make(map[string]string, len(answers))
				}
				patch.Answers[k] = s
			}
		}
	}
	return patch
}

// stringValue coerces scalar answer values to strings; objects and arrays
// are dropped rather than serialized.
func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

func degradedTurn(text string) types.StructuredResponse {
	return types.StructuredResponse{
		Intent:     types.IntentCollectInfo,
		BotText:    text,
		StatePatch: types.StatePatch{},
		CTA:        nil,
		Action:     nil,
	}
}
