package chat

import (
	"listplicity-intake-backend/internal/schema"
	"listplicity-intake-backend/internal/types"
)

// MergeResult is the outcome of applying one turn's patch.
type MergeResult struct {
	// Next is a fresh state snapshot; the input state is never mutated.
	Next types.ConversationState
	// Applied is the subset of the patch that survived validation, suitable
	// for returning to a caller that merges patches itself.
	Applied types.StatePatch
	// SubmissionReady reports completeness of Next. Informational: actual
	// submission is gated on the turn's action field.
	SubmissionReady bool
}

// Merge applies a state patch onto the conversation state. Precedence rules:
// path and tag are last-write-wins; answers merge key-by-key, and any key
// that is unknown to the field schema or fails its format rule is dropped
// while the rest of the patch still applies.
func Merge(state types.ConversationState, patch types.StatePatch) MergeResult {
	next := types.ConversationState{
		Path: state.Path,
		Tag:  state.Tag,
	}
	if len(state.Answers) > 0 {
		next.Answers = make(map[string]string, len(state.Answers)+len(patch.Answers))
		for k, v := range state.Answers {
			next.Answers[k] = v
		}
	}

	var applied types.StatePatch
	if patch.Path != "" {
		next.Path = patch.Path
		applied.Path = patch.Path
	}
	if patch.Tag != "" {
		next.Tag = patch.Tag
		applied.Tag = patch.Tag
	}
	for k, v := range patch.Answers {
		normalized, ok := schema.Validate(k, v)
		if !ok {
			continue
		}
		if next.Answers == nil {
			next.Answers = make(map[string]string, len(patch.Answers))
		}
		next.Answers[k] = normalized
		if applied.Answers == nil {
			applied.Answers = make(map[string]string, len(patch.Answers))
		}
		applied.Answers[k] = normalized
	}

	return MergeResult{
		Next:            next,
		Applied:         applied,
		SubmissionReady: schema.IsComplete(next),
	}
}
