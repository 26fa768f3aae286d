package api

import (
	"strings"
	"time"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/agent"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/browser"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/store"
)

// ResolveRequest asks for one action from an optional custom catalog.
type ResolveRequest struct {
	Utterance string         `json:"utterance"`
	Actions   []agent.Action `json:"actions"`
}

// ResolveResponse reports the chosen action. Found is false when the model
// produced no usable decision.
type ResolveResponse struct {
	Action    string         `json:"action"`
	Found     bool           `json:"found"`
	Unknown   bool           `json:"unknown"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// TranslateRequest asks for text to be translated.
type TranslateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

// TranslateResponse carries the translated text when one was produced.
type TranslateResponse struct {
	Translation string `json:"translation"`
	Found       bool   `json:"found"`
}

// PromptRequest is a free-text navigation command from the prompt field.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// PromptResponse describes what the pipeline did with a prompt.
type PromptResponse struct {
	RequestID  string         `json:"request_id"`
	Prompt     string         `json:"prompt"`
	Translated string         `json:"translated"`
	Action     string         `json:"action"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Outcome    string         `json:"outcome"`
	LatencyMs  int64          `json:"latency_ms"`
	State      browser.State  `json:"state"`
	Message    string         `json:"message,omitempty"`
}

// PromptDTO is the API representation of a stored prompt.
type PromptDTO struct {
	ID         uint           `json:"id"`
	RequestID  string         `json:"request_id"`
	Utterance  string         `json:"utterance"`
	Translated string         `json:"translated,omitempty"`
	Action     string         `json:"action"`
	Outcome    string         `json:"outcome"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Model      string         `json:"model"`
	LatencyMs  int64          `json:"latency_ms"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PromptsResponse is the paginated prompt history.
type PromptsResponse struct {
	Items []PromptDTO `json:"items"`
	Total int64       `json:"total"`
}

// FromModel converts a store.PromptRecord into the DTO representation.
func FromModel(p store.PromptRecord) PromptDTO {
	return PromptDTO{
		ID:         p.ID,
		RequestID:  p.RequestID,
		Utterance:  p.Utterance,
		Translated: strings.TrimSpace(p.Translated),
		Action:     p.Action,
		Outcome:    p.Outcome,
		Arguments:  p.Arguments(),
		Model:      p.Model,
		LatencyMs:  p.LatencyMs,
		CreatedAt:  p.CreatedAt,
	}
}
