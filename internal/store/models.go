package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Prompt outcomes recorded for every submitted utterance.
const (
	OutcomeDispatched = "dispatched"
	OutcomeUnknown    = "unknown_action"
	OutcomeUnhandled  = "unhandled"
	OutcomeAbsent     = "absent"
	OutcomeFailed     = "dispatch_failed"
)

// PromptRecord is one free-text prompt and what the pipeline made of it.
type PromptRecord struct {
	ID            uint   `gorm:"primaryKey"`
	RequestID     string `gorm:"size:64;uniqueIndex"`
	Utterance     string `gorm:"type:text"`
	Translated    string `gorm:"type:text"`
	Action        string `gorm:"size:128;index"`
	Outcome       string `gorm:"size:32;index"`
	ArgumentsJSON string `gorm:"type:text"`
	Model         string `gorm:"size:128"`
	LatencyMs     int64
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

// SetArguments stores the model-supplied arguments as JSON.
func (p *PromptRecord) SetArguments(args map[string]any) {
	if len(args) == 0 {
		p.ArgumentsJSON = ""
		return
	}
	payload, _ := json.Marshal(args)
	p.ArgumentsJSON = string(payload)
}

// Arguments returns the decoded arguments, or nil when none were stored.
func (p *PromptRecord) Arguments() map[string]any {
	if strings.TrimSpace(p.ArgumentsJSON) == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(p.ArgumentsJSON), &out); err != nil {
		return nil
	}
	return out
}
