package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/agent"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/browser"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/extract"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/llm"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/metrics"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/store"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/util"
)

func (s *Server) handlePrompt(c *gin.Context) {
	var req PromptRequest
	if err := bindJSON(c, &req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("prompt is required"))
		return
	}
	c.JSON(http.StatusOK, s.runPrompt(c.Request.Context(), req.Prompt))
}

// runPrompt takes one free-text command through translation, resolution and
// dispatch. It never fails: every outcome is recorded and reported.
func (s *Server) runPrompt(ctx context.Context, prompt string) PromptResponse {
	requestID := uuid.NewString()
	timer := util.StartTimer()

	text := prompt
	translated := ""
	if s.translate {
		if result, ok := s.translator.Translate(ctx, prompt, s.translateTo); ok && result != "" {
			text = result
			translated = result
		} else {
			logrus.WithField("request_id", requestID).Info("translation unavailable; resolving original prompt")
		}
		timer.Mark("translate")
	}

	decision, err := s.resolver.Decide(ctx, browser.DefaultCatalog(), text)
	timer.Mark("resolve")
	action := decision.Action

	var (
		outcome string
		message string
		state   browser.State
	)
	switch {
	case err != nil:
		metrics.RecordResolveFailure(failureKind(err))
		outcome = store.OutcomeAbsent
		message = "no action recognised"
		state = s.navigator.State()
	case decision.Unknown:
		outcome = store.OutcomeUnknown
		message = "request does not match any available action"
		state = s.navigator.State()
	default:
		var (
			handled     bool
			dispatchErr error
		)
		state, handled, dispatchErr = s.navigator.Dispatch(ctx, action)
		timer.Mark("dispatch")
		if handled {
			metrics.RecordNavigation(action, dispatchErr == nil)
		}
		switch {
		case dispatchErr != nil:
			outcome = store.OutcomeFailed
			message = dispatchErr.Error()
		case !handled:
			outcome = store.OutcomeUnhandled
			message = "action has no handler"
		default:
			outcome = store.OutcomeDispatched
		}
	}

	latency := timer.ElapsedMs()
	metrics.RecordPrompt(outcome, time.Duration(latency)*time.Millisecond)
	record := &store.PromptRecord{
		RequestID:  requestID,
		Utterance:  prompt,
		Translated: translated,
		Action:     action,
		Outcome:    outcome,
		Model:      s.model,
		LatencyMs:  latency,
	}
	record.SetArguments(decision.Arguments)
	if err := s.db.SavePrompt(record); err != nil {
		logrus.WithError(err).WithField("request_id", requestID).Warn("persist prompt")
	}

	s.notifier.Broadcast(NavigationEvent{
		Type:      "prompt",
		RequestID: requestID,
		Action:    action,
		Outcome:   outcome,
		State:     state,
		Message:   message,
	})

	logrus.WithFields(logrus.Fields(timer.Fields())).WithFields(logrus.Fields{
		"request_id": requestID,
		"action":     action,
		"outcome":    outcome,
	}).Info("prompt processed")

	return PromptResponse{
		RequestID:  requestID,
		Prompt:     prompt,
		Translated: translated,
		Action:     action,
		Arguments:  decision.Arguments,
		Outcome:    outcome,
		LatencyMs:  latency,
		State:      state,
		Message:    message,
	}
}

// failureKind labels a resolution error for logs.
func failureKind(err error) string {
	var gwErr *agent.GatewayError
	switch {
	case errors.As(err, &gwErr):
		return "gateway_" + llm.Kind(gwErr.Err)
	case errors.Is(err, extract.ErrNoJSONFound):
		return "no_json"
	case errors.Is(err, extract.ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, extract.ErrFieldMissing):
		return "field_missing"
	case errors.Is(err, extract.ErrFieldType):
		return "field_type"
	default:
		return "other"
	}
}
