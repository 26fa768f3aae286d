package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/extract"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/llm"
)

var (
	ErrEmptyCatalog   = errors.New("action catalog is empty")
	ErrEmptyUtterance = errors.New("utterance is empty")
	ErrNoGateway      = errors.New("no model gateway configured")
)

// Decision is the structured outcome of one resolution call.
type Decision struct {
	Action    string         `json:"action"`
	Arguments map[string]any `json:"arguments,omitempty"`
	// Unknown is set when the model returned the UnknownAction sentinel.
	Unknown bool `json:"unknown"`
	// InCatalog is false when the model named an action it was not offered.
	InCatalog bool `json:"in_catalog"`
}

// Translator turns text into the target language, reporting absence on any failure.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, bool)
}

// Resolver turns user text into a catalog action through a model gateway.
type Resolver struct {
	gateway llm.Gateway
	log     logrus.FieldLogger
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger overrides the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver wires a resolver to gateway.
func NewResolver(gateway llm.Gateway, opts ...Option) *Resolver {
	r := &Resolver{
		gateway: gateway,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve asks the model to pick one action from catalog for utterance.
// Every failure is returned as an error; the sentinel is a successful Decision.
func (r *Resolver) Resolve(ctx context.Context, catalog Catalog, utterance string) (Decision, error) {
	catalog = catalog.valid()
	if len(catalog) == 0 {
		return Decision{}, ErrEmptyCatalog
	}
	if strings.TrimSpace(utterance) == "" {
		return Decision{}, ErrEmptyUtterance
	}

	raw, err := r.generate(ctx, BuildActionPrompt(catalog, utterance))
	if err != nil {
		return Decision{}, err
	}

	obj, err := extract.Parse(raw)
	if err != nil {
		return Decision{}, &ResponseError{Raw: raw, Err: err}
	}
	name, err := obj.String(FieldFunctionName)
	if err != nil {
		return Decision{}, &ResponseError{Raw: raw, Err: err}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Decision{}, &ResponseError{Raw: raw, Err: fmt.Errorf("%w: %s is blank", extract.ErrFieldMissing, FieldFunctionName)}
	}

	decision := Decision{
		Action:    name,
		Unknown:   name == UnknownAction,
		InCatalog: catalog.Has(name),
	}
	if obj.Has(FieldArguments) {
		var args map[string]any
		if err := obj.Decode(FieldArguments, &args); err != nil {
			r.log.WithError(err).WithField("action", name).Warn("ignoring unusable action arguments")
		} else {
			decision.Arguments = args
		}
	}
	if !decision.Unknown && !decision.InCatalog {
		r.log.WithFields(logrus.Fields{
			"action":  name,
			"catalog": catalog.Names(),
		}).Warn("model selected an action outside the catalog")
	}
	return decision, nil
}

// Decide is Resolve with the outcome logged: failures by kind, successes at Info.
func (r *Resolver) Decide(ctx context.Context, catalog Catalog, utterance string) (Decision, error) {
	decision, err := r.Resolve(ctx, catalog, utterance)
	if err != nil {
		r.report(err, FieldFunctionName)
		return Decision{}, err
	}
	r.log.WithFields(logrus.Fields{
		"utterance": utterance,
		"action":    decision.Action,
	}).Info("resolved action")
	return decision, nil
}

// ResolveAction returns the chosen action identifier, or false when no usable
// decision was produced. The UnknownAction sentinel is returned with true.
func (r *Resolver) ResolveAction(ctx context.Context, catalog Catalog, utterance string) (string, bool) {
	decision, err := r.Decide(ctx, catalog, utterance)
	if err != nil {
		return "", false
	}
	return decision.Action, true
}

// TranslateText asks the model to translate text into target.
func (r *Resolver) TranslateText(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyUtterance
	}
	raw, err := r.generate(ctx, BuildTranslationPrompt(text, target))
	if err != nil {
		return "", err
	}
	translated, err := extract.Field(raw, FieldTranslation)
	if err != nil {
		return "", &ResponseError{Raw: raw, Err: err}
	}
	return strings.TrimSpace(translated), nil
}

// Translate implements Translator on top of TranslateText.
func (r *Resolver) Translate(ctx context.Context, text, target string) (string, bool) {
	translated, err := r.TranslateText(ctx, text, target)
	if err != nil {
		r.report(err, FieldTranslation)
		return "", false
	}
	r.log.WithFields(logrus.Fields{
		"text":        text,
		"translation": translated,
	}).Debug("translated utterance")
	return translated, true
}

func (r *Resolver) generate(ctx context.Context, prompt string) (string, error) {
	if r == nil || r.gateway == nil {
		return "", ErrNoGateway
	}
	raw, err := r.gateway.Generate(ctx, prompt)
	if err != nil {
		return "", &GatewayError{Err: err}
	}
	return raw, nil
}

// GatewayError wraps a failure returned by the model gateway.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return "model gateway: " + e.Err.Error() }

func (e *GatewayError) Unwrap() error { return e.Err }

// ResponseError wraps an extraction failure together with the raw model output.
type ResponseError struct {
	Raw string
	Err error
}

func (e *ResponseError) Error() string { return "model response: " + e.Err.Error() }

func (e *ResponseError) Unwrap() error { return e.Err }

func (r *Resolver) report(err error, field string) {
	entry := r.log.WithError(err).WithField("field", field)
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		entry = entry.WithField("raw", respErr.Raw)
	}
	var gwErr *GatewayError
	var malformed *extract.MalformedJSONError
	switch {
	case errors.As(err, &gwErr):
		entry.WithField("kind", llm.Kind(gwErr.Err)).Warn("model gateway failed")
	case errors.As(err, &malformed):
		entry.WithFields(logrus.Fields{
			"candidate": malformed.Candidate,
			"stage":     malformed.Stage.String(),
		}).Warn("model returned malformed json")
	case errors.Is(err, extract.ErrNoJSONFound):
		entry.Warn("model response contained no json object")
	case errors.Is(err, extract.ErrFieldMissing), errors.Is(err, extract.ErrFieldType):
		entry.Info("model response had no usable answer")
	default:
		entry.Warn("resolution skipped")
	}
}
