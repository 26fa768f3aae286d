package llm

import (
	"context"
	"errors"
)

// Gateway sends a single prompt to a language model and returns the raw completion.
type Gateway interface {
	Enabled() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrDisabled is returned when a gateway is missing the configuration it needs.
	ErrDisabled = errors.New("llm gateway disabled")
	// ErrService marks a request the inference service received and rejected.
	ErrService = errors.New("inference service error")
	// ErrTransport marks an unreachable service or any other unexpected failure.
	ErrTransport = errors.New("inference transport error")
)

// Kind reports which side of the gateway boundary produced err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrService):
		return "service"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	default:
		return "transport"
	}
}
