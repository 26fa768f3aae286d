package llm

import "context"

type gatewayChain struct {
	primary  Gateway
	fallback Gateway
}

// WithFallback returns a gateway that sends each prompt to the primary when it is
// enabled and to the fallback otherwise. A prompt is never sent to both.
func WithFallback(primary, fallback Gateway) Gateway {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &gatewayChain{primary: primary, fallback: fallback}
}

func (c *gatewayChain) Enabled() bool {
	if c == nil {
		return false
	}
	return c.active() != nil
}

func (c *gatewayChain) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}
	gw := c.active()
	if gw == nil {
		return "", ErrDisabled
	}
	return gw.Generate(ctx, prompt)
}

func (c *gatewayChain) active() Gateway {
	if c.primary != nil && c.primary.Enabled() {
		return c.primary
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback
	}
	return nil
}
