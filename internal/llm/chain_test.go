package llm

import (
	"context"
	"errors"
	"testing"
)

type stubGateway struct {
	enabled bool
	text    string
	err     error
	calls   int
}

func (s *stubGateway) Enabled() bool { return s.enabled }

func (s *stubGateway) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestWithFallback(t *testing.T) {
	t.Run("primary enabled", func(t *testing.T) {
		primary := &stubGateway{enabled: true, err: ErrService}
		fallback := &stubGateway{enabled: true, text: "fallback"}
		gw := WithFallback(primary, fallback)
		if _, err := gw.Generate(context.Background(), "p"); !errors.Is(err, ErrService) {
			t.Fatalf("expected primary error got %v", err)
		}
		if primary.calls != 1 || fallback.calls != 0 {
			t.Fatalf("expected one primary call got primary=%d fallback=%d", primary.calls, fallback.calls)
		}
	})

	t.Run("primary disabled", func(t *testing.T) {
		primary := &stubGateway{}
		fallback := &stubGateway{enabled: true, text: "fallback"}
		text, err := WithFallback(primary, fallback).Generate(context.Background(), "p")
		if err != nil || text != "fallback" {
			t.Fatalf("expected fallback text got %q, %v", text, err)
		}
	})

	t.Run("nothing enabled", func(t *testing.T) {
		gw := WithFallback(&stubGateway{}, &stubGateway{})
		if gw.Enabled() {
			t.Fatal("expected disabled chain")
		}
		if _, err := gw.Generate(context.Background(), "p"); !errors.Is(err, ErrDisabled) {
			t.Fatalf("expected ErrDisabled got %v", err)
		}
	})

	t.Run("nil halves", func(t *testing.T) {
		only := &stubGateway{enabled: true}
		if WithFallback(nil, only) != Gateway(only) {
			t.Fatal("expected fallback returned as-is")
		}
		if WithFallback(only, nil) != Gateway(only) {
			t.Fatal("expected primary returned as-is")
		}
	})
}
