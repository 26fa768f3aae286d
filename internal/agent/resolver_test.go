package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/extract"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/llm"
)

type fakeGateway struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGateway) Enabled() bool { return true }

func (f *fakeGateway) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

var navigation = Catalog{
	{Name: "load_next_image", Description: "Show the next image"},
	{Name: "load_previous_image", Description: "Go back to the previous image"},
}

func newTestResolver(gw llm.Gateway) (*Resolver, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewResolver(gw, WithLogger(logger)), hook
}

func TestResolveActionScenarios(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected string
		found    bool
	}{
		{"fenced previous", "```json\n{\"function_name\":\"load_previous_image\"}\n```", nil, "load_previous_image", true},
		{"prose next", "Sure, going forward. {\"function_name\": \"load_next_image\"}", nil, "load_next_image", true},
		{"sentinel", "{\"function_name\":\"unknown_action\"}", nil, UnknownAction, true},
		{"service error", "", fmt.Errorf("%w: ollama status 404: model not found", llm.ErrService), "", false},
		{"transport error", "", fmt.Errorf("%w: connection refused", llm.ErrTransport), "", false},
		{"no json", "I would show the next image.", nil, "", false},
		{"malformed", "{\"function_name\": }", nil, "", false},
		{"missing key", "{\"action\":\"load_next_image\"}", nil, "", false},
		{"blank name", "{\"function_name\":\"  \"}", nil, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{response: tc.response, err: tc.err}
			resolver, _ := newTestResolver(gw)
			action, found := resolver.ResolveAction(context.Background(), navigation, "go back")
			if found != tc.found {
				t.Fatalf("expected found=%v got %v", tc.found, found)
			}
			if action != tc.expected {
				t.Fatalf("expected %q got %q", tc.expected, action)
			}
			if len(gw.prompts) != 1 {
				t.Fatalf("expected exactly one gateway call got %d", len(gw.prompts))
			}
		})
	}
}

func TestResolveTypedErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected error
	}{
		{"service", "", llm.ErrService, llm.ErrService},
		{"transport", "", llm.ErrTransport, llm.ErrTransport},
		{"no json", "nothing here", nil, extract.ErrNoJSONFound},
		{"malformed", "{nope}", nil, extract.ErrMalformedJSON},
		{"missing", "{}", nil, extract.ErrFieldMissing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver, _ := newTestResolver(&fakeGateway{response: tc.response, err: tc.err})
			_, err := resolver.Resolve(context.Background(), navigation, "next")
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v got %v", tc.expected, err)
			}
		})
	}
}

func TestResolveRejectsEmptyInput(t *testing.T) {
	gw := &fakeGateway{response: "{\"function_name\":\"load_next_image\"}"}
	resolver, _ := newTestResolver(gw)

	if _, err := resolver.Resolve(context.Background(), Catalog{{Name: " "}}, "next"); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), navigation, "   "); !errors.Is(err, ErrEmptyUtterance) {
		t.Fatalf("expected ErrEmptyUtterance got %v", err)
	}
	if len(gw.prompts) != 0 {
		t.Fatalf("expected no gateway calls got %d", len(gw.prompts))
	}

	if _, err := NewResolver(nil).Resolve(context.Background(), navigation, "next"); !errors.Is(err, ErrNoGateway) {
		t.Fatalf("expected ErrNoGateway got %v", err)
	}
}

func TestResolveDecisionDetails(t *testing.T) {
	catalog := Catalog{
		{Name: "jump_to_image", Description: "Jump to an image in history", Parameters: map[string]string{"index": "zero-based history position"}},
	}
	gw := &fakeGateway{response: "```json\n{\"function_name\":\"jump_to_image\",\"arguments\":{\"index\":2}}\n```"}
	resolver, _ := newTestResolver(gw)

	decision, err := resolver.Resolve(context.Background(), catalog, "show the third picture")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Action != "jump_to_image" || !decision.InCatalog || decision.Unknown {
		t.Fatalf("unexpected decision %+v", decision)
	}
	if decision.Arguments["index"] != float64(2) {
		t.Fatalf("expected index 2 got %v", decision.Arguments["index"])
	}
}

func TestResolveOutOfCatalogIsReturned(t *testing.T) {
	resolver, hook := newTestResolver(&fakeGateway{response: "{\"function_name\":\"delete_everything\"}"})
	action, found := resolver.ResolveAction(context.Background(), navigation, "delete it all")
	if !found || action != "delete_everything" {
		t.Fatalf("expected raw action back got %q, %v", action, found)
	}
	if !hasEntry(hook, logrus.WarnLevel, "outside the catalog") {
		t.Fatal("expected a warning about the out-of-catalog action")
	}
}

func TestResolveLogging(t *testing.T) {
	t.Run("malformed logs candidate", func(t *testing.T) {
		resolver, hook := newTestResolver(&fakeGateway{response: "x {\"function_name\": } y"})
		resolver.ResolveAction(context.Background(), navigation, "next")
		entry := hook.LastEntry()
		if entry == nil || entry.Level != logrus.WarnLevel {
			t.Fatalf("expected warn entry got %+v", entry)
		}
		if entry.Data["candidate"] != "{\"function_name\": }" {
			t.Fatalf("expected candidate field got %v", entry.Data["candidate"])
		}
	})

	t.Run("no json logs raw text", func(t *testing.T) {
		resolver, hook := newTestResolver(&fakeGateway{response: "just words"})
		resolver.ResolveAction(context.Background(), navigation, "next")
		entry := hook.LastEntry()
		if entry == nil || entry.Data["raw"] != "just words" {
			t.Fatalf("expected raw field got %+v", entry)
		}
	})

	t.Run("missing field is not an error", func(t *testing.T) {
		resolver, hook := newTestResolver(&fakeGateway{response: "{\"other\":1}"})
		resolver.ResolveAction(context.Background(), navigation, "next")
		for _, entry := range hook.AllEntries() {
			if entry.Level <= logrus.WarnLevel {
				t.Fatalf("unexpected %s entry: %s", entry.Level, entry.Message)
			}
		}
	})

	t.Run("gateway failure kind", func(t *testing.T) {
		resolver, hook := newTestResolver(&fakeGateway{err: fmt.Errorf("%w: status 404", llm.ErrService)})
		resolver.ResolveAction(context.Background(), navigation, "next")
		entry := hook.LastEntry()
		if entry == nil || entry.Data["kind"] != "service" {
			t.Fatalf("expected service kind got %+v", entry)
		}
	})
}

func TestTranslate(t *testing.T) {
	gw := &fakeGateway{response: "```json\n{\"translation\": \" go back \"}\n```"}
	resolver, _ := newTestResolver(gw)
	text, ok := resolver.Translate(context.Background(), "volte", "")
	if !ok || text != "go back" {
		t.Fatalf("expected translation got %q, %v", text, ok)
	}
	if !strings.Contains(gw.prompts[0], "into English") {
		t.Fatalf("expected default target language in prompt: %s", gw.prompts[0])
	}

	failing, _ := newTestResolver(&fakeGateway{err: llm.ErrTransport})
	if text, ok := failing.Translate(context.Background(), "volte", "English"); ok || text != "" {
		t.Fatalf("expected absent translation got %q, %v", text, ok)
	}

	missing, _ := newTestResolver(&fakeGateway{response: "{\"text\":\"go back\"}"})
	if _, err := missing.TranslateText(context.Background(), "volte", "English"); !errors.Is(err, extract.ErrFieldMissing) {
		t.Fatalf("expected ErrFieldMissing got %v", err)
	}
}

func hasEntry(hook *test.Hook, level logrus.Level, fragment string) bool {
	for _, entry := range hook.AllEntries() {
		if entry.Level == level && strings.Contains(entry.Message, fragment) {
			return true
		}
	}
	return false
}

func TestDecide(t *testing.T) {
	resolver, hook := newTestResolver(&fakeGateway{response: "{\"function_name\":\"load_next_image\",\"arguments\":{\"count\":2}}"})
	decision, err := resolver.Decide(context.Background(), navigation, "skip two")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Action != "load_next_image" || decision.Arguments["count"] != float64(2) {
		t.Fatalf("expected next with count 2 got %+v", decision)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.InfoLevel {
		t.Fatalf("expected info entry got %v", entry)
	}

	resolver, hook = newTestResolver(&fakeGateway{err: fmt.Errorf("%w: connection refused", llm.ErrTransport)})
	_, err = resolver.Decide(context.Background(), navigation, "next")
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected gateway error got %v", err)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level > logrus.WarnLevel {
		t.Fatalf("expected warning or worse got %v", entry)
	}
}
