package main

import (
	"context"
	"testing"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/agent"
)

type cannedGateway string

func (g cannedGateway) Enabled() bool { return true }

func (g cannedGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return string(g), nil
}

func TestRunExitCodes(t *testing.T) {
	catalog := agent.CatalogFromNames("load_next_image", "load_previous_image")
	tests := []struct {
		name  string
		reply string
		code  int
	}{
		{"resolved", "{\"function_name\":\"load_next_image\"}", 0},
		{"sentinel", "{\"function_name\":\"unknown_action\"}", 0},
		{"absent", "no json here", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if code := run(cannedGateway(tc.reply), catalog, "next", false, "", 0); code != tc.code {
				t.Fatalf("expected exit %d got %d", tc.code, code)
			}
		})
	}
}

func TestBuildGatewayBackends(t *testing.T) {
	gw, err := buildGateway("", "llama3", "http://ollama.test")
	if err != nil || gw == nil {
		t.Fatalf("expected ollama gateway got %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := buildGateway("openai", "", ""); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := buildGateway("bard", "", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
