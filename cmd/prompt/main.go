package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/agent"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/browser"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/llm"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("load .env")
	}

	var (
		actions   = flag.String("actions", strings.Join(browser.DefaultCatalog().Names(), ","), "Comma-separated action names offered to the model")
		translate = flag.Bool("translate", false, "Translate the utterance before resolving it")
		target    = flag.String("target", "", "Translation target language (env TRANSLATE_TARGET, default English)")
		backend   = flag.String("backend", "", "Model backend: ollama or openai (env LLM_BACKEND)")
		model     = flag.String("model", "", "Model name (env OLLAMA_MODEL or OPENAI_MODEL)")
		baseURL   = flag.String("url", "", "Inference service base URL (env OLLAMA_BASE_URL or OPENAI_BASE_URL)")
		timeout   = flag.Duration("timeout", 0, "Overall request timeout, 0 for none")
		verbose   = flag.Bool("v", false, "Log resolution diagnostics")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] \"utterance\"\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	utterance := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if utterance == "" {
		flag.Usage()
		os.Exit(2)
	}

	logrus.SetOutput(os.Stderr)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	loadEnvDefaults(backend, target)
	gateway, err := buildGateway(*backend, *model, *baseURL)
	if err != nil {
		logrus.Fatalf("configure model gateway: %v", err)
	}

	catalog := agent.CatalogFromNames(strings.Split(*actions, ",")...)
	os.Exit(run(gateway, catalog, utterance, *translate, *target, *timeout))
}

func run(gateway llm.Gateway, catalog agent.Catalog, utterance string, translate bool, target string, timeout time.Duration) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resolver := agent.NewResolver(gateway)
	text := utterance
	if translate {
		if translated, ok := resolver.Translate(ctx, utterance, target); ok && translated != "" {
			fmt.Fprintf(os.Stderr, "translated: %s\n", translated)
			text = translated
		}
	}

	start := time.Now()
	action, found := resolver.ResolveAction(ctx, catalog, text)
	logrus.WithField("duration", time.Since(start)).Debug("resolution finished")
	if !found {
		fmt.Fprintln(os.Stderr, "no action recognised")
		return 1
	}
	fmt.Println(action)
	return 0
}

func loadEnvDefaults(backend, target *string) {
	if strings.TrimSpace(*backend) == "" {
		*backend = strings.TrimSpace(os.Getenv("LLM_BACKEND"))
	}
	if strings.TrimSpace(*target) == "" {
		if v := strings.TrimSpace(os.Getenv("TRANSLATE_TARGET")); v != "" {
			*target = v
		} else {
			*target = agent.DefaultTargetLanguage
		}
	}
}

func buildGateway(backend, model, baseURL string) (llm.Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "ollama":
		return llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL:   firstNonEmpty(baseURL, os.Getenv("OLLAMA_BASE_URL")),
			Model:     firstNonEmpty(model, os.Getenv("OLLAMA_MODEL")),
			KeepAlive: os.Getenv("OLLAMA_KEEP_ALIVE"),
		}), nil
	case "openai":
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   firstNonEmpty(model, os.Getenv("OPENAI_MODEL")),
			BaseURL: firstNonEmpty(baseURL, os.Getenv("OPENAI_BASE_URL")),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
