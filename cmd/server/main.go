package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/api"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/imagesrc"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/llm"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("load .env")
	}
	configureLogging(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	ollamaCfg := llm.OllamaConfig{
		BaseURL:   os.Getenv("OLLAMA_BASE_URL"),
		Model:     os.Getenv("OLLAMA_MODEL"),
		KeepAlive: os.Getenv("OLLAMA_KEEP_ALIVE"),
	}
	if timeout := os.Getenv("OLLAMA_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			ollamaCfg.Timeout = d
		}
	}

	openAICfg := llm.OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("OPENAI_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
	if temp := os.Getenv("OPENAI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			openAICfg.Temperature = v
		}
	}
	if maxTokens := os.Getenv("OPENAI_MAX_TOKENS"); maxTokens != "" {
		if v, err := strconv.Atoi(maxTokens); err == nil {
			openAICfg.MaxTokens = v
		}
	}

	imageCfg := imagesrc.Config{URL: os.Getenv("IMAGE_SOURCE_URL")}
	if timeout := os.Getenv("IMAGE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			imageCfg.Timeout = d
		}
	}

	allowedOrigins := []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	}
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		allowedOrigins = splitList(origins)
	}

	cfg := api.Config{
		DBPath:         filepath.Join(dataDir, "prompts.db"),
		AllowedOrigins: allowedOrigins,
		SilentDB:       true,
		Backend:        os.Getenv("LLM_BACKEND"),
		Ollama:         ollamaCfg,
		OpenAI:         openAICfg,
		Image:          imageCfg,
		Translate:      strings.EqualFold(strings.TrimSpace(os.Getenv("TRANSLATE_PROMPTS")), "true"),
		TranslateTo:    os.Getenv("TRANSLATE_TARGET"),
	}

	if override := strings.TrimSpace(os.Getenv("PROMPT_DB_PATH")); override != "" {
		cfg.DBPath = override
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer func() {
		if cerr := server.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "2000"
	}

	logrus.Infof("starting prompt agent backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

func configureLogging(level, format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if strings.TrimSpace(level) == "" {
		return
	}
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logrus.WithError(err).Warn("ignoring LOG_LEVEL")
		return
	}
	logrus.SetLevel(parsed)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
