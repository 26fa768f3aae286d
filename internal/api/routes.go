package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/agent"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/browser"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/imagesrc"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/llm"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/metrics"
	"github.com/jonastieppo/SimpleAIAgentRequest/internal/store"
)

// Supported values for Config.Backend.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Config defines server dependencies.
type Config struct {
	DBPath         string
	AllowedOrigins []string
	SilentDB       bool
	Backend        string
	Ollama         llm.OllamaConfig
	OpenAI         llm.OpenAIConfig
	Image          imagesrc.Config
	Translate      bool
	TranslateTo    string

	// Gateway and ImageSource replace the configured backends when set.
	Gateway     llm.Gateway
	ImageSource browser.Source
}

// Server wires HTTP handlers with the resolver, the navigator and persistence.
type Server struct {
	db             *store.Database
	gateway        llm.Gateway
	resolver       *agent.Resolver
	translator     agent.Translator
	navigator      *browser.Navigator
	notifier       *NavigationNotifier
	allowedOrigins []string
	backend        string
	model          string
	translate      bool
	translateTo    string
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}

	gateway, backend, model, err := buildGateway(cfg)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	source := cfg.ImageSource
	if source == nil {
		source = imagesrc.NewClient(cfg.Image)
	}

	target := strings.TrimSpace(cfg.TranslateTo)
	if target == "" {
		target = agent.DefaultTargetLanguage
	}

	resolver := agent.NewResolver(gateway)
	server := &Server{
		db:             db,
		gateway:        gateway,
		resolver:       resolver,
		translator:     resolver,
		navigator:      browser.NewNavigator(source),
		notifier:       NewNavigationNotifier(),
		allowedOrigins: cfg.AllowedOrigins,
		backend:        backend,
		model:          model,
		translate:      cfg.Translate,
		translateTo:    target,
	}

	logrus.WithFields(logrus.Fields{
		"backend":   backend,
		"model":     model,
		"translate": cfg.Translate,
		"target":    target,
	}).Info("prompt pipeline configured")

	return server, nil
}

func buildGateway(cfg Config) (llm.Gateway, string, string, error) {
	if cfg.Gateway != nil {
		return cfg.Gateway, "custom", "", nil
	}
	ollama := llm.NewOllamaClient(cfg.Ollama)

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendOllama:
		return ollama, BackendOllama, ollama.Model(), nil
	case BackendOpenAI:
		client, err := llm.NewOpenAIClient(cfg.OpenAI)
		if errors.Is(err, llm.ErrDisabled) {
			logrus.Warn("openai backend selected without an api key; using ollama")
			return ollama, BackendOllama, ollama.Model(), nil
		}
		if err != nil {
			return nil, "", "", fmt.Errorf("openai client: %w", err)
		}
		return llm.WithFallback(client, ollama), BackendOpenAI, client.Model(), nil
	default:
		return nil, "", "", fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
}

// Close releases the database handle.
func (s *Server) Close() error {
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/actions", s.handleActions)
		api.POST("/resolve", s.handleResolve)
		api.POST("/translate", s.handleTranslate)
		api.POST("/prompt", s.handlePrompt)
		api.GET("/prompts", s.handleListPrompts)
		api.DELETE("/prompts", s.handleClearPrompts)
		api.GET("/images/current", s.handleCurrentImage)
		api.POST("/images/next", s.handleNavigate(browser.ActionNext))
		api.POST("/images/previous", s.handleNavigate(browser.ActionPrevious))
		api.GET("/stream", s.handleStream)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	prompts, err := s.db.CountPrompts()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	outcomes, err := s.db.CountByOutcome()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backend":          s.backend,
		"model":            s.model,
		"gateway_enabled":  s.gateway.Enabled(),
		"translate":        s.translate,
		"translate_target": s.translateTo,
		"actions":          browser.DefaultCatalog().Names(),
		"prompts":          prompts,
		"outcomes":         outcomes,
	})
}

func (s *Server) handleActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": browser.DefaultCatalog()})
}

func (s *Server) handleResolve(c *gin.Context) {
	var req ResolveRequest
	if err := bindJSON(c, &req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	catalog := agent.Catalog(req.Actions)
	if len(catalog) == 0 {
		catalog = browser.DefaultCatalog()
	}

	decision, err := s.resolver.Resolve(c.Request.Context(), catalog, req.Utterance)
	switch {
	case errors.Is(err, agent.ErrEmptyCatalog), errors.Is(err, agent.ErrEmptyUtterance):
		s.renderError(c, http.StatusBadRequest, err)
		return
	case err != nil:
		kind := failureKind(err)
		metrics.RecordResolveFailure(kind)
		logrus.WithError(err).WithField("kind", kind).Warn("resolve request produced no action")
		c.JSON(http.StatusOK, ResolveResponse{})
		return
	}

	c.JSON(http.StatusOK, ResolveResponse{
		Action:    decision.Action,
		Found:     true,
		Unknown:   decision.Unknown,
		Arguments: decision.Arguments,
	})
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req TranslateRequest
	if err := bindJSON(c, &req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	target := firstNonEmpty(req.Target, s.translateTo)

	translation, found := s.translator.Translate(c.Request.Context(), req.Text, target)
	c.JSON(http.StatusOK, TranslateResponse{Translation: translation, Found: found})
}

func (s *Server) handleListPrompts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 200 {
		pageSize = 200
	}
	offset := page * pageSize

	rows, total, err := s.db.ListPrompts(offset, pageSize)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]PromptDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	c.JSON(http.StatusOK, PromptsResponse{Items: dtos, Total: total})
}

func (s *Server) handleClearPrompts(c *gin.Context) {
	if err := s.db.ClearPrompts(); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	logrus.Info("prompt history cleared")
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) handleCurrentImage(c *gin.Context) {
	if _, err := s.navigator.Current(); err != nil {
		s.renderError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, s.navigator.State())
}

func (s *Server) handleNavigate(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, _, err := s.navigator.Dispatch(c.Request.Context(), action)
		metrics.RecordNavigation(action, err == nil)
		if err != nil {
			s.notifier.Broadcast(NavigationEvent{
				Type:    "error",
				Action:  action,
				State:   state,
				Message: err.Error(),
			})
			s.renderError(c, http.StatusBadGateway, err)
			return
		}
		s.notifier.Broadcast(NavigationEvent{
			Type:   "navigation",
			Action: action,
			State:  state,
		})
		c.JSON(http.StatusOK, state)
	}
}

func (s *Server) handleStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("navigation websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("navigation websocket closed")
			} else {
				logrus.WithError(err).Warn("navigation websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
