package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting for the service.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Chat    ChatConfig
	AI      AIConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chatCfg, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Storage: loadStorageConfig(),
		Chat:    chatCfg,
		AI:      ai,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr       string
	CORSOrigin string
	// AuthAudience enables bearer-token verification when set. Without it
	// every caller is treated as an anonymous device.
	AuthAudience string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	cfg := ServerConfig{
		CORSOrigin:   getEnvOrDefault("CORS_ORIGIN", "*"),
		AuthAudience: strings.TrimSpace(os.Getenv("AUTH_AUDIENCE")),
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		cfg.Addr = port
		return cfg, nil
	}
	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	cfg.Addr = ":" + port
	return cfg, nil
}

// StorageConfig selects the persistence sinks. GCPProject enables the remote
// document store for signed-in users; LocalDBPath is the device-scoped
// database backing guest sessions.
type StorageConfig struct {
	GCPProject  string
	LocalDBPath string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		GCPProject:  strings.TrimSpace(os.Getenv("GCP_PROJECT")),
		LocalDBPath: getEnvOrDefault("LOCAL_DB_PATH", "data/otsy.db"),
	}
}

// ChatConfig tunes the conversation controller.
type ChatConfig struct {
	// TypingDelay is the fixed pause before the companion answers. A UX
	// choice, not a performance knob; it is deliberately not configurable
	// per request.
	TypingDelay time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	delayMs, err := parseOptionalIntEnv("TYPING_DELAY_MS")
	if err != nil {
		return ChatConfig{}, err
	}
	cfg := ChatConfig{TypingDelay: 1500 * time.Millisecond}
	if delayMs != nil && *delayMs >= 0 {
		cfg.TypingDelay = time.Duration(*delayMs) * time.Millisecond
	}
	return cfg, nil
}

// AIConfig describes the optional hosted chat model.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + ARK_MODEL, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
