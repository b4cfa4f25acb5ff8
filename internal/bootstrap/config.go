package bootstrap

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hrcopilot/server/internal/agent/model"
	logx "github.com/hrcopilot/server/pkg/logger"
	pkgpostgres "github.com/hrcopilot/server/pkg/postgres"
	pkgredis "github.com/hrcopilot/server/pkg/redis"
)

// Config defines all configurable parameters of the copilot, sourced from
// environment variables (loaded from .env for local runs).
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Infrastructure
	Redis       pkgredis.Config
	PolicyDB    pkgpostgres.Config
	PolicyTable string `envconfig:"POLICY_INDEX_TABLE" default:"policy_chunks"`
	Documents   model.DocumentIndexConfig

	// Agent configs
	Synthesizer model.SynthesizerModelConfig
	Prompt      model.ResponsePromptConfig
	Retrieval   model.RetrievalConfig
	Embedding   model.EmbeddingConfig
	Session     model.SessionConfig
	Escalation  model.EscalationConfig
	DocQA       model.DocQAConfig

	// HTTP server
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// LoadConfig reads envFile (when present) and then the process environment.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logx.Debug().Err(err).Str("file", envFile).Msg("No env file loaded")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}
