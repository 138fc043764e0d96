package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where shopsense stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// AI configuration
	AIEnabled   bool   // SHOPSENSE_AI_ENABLED
	AIAPIKey    string // SHOPSENSE_AI_API_KEY
	AIBaseURL   string // SHOPSENSE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel     string // SHOPSENSE_AI_MODEL (default: gpt-4o-mini)
	AIMaxTokens int    // SHOPSENSE_AI_MAX_TOKENS (default: 512)

	// Routing configuration
	ConfidenceThreshold float64       // SHOPSENSE_AI_CONFIDENCE_THRESHOLD (default: 0.75)
	ClassifyTimeout     time.Duration // SHOPSENSE_AI_CLASSIFY_TIMEOUT (default: 30s)
	ClassifyRetries     int           // SHOPSENSE_AI_CLASSIFY_RETRIES (default: 2)
	ClassifyRetryDelay  time.Duration // SHOPSENSE_AI_CLASSIFY_RETRY_DELAY (default: 500ms)
	ClassifyConcurrency int           // SHOPSENSE_AI_CLASSIFY_CONCURRENCY (default: 8)
	ClassifyRPS         float64       // SHOPSENSE_AI_CLASSIFY_RPS (default: 5)

	// Handoff configuration
	IdleConversationTTL time.Duration // SHOPSENSE_IDLE_CONVERSATION_TTL (default: 30m)
	JanitorInterval     time.Duration // SHOPSENSE_JANITOR_INTERVAL (default: 5m)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI routing is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// FromEnv loads configuration from SHOPSENSE_* environment variables.
func (p *Profile) FromEnv() {
	v := viper.New()
	v.SetEnvPrefix("shopsense")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "demo")
	v.SetDefault("addr", "")
	v.SetDefault("port", 8081)
	v.SetDefault("data", "")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("ai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai_model", "gpt-4o-mini")
	v.SetDefault("ai_max_tokens", 512)
	v.SetDefault("ai_confidence_threshold", 0.75)
	v.SetDefault("ai_classify_timeout", 30*time.Second)
	v.SetDefault("ai_classify_retries", 2)
	v.SetDefault("ai_classify_retry_delay", 500*time.Millisecond)
	v.SetDefault("ai_classify_concurrency", 8)
	v.SetDefault("ai_classify_rps", 5.0)
	v.SetDefault("idle_conversation_ttl", 30*time.Minute)
	v.SetDefault("janitor_interval", 5*time.Minute)

	p.Mode = v.GetString("mode")
	p.Addr = v.GetString("addr")
	p.Port = v.GetInt("port")
	p.Data = v.GetString("data")
	p.DSN = v.GetString("dsn")
	p.Driver = v.GetString("driver")

	p.AIEnabled = v.GetBool("ai_enabled")
	p.AIAPIKey = v.GetString("ai_api_key")
	p.AIBaseURL = v.GetString("ai_base_url")
	p.AIModel = v.GetString("ai_model")
	p.AIMaxTokens = v.GetInt("ai_max_tokens")

	p.ConfidenceThreshold = v.GetFloat64("ai_confidence_threshold")
	p.ClassifyTimeout = v.GetDuration("ai_classify_timeout")
	p.ClassifyRetries = v.GetInt("ai_classify_retries")
	p.ClassifyRetryDelay = v.GetDuration("ai_classify_retry_delay")
	p.ClassifyConcurrency = v.GetInt("ai_classify_concurrency")
	p.ClassifyRPS = v.GetFloat64("ai_classify_rps")

	p.IdleConversationTTL = v.GetDuration("idle_conversation_ttl")
	p.JanitorInterval = v.GetDuration("janitor_interval")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			p.Data = "/var/opt/shopsense"
		} else {
			p.Data = "."
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("shopsense_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires SHOPSENSE_DSN")
	}

	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return errors.Errorf("confidence threshold must be within [0,1], got %v", p.ConfidenceThreshold)
	}
	if p.ClassifyRetries < 0 {
		p.ClassifyRetries = 0
	}
	if p.ClassifyConcurrency <= 0 {
		p.ClassifyConcurrency = 1
	}

	return nil
}
