package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shopsenseEnvVars = []string{
	"SHOPSENSE_MODE",
	"SHOPSENSE_PORT",
	"SHOPSENSE_DATA",
	"SHOPSENSE_DSN",
	"SHOPSENSE_DRIVER",
	"SHOPSENSE_AI_ENABLED",
	"SHOPSENSE_AI_API_KEY",
	"SHOPSENSE_AI_BASE_URL",
	"SHOPSENSE_AI_MODEL",
	"SHOPSENSE_AI_CONFIDENCE_THRESHOLD",
	"SHOPSENSE_AI_CLASSIFY_TIMEOUT",
	"SHOPSENSE_AI_CLASSIFY_RETRIES",
	"SHOPSENSE_IDLE_CONVERSATION_TTL",
	"SHOPSENSE_JANITOR_INTERVAL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range shopsenseEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnv(t)

	profile := &Profile{}
	profile.FromEnv()

	assert.Equal(t, "demo", profile.Mode)
	assert.Equal(t, 8081, profile.Port)
	assert.Equal(t, "sqlite", profile.Driver)
	assert.False(t, profile.AIEnabled)
	assert.Equal(t, "https://api.openai.com/v1", profile.AIBaseURL)
	assert.Equal(t, "gpt-4o-mini", profile.AIModel)
	assert.Equal(t, 512, profile.AIMaxTokens)
	assert.Equal(t, 0.75, profile.ConfidenceThreshold)
	assert.Equal(t, 30*time.Second, profile.ClassifyTimeout)
	assert.Equal(t, 2, profile.ClassifyRetries)
	assert.Equal(t, 500*time.Millisecond, profile.ClassifyRetryDelay)
	assert.Equal(t, 30*time.Minute, profile.IdleConversationTTL)
	assert.Equal(t, 5*time.Minute, profile.JanitorInterval)
}

func TestProfileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPSENSE_MODE", "prod")
	t.Setenv("SHOPSENSE_PORT", "9090")
	t.Setenv("SHOPSENSE_DRIVER", "postgres")
	t.Setenv("SHOPSENSE_DSN", "postgres://shopsense@localhost:5432/shopsense")
	t.Setenv("SHOPSENSE_AI_ENABLED", "true")
	t.Setenv("SHOPSENSE_AI_API_KEY", "sk-test")
	t.Setenv("SHOPSENSE_AI_CONFIDENCE_THRESHOLD", "0.6")

	profile := &Profile{}
	profile.FromEnv()

	assert.Equal(t, "prod", profile.Mode)
	assert.Equal(t, 9090, profile.Port)
	assert.Equal(t, "postgres", profile.Driver)
	assert.Equal(t, 0.6, profile.ConfidenceThreshold)
	assert.True(t, profile.IsAIEnabled())
}

func TestValidateSQLiteDSNDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("SHOPSENSE_DATA", dir)

	profile := &Profile{}
	profile.FromEnv()
	require.NoError(t, profile.Validate())

	assert.Equal(t, filepath.Join(dir, "shopsense_demo.db"), profile.DSN)
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPSENSE_DATA", t.TempDir())
	t.Setenv("SHOPSENSE_DRIVER", "postgres")

	profile := &Profile{}
	profile.FromEnv()
	assert.Error(t, profile.Validate())
}

func TestValidateConfidenceThresholdRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPSENSE_DATA", t.TempDir())
	t.Setenv("SHOPSENSE_AI_CONFIDENCE_THRESHOLD", "1.5")

	profile := &Profile{}
	profile.FromEnv()
	assert.Error(t, profile.Validate())
}

func TestValidateUnknownModeFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPSENSE_DATA", t.TempDir())
	t.Setenv("SHOPSENSE_MODE", "staging")

	profile := &Profile{}
	profile.FromEnv()
	require.NoError(t, profile.Validate())
	assert.Equal(t, "demo", profile.Mode)
}

func TestIsAIEnabledRequiresKey(t *testing.T) {
	profile := &Profile{AIEnabled: true}
	assert.False(t, profile.IsAIEnabled())
	profile.AIAPIKey = "sk-test"
	assert.True(t, profile.IsAIEnabled())
}
