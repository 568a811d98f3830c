package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite runs each test from an empty working directory so no
// stray config.yaml or .env is picked up.
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir = suite.T().TempDir()
	require.NoError(suite.T(), os.Chdir(suite.tempDir))

	// keep the user's real home config out of the way
	homedir.DisableCache = true
	suite.T().Setenv("HOME", suite.tempDir)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		_ = os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) TestDefaults() {
	cfg, err := Load(nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "openai", cfg.LLM.Provider)
	assert.Equal(suite.T(), 0.0, cfg.LLM.Temperature)
	assert.Equal(suite.T(), 25, cfg.Agent.MaxIterations)
	assert.Equal(suite.T(), 0, cfg.Agent.MaxParseErrors)
	assert.Equal(suite.T(), "python3", cfg.Tools.Python)
	assert.Equal(suite.T(), "sh", cfg.Tools.Shell)
	assert.Equal(suite.T(), "serpapi", cfg.Tools.Search.Provider)
	assert.Equal(suite.T(), "https://wttr.in", cfg.Tools.WeatherURL)
	assert.Equal(suite.T(), "info", cfg.Log.Level)
	assert.Empty(suite.T(), cfg.Metrics.Addr)
}

func (suite *ConfigTestSuite) TestConfigFile() {
	content := `
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
  requests_per_second: 1.5
agent:
  max_iterations: 10
  max_parse_errors: 3
tools:
  search:
    provider: google
    google_cse_id: abc123
log:
  level: debug
  format: json
`
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.tempDir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "anthropic", cfg.LLM.Provider)
	assert.Equal(suite.T(), "claude-3-5-haiku-latest", cfg.LLM.Model)
	assert.Equal(suite.T(), 1.5, cfg.LLM.RequestsPerSecond)
	assert.Equal(suite.T(), 10, cfg.Agent.MaxIterations)
	assert.Equal(suite.T(), 3, cfg.Agent.MaxParseErrors)
	assert.Equal(suite.T(), "google", cfg.Tools.Search.Provider)
	assert.Equal(suite.T(), "abc123", cfg.Tools.Search.GoogleCSEID)
	assert.Equal(suite.T(), "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(suite.T(), "sh", cfg.Tools.Shell)
}

func (suite *ConfigTestSuite) TestEnvironment() {
	suite.T().Setenv("REACT_AGENT_AGENT_MAX_ITERATIONS", "7")
	suite.T().Setenv("REACT_AGENT_LLM_PROVIDER", "anthropic")
	suite.T().Setenv("SERPAPI_API_KEY", "serp-key")
	suite.T().Setenv("TELEGRAM_BOT_TOKEN", "tg-token")

	cfg, err := Load(nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 7, cfg.Agent.MaxIterations)
	assert.Equal(suite.T(), "anthropic", cfg.LLM.Provider)
	assert.Equal(suite.T(), "serp-key", cfg.Tools.Search.SerpAPIKey)
	assert.Equal(suite.T(), "tg-token", cfg.Telegram.Token)
}

func (suite *ConfigTestSuite) TestAllowedUsersFromEnv() {
	suite.T().Setenv("REACT_AGENT_TELEGRAM_ALLOWED_USERS", "alice,12345")

	cfg, err := Load(nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"alice", "12345"}, cfg.Telegram.AllowedUsers)
}

func (suite *ConfigTestSuite) TestPrefixedEnvBeatsAlias() {
	suite.T().Setenv("REACT_AGENT_TOOLS_SEARCH_SERPAPI_KEY", "prefixed")
	suite.T().Setenv("SERPAPI_API_KEY", "alias")

	cfg, err := Load(nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "prefixed", cfg.Tools.Search.SerpAPIKey)
}

func (suite *ConfigTestSuite) TestDotEnv() {
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.tempDir, ".env"), []byte("REACT_AGENT_TOOLS_PYTHON=python3.12\n"), 0o644))
	// godotenv sets the variable for the process; drop it when the test ends
	suite.T().Setenv("REACT_AGENT_TOOLS_PYTHON", "")
	require.NoError(suite.T(), os.Unsetenv("REACT_AGENT_TOOLS_PYTHON"))

	cfg, err := Load(nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "python3.12", cfg.Tools.Python)
}

func (suite *ConfigTestSuite) TestFlags() {
	path := filepath.Join(suite.tempDir, "custom.yaml")
	require.NoError(suite.T(), os.WriteFile(path, []byte("agent:\n  max_iterations: 12\nllm:\n  model: from-file\n"), 0o644))
	suite.T().Setenv("REACT_AGENT_LLM_MODEL", "from-env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(suite.T(), fs.Parse([]string{"--config", path, "--model", "from-flag", "--log-level", "warn"}))

	cfg, err := Load(fs)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "from-flag", cfg.LLM.Model)
	assert.Equal(suite.T(), 12, cfg.Agent.MaxIterations)
	assert.Equal(suite.T(), "warn", cfg.Log.Level)
	// unset flags do not mask defaults
	assert.Equal(suite.T(), "openai", cfg.LLM.Provider)
}

func (suite *ConfigTestSuite) TestMissingExplicitFile() {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(suite.T(), fs.Parse([]string{"--config", filepath.Join(suite.tempDir, "nope.yaml")}))

	_, err := Load(fs)
	assert.Error(suite.T(), err)
}

func (suite *ConfigTestSuite) TestInvalidFile() {
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.tempDir, "config.yaml"), []byte("llm: [unclosed"), 0o644))

	_, err := Load(nil)
	assert.Error(suite.T(), err)
}
