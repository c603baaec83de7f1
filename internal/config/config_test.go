package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cli "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "jarvis", cfg.Wake)
	require.Equal(t, 8*time.Second, cfg.AI.Timeout)
	require.Equal(t, time.Second, cfg.Debounce)
	require.Equal(t, time.Minute, cfg.PipelineTimeout)
	require.Contains(t, cfg.Apps, "firefox")
}

func TestPipelineTimeoutLayers(t *testing.T) {
	yml := writeFile(t, "jarvis.yaml", "pipeline_timeout: 20s\napps: [firefox, code]\n")
	cfg, err := Load(yml, "")
	require.NoError(t, err)
	require.Equal(t, 20*time.Second, cfg.PipelineTimeout)
	require.Equal(t, []string{"firefox", "code"}, cfg.Apps)

	t.Setenv("JARVIS_PIPELINE_TIMEOUT", "45s")
	cfg, err = Load(yml, "")
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, cfg.PipelineTimeout)

	cfg.PipelineTimeout = 0
	require.ErrorContains(t, cfg.Validate(), "pipeline timeout")
}

func TestPrecedence(t *testing.T) {
	yml := writeFile(t, "jarvis.yaml", `
wake: friday
log_level: warn
proxy: 127.0.0.1:1080
ai:
  primary: openrouter
  timeout: 3s
audio:
  max_duration: 12s
`)
	envFile := writeFile(t, ".env", "JARVIS_WAKE=edith\nGROQ_API_KEY=from-file\nJARVIS_LOG_LEVEL=error\n")
	t.Setenv("JARVIS_LOG_LEVEL", "debug")
	t.Setenv("GROQ_API_KEY", "")

	cfg, err := Load(yml, envFile)
	require.NoError(t, err)

	// yaml over defaults
	require.Equal(t, "openrouter", cfg.AI.Primary)
	require.Equal(t, 3*time.Second, cfg.AI.Timeout)
	require.Equal(t, 12*time.Second, cfg.Audio.MaxDuration)
	require.Equal(t, 16000, cfg.Audio.SampleRate)
	// env file over yaml, real env over env file
	require.Equal(t, "edith", cfg.Wake)
	require.Equal(t, "debug", cfg.LogLevel)
	// an empty real variable still shadows the env file
	require.Equal(t, "", cfg.AI.GroqKey)

	fs := cli.NewFlagSet("jarvis", cli.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--wake", "karen", "-l", "info"}))
	cfg.ApplyFlags(fs, flags)

	require.Equal(t, "karen", cfg.Wake)
	require.Equal(t, "info", cfg.LogLevel)
	// unset flags keep lower layers
	require.Equal(t, "127.0.0.1:1080", cfg.Proxy)
	require.Equal(t, "mouse", cfg.Trigger.Kind)
}

func TestEnvFileKeys(t *testing.T) {
	envFile := writeFile(t, ".env", "GROQ_API_KEY=gsk\nOPENROUTER_API_KEY=or\nAI_BACKEND=openrouter\n")
	for _, k := range []string{"GROQ_API_KEY", "OPENROUTER_API_KEY", "AI_BACKEND"} {
		old, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	require.Equal(t, "gsk", cfg.AI.GroqKey)
	require.Equal(t, "or", cfg.AI.OpenRouterKey)
	require.Equal(t, "openrouter", cfg.AI.Primary)
	require.True(t, cfg.HasAIKey())
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBadEnvValues(t *testing.T) {
	t.Setenv("JARVIS_AI_TIMEOUT", "soon")
	t.Setenv("JARVIS_SPEECH", "maybe")
	_, err := Load("", "")
	require.ErrorContains(t, err, "JARVIS_AI_TIMEOUT")
	require.ErrorContains(t, err, "JARVIS_SPEECH")
}

func TestValidateJoinsProblems(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.Wake = "  "
	cfg.Trigger.Kind = "foot"
	cfg.AI.Primary = "skynet"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"loud", "wake phrase", "foot", "skynet"} {
		require.ErrorContains(t, err, want)
	}
}

func TestEnsureWorkspace(t *testing.T) {
	cfg := Default()
	cfg.Workspace = filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, cfg.EnsureWorkspace())

	info, err := os.Stat(cfg.Workspace)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.True(t, filepath.IsAbs(cfg.Workspace))
}
