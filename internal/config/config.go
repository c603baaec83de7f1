// Package config assembles daemon settings from defaults, an optional YAML
// file, the environment (.env included) and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Audio struct {
	SampleRate  int           `yaml:"sample_rate"`
	FrameSize   int           `yaml:"frame_size"`
	Device      string        `yaml:"device"`
	MaxDuration time.Duration `yaml:"max_duration"`
	Cue         string        `yaml:"cue"`
	Duck        bool          `yaml:"duck"`
	DuckFactor  float64       `yaml:"duck_factor"`
	DuckFloor   int           `yaml:"duck_floor"`
	DuckFade    time.Duration `yaml:"duck_fade"`
	DuckKeep    []string      `yaml:"duck_keep"`
}

type Whisper struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Threads  int    `yaml:"threads"`
	Prompt   string `yaml:"prompt"`
}

type Trigger struct {
	Kind   string `yaml:"kind"`
	Button uint16 `yaml:"button"`
	Hotkey string `yaml:"hotkey"`
}

type AI struct {
	Primary         string        `yaml:"primary"`
	Timeout         time.Duration `yaml:"timeout"`
	GroqKey         string        `yaml:"-"`
	GroqModel       string        `yaml:"groq_model"`
	OpenRouterKey   string        `yaml:"-"`
	OpenRouterModel string        `yaml:"openrouter_model"`
}

type Speech struct {
	Enabled bool   `yaml:"enabled"`
	Voice   string `yaml:"voice"`
	Rate    int    `yaml:"rate"`
	Answers bool   `yaml:"answers"`
}

type Shell struct {
	Allowed []string      `yaml:"allowed"`
	Timeout time.Duration `yaml:"timeout"`
}

type Config struct {
	LogLevel  string        `yaml:"log_level"`
	Wake      string        `yaml:"wake"`
	Workspace string        `yaml:"workspace"`
	Proxy     string        `yaml:"proxy"`
	BusURL    string        `yaml:"bus_url"`
	Socket    string        `yaml:"socket"`
	Debounce  time.Duration `yaml:"debounce"`
	Notify    bool          `yaml:"notify"`
	Apps      []string      `yaml:"apps"`

	// PipelineTimeout bounds one utterance after transcription.
	PipelineTimeout time.Duration `yaml:"pipeline_timeout"`

	Audio   Audio   `yaml:"audio"`
	Whisper Whisper `yaml:"whisper"`
	Trigger Trigger `yaml:"trigger"`
	AI      AI      `yaml:"ai"`
	Speech  Speech  `yaml:"speech"`
	Shell   Shell   `yaml:"shell"`
}

func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Config{
		LogLevel:  "info",
		Wake:      "jarvis",
		Workspace: filepath.Join(home, "jarvis_workspace"),
		Debounce:  time.Second,
		Notify:    true,
		Apps:      []string{"firefox", "chromium", "code", "gnome-terminal", "nautilus", "spotify", "gnome-calculator"},

		PipelineTimeout: time.Minute,

		Audio: Audio{
			SampleRate:  16000,
			FrameSize:   1024,
			MaxDuration: 30 * time.Second,
			DuckFactor:  0.3,
			DuckFloor:   10,
			DuckFade:    200 * time.Millisecond,
		},
		Whisper: Whisper{
			Model:    "models/ggml-base.en.bin",
			Language: "en",
		},
		Trigger: Trigger{Kind: "mouse", Button: 3, Hotkey: "ctrl+shift+space"},
		AI: AI{
			Primary:         "groq",
			Timeout:         8 * time.Second,
			GroqModel:       "llama-3.1-8b-instant",
			OpenRouterModel: "mistralai/Mistral-7B-Instruct-v0.1",
		},
		Speech: Speech{Enabled: true, Voice: "en", Rate: 140},
		Shell: Shell{
			Allowed: []string{"ls", "pwd", "git", "echo", "python", "pip", "open"},
			Timeout: 10 * time.Second,
		},
	}
}

// Load applies the YAML file at path (skipped when empty) and then the
// environment. Variables from envFile never override the real environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	env := map[string]string{}
	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	str := func(key string, dst *string) {
		if v, ok := env[key]; ok && v != "" {
			*dst = v
		}
	}
	str("GROQ_API_KEY", &c.AI.GroqKey)
	str("OPENROUTER_API_KEY", &c.AI.OpenRouterKey)
	str("GROQ_MODEL", &c.AI.GroqModel)
	str("OPENROUTER_MODEL", &c.AI.OpenRouterModel)
	str("AI_BACKEND", &c.AI.Primary)
	str("JARVIS_LOG_LEVEL", &c.LogLevel)
	str("JARVIS_WAKE", &c.Wake)
	str("JARVIS_WORKSPACE", &c.Workspace)
	str("JARVIS_PROXY", &c.Proxy)
	str("JARVIS_BUS_URL", &c.BusURL)
	str("JARVIS_SOCKET", &c.Socket)
	str("JARVIS_TRIGGER", &c.Trigger.Kind)
	str("JARVIS_HOTKEY", &c.Trigger.Hotkey)
	str("JARVIS_WHISPER_MODEL", &c.Whisper.Model)
	str("JARVIS_WHISPER_LANGUAGE", &c.Whisper.Language)
	str("JARVIS_VOICE", &c.Speech.Voice)

	var errs []error
	if v, ok := env["JARVIS_AI_TIMEOUT"]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("JARVIS_AI_TIMEOUT: %w", err))
		} else {
			c.AI.Timeout = d
		}
	}
	if v, ok := env["JARVIS_PIPELINE_TIMEOUT"]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("JARVIS_PIPELINE_TIMEOUT: %w", err))
		} else {
			c.PipelineTimeout = d
		}
	}
	if v, ok := env["JARVIS_SPEECH"]; ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("JARVIS_SPEECH: %w", err))
		} else {
			c.Speech.Enabled = b
		}
	}
	return errors.Join(errs...)
}

// Flags holds the command-line overrides registered on a flag set.
type Flags struct {
	Env     *string
	Config  *string
	Log     *string
	Proxy   *string
	Wake    *string
	Trigger *string
	Socket  *string
}

func RegisterFlags(fs *cli.FlagSet) *Flags {
	return &Flags{
		Env:     fs.StringP("env", "e", ".env", "Env file path"),
		Config:  fs.StringP("config", "c", "", "YAML config file"),
		Log:     fs.StringP("log", "l", "info", "Log level"),
		Proxy:   fs.StringP("proxy", "p", "", "Socks proxy address for AI and search requests"),
		Wake:    fs.StringP("wake", "w", "jarvis", "Wake phrase"),
		Trigger: fs.String("trigger", "mouse", "Trigger source: mouse, hotkey or none"),
		Socket:  fs.String("socket", "", "Control socket path"),
	}
}

// ApplyFlags copies only the flags the user actually set.
func (c *Config) ApplyFlags(fs *cli.FlagSet, f *Flags) {
	set := func(name string, src *string, dst *string) {
		if fs.Changed(name) {
			*dst = *src
		}
	}
	set("log", f.Log, &c.LogLevel)
	set("proxy", f.Proxy, &c.Proxy)
	set("wake", f.Wake, &c.Wake)
	set("trigger", f.Trigger, &c.Trigger.Kind)
	set("socket", f.Socket, &c.Socket)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level %q", c.LogLevel))
	}
	if strings.TrimSpace(c.Wake) == "" {
		errs = append(errs, errors.New("wake phrase is empty"))
	}
	if c.Workspace == "" {
		errs = append(errs, errors.New("workspace is empty"))
	}
	switch c.Trigger.Kind {
	case "mouse", "hotkey", "none":
	default:
		errs = append(errs, fmt.Errorf("trigger %q", c.Trigger.Kind))
	}
	switch c.AI.Primary {
	case "groq", "openrouter":
	default:
		errs = append(errs, fmt.Errorf("ai backend %q", c.AI.Primary))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("ai timeout must be positive"))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, errors.New("sample rate must be positive"))
	}
	if c.PipelineTimeout <= 0 {
		errs = append(errs, errors.New("pipeline timeout must be positive"))
	}
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	if c.Audio.Duck && (c.Audio.DuckFactor < 0 || c.Audio.DuckFactor > 1) {
		errs = append(errs, fmt.Errorf("duck factor %v outside [0,1]", c.Audio.DuckFactor))
	}
	return errors.Join(errs...)
}

// EnsureWorkspace creates the workspace directory and makes the path
// absolute.
func (c *Config) EnsureWorkspace() error {
	abs, err := filepath.Abs(c.Workspace)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	c.Workspace = abs
	return nil
}

func (c *Config) HasAIKey() bool {
	return c.AI.GroqKey != "" || c.AI.OpenRouterKey != ""
}
