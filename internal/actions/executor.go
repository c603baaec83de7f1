// Package actions runs the side effect named by an action result: typing,
// file and shell access, clipboard, system metrics, web and video search.
package actions

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"jarvis/internal/action"
	"jarvis/internal/router"
)

var (
	ErrMissingParam = errors.New("missing parameter")
	ErrUnavailable  = errors.New("effector not available")
)

type Typist interface {
	Type(text string) error
	DeleteChars(n int) error
	DeleteWords(n int) error
}

type FileStore interface {
	Create(name, content string) (string, error)
	Read(name string) (string, error)
	Append(name, content string) (string, error)
}

type CommandRunner interface {
	Run(ctx context.Context, command string) (string, error)
}

type MetricSource interface {
	Get(ctx context.Context, metric string) (string, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

type VideoOpener interface {
	Watch(ctx context.Context, query string) (string, error)
}

type AppLauncher interface {
	Open(name string) (string, error)
}

// Effectors is the set of collaborators an Executor drives. A nil field
// makes its actions fail with ErrUnavailable.
type Effectors struct {
	Keyboard  Typist
	Files     FileStore
	Shell     CommandRunner
	Clipboard Clipboard
	System    MetricSource
	Search    WebSearcher
	Video     VideoOpener
	Apps      AppLauncher
}

// informational actions show what the effector returned instead of the
// model's answer.
var informational = map[string]bool{
	action.ReadFile:      true,
	action.ClipboardRead: true,
	action.SystemInfo:    true,
	action.WebSearch:     true,
	action.RunCommand:    true,
}

type Executor struct {
	fx     Effectors
	logger *log.Logger
}

func NewExecutor(fx Effectors, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{fx: fx, logger: logger.With("component", "executor")}
}

// Execute runs res and returns the text to surface to the user.
func (e *Executor) Execute(ctx context.Context, res action.Result) string {
	res = res.Normalize()
	if res.Handled {
		return res.Answer
	}

	out, err := e.Run(ctx, res)
	if err != nil {
		e.logger.Warn("Action failed", "action", res.Action, "err", err)
		return Describe(err)
	}
	if informational[res.Action] && out != "" {
		return out
	}
	return res.Answer
}

// Run performs the side effect and returns the effector's output.
func (e *Executor) Run(ctx context.Context, res action.Result) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", res.Action, p)
		}
	}()

	e.logger.Debug("Executing", "action", res.Action, "params", res.Params)

	switch res.Action {
	case action.Respond:
		return "", nil

	case action.Type:
		text, err := required(res, "text")
		if err != nil {
			return "", err
		}
		if e.fx.Keyboard == nil {
			return "", unavailable("keyboard")
		}
		return "", e.fx.Keyboard.Type(text)

	case action.DeleteChars, action.DeleteWords:
		raw, err := required(res, "count")
		if err != nil {
			return "", err
		}
		n, ok := router.ParseNumber(raw)
		if !ok || n <= 0 {
			return "", fmt.Errorf("count %q: %w", raw, ErrMissingParam)
		}
		if e.fx.Keyboard == nil {
			return "", unavailable("keyboard")
		}
		if res.Action == action.DeleteChars {
			return "", e.fx.Keyboard.DeleteChars(n)
		}
		return "", e.fx.Keyboard.DeleteWords(n)

	case action.WebSearch:
		q, err := required(res, "query")
		if err != nil {
			return "", err
		}
		if e.fx.Search == nil {
			return "", unavailable("search")
		}
		return e.fx.Search.Search(ctx, q)

	case action.WatchYouTube:
		q, err := required(res, "query")
		if err != nil {
			return "", err
		}
		if e.fx.Video == nil {
			return "", unavailable("video")
		}
		return e.fx.Video.Watch(ctx, q)

	case action.OpenApp:
		name, err := required(res, "name")
		if err != nil {
			return "", err
		}
		if e.fx.Apps == nil {
			return "", unavailable("apps")
		}
		return e.fx.Apps.Open(name)

	case action.CreateFile, action.AppendFile:
		name, err := required(res, "name")
		if err != nil {
			return "", err
		}
		if e.fx.Files == nil {
			return "", unavailable("files")
		}
		if res.Action == action.CreateFile {
			return e.fx.Files.Create(name, res.Param("content"))
		}
		return e.fx.Files.Append(name, res.Param("content"))

	case action.ReadFile:
		name, err := required(res, "name")
		if err != nil {
			return "", err
		}
		if e.fx.Files == nil {
			return "", unavailable("files")
		}
		return e.fx.Files.Read(name)

	case action.RunCommand:
		cmd, err := required(res, "cmd")
		if err != nil {
			return "", err
		}
		if e.fx.Shell == nil {
			return "", unavailable("shell")
		}
		return e.fx.Shell.Run(ctx, cmd)

	case action.ClipboardRead:
		if e.fx.Clipboard == nil {
			return "", unavailable("clipboard")
		}
		text, err := e.fx.Clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("clipboard read: %w", err)
		}
		return "Clipboard: " + text, nil

	case action.ClipboardWrite:
		text, err := required(res, "text")
		if err != nil {
			return "", err
		}
		if e.fx.Clipboard == nil {
			return "", unavailable("clipboard")
		}
		return "", e.fx.Clipboard.WriteAll(text)

	case action.SystemInfo:
		if e.fx.System == nil {
			return "", unavailable("system info")
		}
		return e.fx.System.Get(ctx, res.Param("metric"))

	default:
		e.logger.Debug("Unknown action", "action", res.Action)
		return "", nil
	}
}

// Describe turns an effector error into a short message for the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, ErrOutsideWorkspace):
		return "Error: that path is outside the workspace."
	case errors.Is(err, ErrCommandNotAllowed):
		return "Error: that command is not allowed."
	case errors.Is(err, ErrAppNotAllowed):
		return "Error: that application is not allowed."
	case errors.Is(err, ErrTimeout):
		return "Error: the command timed out."
	case errors.Is(err, context.DeadlineExceeded):
		return "Error: that took too long."
	default:
		return "Error: " + err.Error()
	}
}

func required(res action.Result, key string) (string, error) {
	v := res.Param(key)
	if v == "" {
		return "", fmt.Errorf("%s needs %q: %w", res.Action, key, ErrMissingParam)
	}
	return v, nil
}

func unavailable(name string) error {
	return fmt.Errorf("%s: %w", name, ErrUnavailable)
}
