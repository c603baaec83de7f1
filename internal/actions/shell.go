package actions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	ErrCommandNotAllowed = errors.New("command is not in the allow-list")
	ErrTimeout           = errors.New("command timed out")
)

var DefaultAllowed = []string{"ls", "pwd", "git", "echo", "python", "pip", "open"}

const DefaultShellTimeout = 10 * time.Second

// Shell runs allow-listed programs directly, without a shell, so pipes,
// globs and substitutions in the command text are passed as plain
// arguments.
type Shell struct {
	allowed map[string]bool
	timeout time.Duration
	dir     string
}

func NewShell(allowed []string, timeout time.Duration, dir string) *Shell {
	if timeout <= 0 {
		timeout = DefaultShellTimeout
	}
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(a)] = true
	}
	return &Shell{allowed: set, timeout: timeout, dir: dir}
}

func (s *Shell) Allowed(name string) bool {
	return s.allowed[strings.ToLower(name)]
}

// Run returns stdout, "(command executed)" when there is none, or
// "Error: <stderr>" when the program exits non-zero.
func (s *Shell) Run(ctx context.Context, command string) (string, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command: %w", ErrCommandNotAllowed)
	}
	if !s.Allowed(argv[0]) {
		return "", fmt.Errorf("%q: %w", argv[0], ErrCommandNotAllowed)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = s.dir
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%s (%s limit): %w", argv[0], s.timeout, ErrTimeout)
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return "Error: " + strings.TrimSpace(stderr.String()), nil
	case err != nil:
		return "", fmt.Errorf("run %s: %w", argv[0], err)
	}

	if out := strings.TrimRight(stdout.String(), "\n"); out != "" {
		return out, nil
	}
	return "(command executed)", nil
}
