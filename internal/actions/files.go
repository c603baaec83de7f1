package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrOutsideWorkspace = errors.New("path is outside the workspace")

// Workspace confines file actions to a single directory tree.
type Workspace struct {
	root string
}

// NewWorkspace creates root if needed.
func NewWorkspace(root string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Workspace{root: resolved}, nil
}

func (w *Workspace) Root() string { return w.root }

func (w *Workspace) Create(name, content string) (string, error) {
	path, err := w.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	return "Created file: " + name, nil
}

func (w *Workspace) Read(name string) (string, error) {
	path, err := w.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("file not found: %s: %w", name, err)
	}
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

// Append creates the file when it does not exist yet.
func (w *Workspace) Append(name, content string) (string, error) {
	path, err := w.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("append file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("append file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("append file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("append file: %w", err)
	}
	return "Appended to file: " + name, nil
}

// resolve maps name to an absolute path under root. Symlinks are followed
// as far as the path exists so a link cannot lead outside.
func (w *Workspace) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("%q: %w", name, ErrOutsideWorkspace)
	}

	path := filepath.Join(w.root, name)
	if !w.contains(path) {
		return "", fmt.Errorf("%q: %w", name, ErrOutsideWorkspace)
	}

	existing, rest := path, ""
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", name, err)
	}
	resolved = filepath.Join(resolved, rest)
	if !w.contains(resolved) {
		return "", fmt.Errorf("%q: %w", name, ErrOutsideWorkspace)
	}
	return resolved, nil
}

func (w *Workspace) contains(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
