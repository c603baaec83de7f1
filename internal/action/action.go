// Package action defines the structured result produced by the router and
// the AI dispatcher and consumed by the executor.
package action

import "fmt"

const (
	Type           = "type"
	DeleteChars    = "delete_chars"
	DeleteWords    = "delete_words"
	WebSearch      = "web_search"
	WatchYouTube   = "watch_youtube"
	OpenApp        = "open_app"
	CreateFile     = "create_file"
	ReadFile       = "read_file"
	AppendFile     = "append_file"
	RunCommand     = "run_command"
	ClipboardRead  = "clipboard_read"
	ClipboardWrite = "clipboard_write"
	SystemInfo     = "system_info"
	Respond        = "respond"
)

const DefaultAnswer = "Done"

type Result struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
	Answer string         `json:"answer"`

	// Handled is set when the effector already ran inside the router.
	Handled bool `json:"-"`
}

// Normalize fills absent keys with safe defaults so that every result
// carries action, params and answer.
func (r Result) Normalize() Result {
	if r.Action == "" {
		r.Action = Respond
	}
	if r.Params == nil {
		r.Params = map[string]any{}
	}
	if r.Answer == "" {
		r.Answer = DefaultAnswer
	}
	return r
}

// FromMap builds a normalized result from a decoded JSON object. Keys with
// the wrong type are treated as absent.
func FromMap(m map[string]any) Result {
	var r Result
	if s, ok := m["action"].(string); ok {
		r.Action = s
	}
	if p, ok := m["params"].(map[string]any); ok {
		r.Params = p
	}
	if a, ok := m["answer"].(string); ok {
		r.Answer = a
	}
	return r.Normalize()
}

// Param returns params[key] as a string, accepting numbers and booleans
// the way a model might emit them.
func (r Result) Param(key string) string {
	v, ok := r.Params[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
