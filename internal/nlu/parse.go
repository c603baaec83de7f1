package nlu

import (
	"encoding/json"
	"regexp"
	"strings"

	"jarvis/internal/action"
)

const maxRawAnswer = 200

var (
	fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

	videoQueryRe  = regexp.MustCompile(`(?i)^(let's|let me)?\s*(watch|find|search for)\b`)
	searchQueryRe = regexp.MustCompile(`(?i)^(search\s+for|search|find|look\s+up)\b`)

	videoWords  = []string{"youtube", "watch", "video"}
	searchWords = []string{"search", "google", "find", "look up", "web"}
)

// Parse turns a model reply into an action. It never fails: each stage
// falls through to a looser one and the last resort is to repeat the
// reply back to the user.
func Parse(raw, prompt string) action.Result {
	raw = strings.TrimSpace(raw)

	if r, ok := decodeObject(raw); ok {
		return r
	}
	if m := fencedRe.FindStringSubmatch(raw); m != nil {
		if r, ok := decodeObject(m[1]); ok {
			return r
		}
	}
	if r, ok := embeddedObject(raw); ok {
		return r
	}
	return infer(raw, prompt)
}

func decodeObject(s string) (action.Result, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return action.Result{}, false
	}
	return action.FromMap(m), true
}

// embeddedObject finds the first brace-balanced JSON object inside prose.
func embeddedObject(s string) (action.Result, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end := matchBrace(s, start); end > start {
			if r, ok := decodeObject(s[start : end+1]); ok {
				return r, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return action.Result{}, false
}

// matchBrace returns the index of the brace closing s[open], or -1.
func matchBrace(s string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func infer(raw, prompt string) action.Result {
	lower := strings.ToLower(raw)

	if containsAny(lower, videoWords) {
		q := queryOr(videoQueryRe.ReplaceAllString(prompt, ""), prompt)
		return action.Result{
			Action: action.WatchYouTube,
			Params: map[string]any{"query": q},
			Answer: "Opening YouTube for " + q,
		}
	}
	if containsAny(lower, searchWords) {
		q := queryOr(searchQueryRe.ReplaceAllString(prompt, ""), prompt)
		return action.Result{
			Action: action.WebSearch,
			Params: map[string]any{"query": q},
			Answer: "Searching for " + q,
		}
	}

	return action.Result{Action: action.Respond, Answer: truncateRunes(raw, maxRawAnswer)}.Normalize()
}

func queryOr(q, fallback string) string {
	if q = strings.TrimSpace(q); q != "" {
		return q
	}
	return strings.TrimSpace(fallback)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
