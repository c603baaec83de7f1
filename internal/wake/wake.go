// Package wake gates transcripts on a leading wake phrase.
package wake

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const DefaultPhrase = "jarvis"

var ErrEmptyPhrase = errors.New("wake phrase has no words")

// sep is anything that is not a letter or digit.
const sep = `[^\p{L}\p{N}]`

type Gate struct {
	phrase string
	re     *regexp.Regexp
}

func New(phrase string) (*Gate, error) {
	words := strings.FieldsFunc(phrase, isSep)
	if len(words) == 0 {
		return nil, ErrEmptyPhrase
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	expr := `(?is)^` + sep + `*` + strings.Join(quoted, sep+`+`) + `(?:` + sep + `+(.*))?$`
	return &Gate{phrase: strings.Join(words, " "), re: regexp.MustCompile(expr)}, nil
}

func (g *Gate) Phrase() string { return g.phrase }

// Extract returns the command that follows the wake phrase. ok is false
// when the phrase is missing or nothing follows it.
func (g *Gate) Extract(transcript string) (command string, ok bool) {
	m := g.re.FindStringSubmatch(transcript)
	if m == nil {
		return "", false
	}
	command = strings.TrimSpace(strings.TrimLeftFunc(m[1], isSep))
	return command, command != ""
}

func isSep(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
