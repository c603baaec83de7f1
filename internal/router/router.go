// Package router maps a bare command onto a fast built-in handler or, when
// none matches, hands it to the AI dispatcher.
package router

import (
	"context"
	"fmt"
	log "log/slog"
	"regexp"
	"strconv"
	"strings"

	"jarvis/internal/action"
)

var (
	typeRe        = regexp.MustCompile(`(?is)^type\s+(.+)$`)
	deleteCharsRe = regexp.MustCompile(`(?i)^delete\s+(.+?)\s+characters?\b`)
	deleteWordsRe = regexp.MustCompile(`(?i)^delete\s+(.+?)\s+words?\b`)
)

// Keyboard performs the input injection for the built-in handlers.
type Keyboard interface {
	Type(text string) error
	DeleteChars(n int) error
	DeleteWords(n int) error
}

// Announcer queues a spoken line. Implementations must not block.
type Announcer interface {
	Say(text string)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, command string) action.Result
}

type Router struct {
	keyboard   Keyboard
	announcer  Announcer
	dispatcher Dispatcher
	debounce   *Debouncer
	logger     *log.Logger
}

func New(kb Keyboard, announcer Announcer, dispatcher Dispatcher, debounce *Debouncer, logger *log.Logger) *Router {
	if debounce == nil {
		debounce = NewDebouncer(DefaultWindow, DefaultMaxEntries)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Router{
		keyboard:   kb,
		announcer:  announcer,
		dispatcher: dispatcher,
		debounce:   debounce,
		logger:     logger.With("component", "router"),
	}
}

// Route always returns a normalized result and never panics.
func (r *Router) Route(ctx context.Context, command string) (res action.Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Router panic", "command", command, "panic", p)
			res = action.Result{Action: action.Respond, Answer: "Something went wrong."}.Normalize()
		}
	}()

	command = strings.TrimSpace(command)

	if m := typeRe.FindStringSubmatch(command); m != nil {
		return r.typeText(strings.TrimSpace(m[1]))
	}
	if m := deleteCharsRe.FindStringSubmatch(command); m != nil {
		if n, ok := ParseNumber(m[1]); ok && n > 0 {
			return r.deleteChars(n)
		}
		r.logger.Debug("Unparsed count, falling back to AI", "count", m[1])
	}
	if m := deleteWordsRe.FindStringSubmatch(command); m != nil {
		if n, ok := ParseNumber(m[1]); ok && n > 0 {
			return r.deleteWords(n)
		}
		r.logger.Debug("Unparsed count, falling back to AI", "count", m[1])
	}

	if r.dispatcher == nil {
		return action.Result{Action: action.Respond, Answer: "I can't help with that."}.Normalize()
	}
	return r.dispatcher.Dispatch(ctx, command).Normalize()
}

func (r *Router) typeText(text string) action.Result {
	res := action.Result{
		Action:  action.Type,
		Params:  map[string]any{"text": text},
		Handled: true,
	}
	if !r.debounce.Allow(action.Type + "\x00" + normalize(text)) {
		res.Answer = "Already typed: " + text
		return res
	}

	r.announce("Typing " + text + " now")
	if err := r.keyboard.Type(text); err != nil {
		r.logger.Warn("Type failed", "err", err)
		res.Answer = "Sorry, I couldn't type that."
		return res
	}
	res.Answer = "Typed: " + text
	return res
}

func (r *Router) deleteChars(n int) action.Result {
	res := action.Result{
		Action:  action.DeleteChars,
		Params:  map[string]any{"count": n},
		Handled: true,
	}
	if !r.debounce.Allow(action.DeleteChars + "\x00" + strconv.Itoa(n)) {
		res.Answer = fmt.Sprintf("Already deleted %d characters.", n)
		return res
	}

	r.announce(fmt.Sprintf("Deleting %d characters now", n))
	if err := r.keyboard.DeleteChars(n); err != nil {
		r.logger.Warn("Delete characters failed", "count", n, "err", err)
		res.Answer = "Sorry, I couldn't delete that."
		return res
	}
	res.Answer = fmt.Sprintf("Deleted %d character%s.", n, plural(n))
	return res
}

func (r *Router) deleteWords(n int) action.Result {
	res := action.Result{
		Action:  action.DeleteWords,
		Params:  map[string]any{"count": n},
		Handled: true,
	}
	if !r.debounce.Allow(action.DeleteWords + "\x00" + strconv.Itoa(n)) {
		res.Answer = fmt.Sprintf("Already deleted %d words.", n)
		return res
	}

	r.announce(fmt.Sprintf("Deleting %d words now", n))
	if err := r.keyboard.DeleteWords(n); err != nil {
		r.logger.Warn("Delete words failed", "count", n, "err", err)
		res.Answer = "Sorry, I couldn't delete that."
		return res
	}
	res.Answer = fmt.Sprintf("Deleted %d word%s.", n, plural(n))
	return res
}

// announce hands the line to the announcer on its own goroutine so a slow
// or failing speech channel never delays the effector.
func (r *Router) announce(text string) {
	if r.announcer == nil {
		return
	}
	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Debug("Announcement failed", "panic", p)
			}
		}()
		r.announcer.Say(text)
	}()
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
