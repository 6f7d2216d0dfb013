// Package tracker classifies chat messages and applies counter updates.
//
// Tracker is the write path: one Dispatch call per incoming chat line. It is
// stateless between calls except for the counter store it wraps; every
// message is classified independently.
package tracker

import (
	"fmt"
	"strings"

	"github.com/abelbrown/slaytrack/internal/bus"
	"github.com/abelbrown/slaytrack/internal/chat"
	"github.com/abelbrown/slaytrack/internal/config"
	"github.com/abelbrown/slaytrack/internal/counter"
	"github.com/abelbrown/slaytrack/internal/logging"

	"github.com/dustin/go-humanize"
)

// tasksCommand is the chat command that returns the summary line.
const tasksCommand = "!tasks"

// Notifier receives user-visible confirmation notices. It must not block;
// the tracker treats it as fire-and-forget.
type Notifier func(text string)

// Tracker matches incoming messages against the rule set and increments the
// corresponding counters.
type Tracker struct {
	store  *counter.Store
	cfg    *config.Config
	bus    *bus.Bus
	notify Notifier
}

// New creates a Tracker. The bus and notifier may be nil; the tracker then
// counts without refreshing a display or emitting notices.
func New(store *counter.Store, cfg *config.Config, b *bus.Bus, notify Notifier) *Tracker {
	return &Tracker{
		store:  store,
		cfg:    cfg,
		bus:    b,
		notify: notify,
	}
}

// Dispatch classifies one raw chat message and applies any resulting counter
// update. It never panics and never returns an error: a failure while
// processing one message is logged and the stream keeps flowing.
func (t *Tracker) Dispatch(raw string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Dispatch recovered", "panic", r, "message", raw)
		}
	}()

	msg := chat.Normalize(raw)
	if msg == "" {
		return
	}

	// Each category is tested against the same message; the shapes are
	// mutually exclusive so at most one rule fires in practice.
	for _, r := range rules {
		if !t.enabled(r) {
			continue
		}
		if !r.matches(msg) {
			continue
		}
		t.apply(r, msg)
	}
}

// enabled reports whether the rule's gating toggle is on. A gated-off rule
// is skipped entirely, not evaluated.
func (t *Tracker) enabled(r Rule) bool {
	switch r.Kind {
	case KindSlaughter, KindExpeditious:
		return t.cfg.TrackBracelets
	case KindCannonBreak:
		return t.cfg.TrackCannon
	default:
		return true
	}
}

// apply increments the rule's counter and then fires the side effects.
// The increment is committed before any notification is attempted.
func (t *Tracker) apply(r Rule, msg string) {
	value, err := t.store.Increment(r.Counter)
	if err != nil {
		// Non-fatal: the in-memory value advanced and the next
		// successful write supersedes this one.
		logging.Warn("Counter persisted unreliably", "counter", r.Counter, "error", err)
	}

	if r.Kind == KindTaskComplete {
		logging.Info("Slayer task completed", "count", value, "reported_total", reportedTaskTotal(msg))
	} else {
		logging.Info("Counted event", "counter", r.Counter, "count", value)
	}

	if t.cfg.ShowTaskMessages && t.notify != nil {
		t.notify(fmt.Sprintf(r.Notice, value))
	}
	if t.bus != nil {
		t.bus.Publish(r.Category)
	}
}

// HandleCommand recognizes the !tasks chat command and returns the summary
// line that replaces it. ok is false for anything else.
func (t *Tracker) HandleCommand(msg string) (response string, ok bool) {
	token := strings.TrimSpace(chat.RemoveTags(msg))
	if !strings.EqualFold(token, tasksCommand) {
		return "", false
	}
	return t.Summary(), true
}

// Summary formats the current counts as a single line.
//
// The task segment is always present, thousands-grouped. The bracelet
// segment appears only when bracelet tracking is on and at least one
// bracelet counter is positive; the cannon segment only when cannon tracking
// is on and the counter is positive. Values are read fresh from the store.
func (t *Tracker) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Slayer Tasks Completed: %s", humanize.Comma(t.store.Get(CounterTasks)))

	if t.cfg.TrackBracelets {
		slaughter := t.store.Get(CounterSlaughter)
		expeditious := t.store.Get(CounterExpeditious)
		if slaughter > 0 || expeditious > 0 {
			fmt.Fprintf(&b, " | Bracelets Used - Slaughter: %d, Expeditious: %d", slaughter, expeditious)
		}
	}

	if t.cfg.TrackCannon {
		if breaks := t.store.Get(CounterCannon); breaks > 0 {
			fmt.Fprintf(&b, " | Cannon Breaks: %d", breaks)
		}
	}

	return b.String()
}
