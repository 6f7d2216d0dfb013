package tracker

import (
	"regexp"
	"strings"

	"github.com/abelbrown/slaytrack/internal/bus"
)

// Counter names, as stored. These match the config keys the upstream
// RuneLite plugin used, so an imported database reads naturally.
const (
	CounterTasks       = "taskCount"
	CounterSlaughter   = "slaughterCount"
	CounterExpeditious = "expeditiousCount"
	CounterCannon      = "cannonBreakCount"
)

// Kind tags one recognized message shape. The rule set is closed: there is
// no runtime registration.
type Kind int

const (
	// KindTaskComplete matches slayer task completion messages.
	KindTaskComplete Kind = iota
	// KindSlaughter matches the bracelet of slaughter consumption message.
	KindSlaughter
	// KindExpeditious matches the expeditious bracelet consumption message.
	KindExpeditious
	// KindCannonBreak matches the cannon breakage message.
	KindCannonBreak
)

// Rule maps one message shape to the counter it increments, the notice it
// emits, and the display category it refreshes.
type Rule struct {
	Kind     Kind
	Counter  string
	Notice   string // fmt verb receives the new counter value
	Category bus.Category
}

// rules is the fixed evaluation order: task completion first, then item
// consumption, then equipment breakage. The shapes are mutually exclusive by
// construction; the order only matters for determinism.
var rules = []Rule{
	{
		Kind:     KindTaskComplete,
		Counter:  CounterTasks,
		Notice:   "Slayer task completed! Total tasks: %d",
		Category: bus.CategoryTasks,
	},
	{
		Kind:     KindSlaughter,
		Counter:  CounterSlaughter,
		Notice:   "Bracelet of Slaughter used! Total used: %d",
		Category: bus.CategoryBracelets,
	},
	{
		Kind:     KindExpeditious,
		Counter:  CounterExpeditious,
		Notice:   "Expeditious Bracelet used! Total used: %d",
		Category: bus.CategoryBracelets,
	},
	{
		Kind:     KindCannonBreak,
		Counter:  CounterCannon,
		Notice:   "Cannon broken! Total breaks: %d",
		Category: bus.CategoryCannon,
	},
}

// Recognized message literals, exact post-tag-stripping text.
const (
	slaughterMessage   = "Your bracelet of slaughter prevents your slayer count from decreasing. It then crumbles to dust."
	expeditiousMessage = "Your expeditious bracelet helps you progress your slayer task faster. It then crumbles to dust."
	cannonBreakMessage = "Your cannon has broken!"
)

// taskCompletePrefix and taskCompleteMarker gate the structural regex: the
// message must start with the prefix and mention a slayer master somewhere.
const (
	taskCompletePrefix = "You've completed"
	taskCompleteMarker = "slayer master"
)

// taskCompleteRe is the numeric-completion shape of task messages. The
// captured task and point totals are informational only; the counter always
// advances by one per qualifying message.
var taskCompleteRe = regexp.MustCompile(`You've completed (?:at least )?(?P<tasks>[\d,]+) (?:Wilderness )?tasks?(?: and received \d+ points, giving you a total of (?P<points>[\d,]+)| and reached the maximum amount of Slayer points \((?P<points2>[\d,]+)\))?`)

// matches reports whether a normalized message satisfies the rule's shape.
func (r Rule) matches(msg string) bool {
	switch r.Kind {
	case KindTaskComplete:
		return matchesTaskComplete(msg)
	case KindSlaughter:
		return msg == slaughterMessage
	case KindExpeditious:
		return msg == expeditiousMessage
	case KindCannonBreak:
		return msg == cannonBreakMessage
	default:
		return false
	}
}

func matchesTaskComplete(msg string) bool {
	if !strings.HasPrefix(msg, taskCompletePrefix) {
		return false
	}
	if !strings.Contains(strings.ToLower(msg), taskCompleteMarker) {
		return false
	}
	return taskCompleteRe.MatchString(msg)
}

// reportedTaskTotal extracts the task total embedded in a completion message,
// for logging only. Returns the raw captured text ("" when absent).
func reportedTaskTotal(msg string) string {
	m := taskCompleteRe.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	return m[taskCompleteRe.SubexpIndex("tasks")]
}
