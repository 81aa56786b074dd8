package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/catalog"
)

// Filter represents a single filtering step applied to catalog entries.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Match(entry *catalog.Entry) bool
}

// Step describes the result of executing a filtering step.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run applies the enabled filters in order and returns the entries left.
func Run(logger *zap.Logger, steps []Filter, entries []*catalog.Entry) ([]*catalog.Entry, []Step) {
	return Apply(logger, steps, entries, func(e *catalog.Entry) *catalog.Entry { return e })
}

// Apply runs the filters over any items that carry a catalog entry. The input
// slice is not modified.
func Apply[T any](logger *zap.Logger, steps []Filter, items []T, entryOf func(T) *catalog.Entry) ([]T, []Step) {
	if logger == nil {
		logger = zap.NewNop()
	}

	current := items
	stats := make([]Step, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next := make([]T, 0, len(current))
		for _, item := range current {
			if step.Match(entryOf(item)) {
				next = append(next, item)
			}
		}

		info := Step{Name: step.Name(), Initial: len(current), Dropped: len(current) - len(next), Left: len(next)}
		logger.Debug("filter step",
			zap.String("name", info.Name),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		stats = append(stats, info)
		current = next
	}

	return current, stats
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
