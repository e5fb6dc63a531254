package engine

import "time"

const (
	IgnoreWindow     = 2 * time.Hour
	DismissWindow    = 24 * time.Hour
	CompletionWindow = 2 * time.Hour
)

// Interaction is a user's daily-scoped state for one task.
// The zero value is a task the user never touched.
type Interaction struct {
	Status         Status
	Ignores        int
	LastDismissal  *time.Time
	LastCompletion *time.Time
}

// Gates are the cool-downs active for a task at a given instant.
type Gates struct {
	Ignored   bool
	Dismissed bool
	Completed bool
}

func (g Gates) Open() bool {
	return !g.Ignored && !g.Dismissed && !g.Completed
}

func (s Interaction) Gates(now time.Time) Gates {
	return Gates{
		Ignored:   s.Status == StatusIgnore && s.Ignores > 0 && within(s.LastDismissal, now, IgnoreWindow),
		Dismissed: s.Status == StatusDismiss && within(s.LastDismissal, now, DismissWindow),
		Completed: within(s.LastCompletion, now, CompletionWindow),
	}
}

func within(at *time.Time, now time.Time, d time.Duration) bool {
	if at == nil {
		return false
	}
	return now.Sub(*at) <= d
}
