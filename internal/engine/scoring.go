package engine

import (
	"math"
	"time"

	"nudge/internal/task"
)

const (
	urgencyW = 0.5
	impactW  = 0.3
	effortW  = 0.15
	todW     = 0.15
	penaltyW = 0.2
	recencyW = 0.25
)

// Metrics is the user's progress since the last daily reset.
type Metrics struct {
	WaterMl       float64
	Steps         float64
	SleepHours    float64
	ScreenTimeMin float64
	Mood          float64
}

// ComputeScore ranks a task for a user at now. Pure: the clock is only read through now.
func ComputeScore(t task.Task, st Interaction, m Metrics, g SuperGoals, now time.Time) float64 {
	s := urgencyW*Urgency(t.Category, m, g) +
		impactW*float64(t.ImpactWeight) +
		effortW*InverseEffort(t.EffortMin) +
		todW*TimeOfDayFactor(now, t.TimeGate) -
		penaltyW*float64(st.Ignores) -
		recencyW*RecencyPenalty(st.LastCompletion, now)
	return math.Round(s*1e4) / 1e4
}

func Urgency(c task.Category, m Metrics, g SuperGoals) float64 {
	switch c {
	case task.Hydration:
		return shortfall(m.WaterMl, float64(g.Hydration))
	case task.Movement:
		return shortfall(m.Steps, float64(g.Movement))
	case task.Sleep:
		if m.SleepHours < float64(g.Sleep) {
			return 1
		}
		return 0
	case task.Screen:
		if m.ScreenTimeMin > float64(g.Screen) {
			return 1
		}
		return 0
	case task.Mood:
		if m.Mood <= 2 {
			return 1
		}
		return 0.2
	}
	return 0
}

// shortfall is 0 once the goal is met, and for goals that are not positive.
func shortfall(current, goal float64) float64 {
	if current >= goal {
		return 0
	}
	return (goal - current) / goal
}

func InverseEffort(minutes int) float64 {
	m := math.Max(1, float64(minutes))
	return 1 / math.Log2(m+2)
}

// TimeOfDayFactor softly suppresses tasks outside their daypart. Hours are inclusive.
func TimeOfDayFactor(now time.Time, gate task.TimeGate) float64 {
	h := now.Hour()
	var in bool
	switch gate {
	case "", task.Anytime:
		return 1
	case task.Morning:
		in = h >= 5 && h <= 11
	case task.Afternoon:
		in = h >= 12 && h <= 17
	case task.Evening:
		in = h >= 18 && h <= 23
	}
	if in {
		return 1
	}
	return 0.2
}

func RecencyPenalty(lastCompletion *time.Time, now time.Time) float64 {
	if lastCompletion == nil {
		return 0
	}
	mins := now.Sub(*lastCompletion).Minutes()
	switch {
	case mins < 30:
		return 1
	case mins < 60:
		return 0.6
	case mins < 120:
		return 0.3
	}
	return 0
}
