package engine

import "nudge/internal/task"

// MetricsFromGoals folds goal accumulators into a Metrics snapshot.
// Later rows win when a category repeats.
func MetricsFromGoals(goals []UserGoal) Metrics {
	var m Metrics
	for _, g := range goals {
		v := float64(g.CurrentValue)
		switch g.GoalType {
		case task.Hydration:
			m.WaterMl = v
		case task.Movement:
			m.Steps = v
		case task.Sleep:
			m.SleepHours = v
		case task.Screen:
			m.ScreenTimeMin = v
		case task.Mood:
			m.Mood = v
		}
	}
	return m
}
