package engine

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nudge/internal/task"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusIgnore   Status = "ignore"
	StatusDismiss  Status = "dismiss"
	StatusComplete Status = "complete"
)

// SuperGoals are the user's personal daily targets. One row per user.
type SuperGoals struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID    uint64    `gorm:"uniqueIndex;not null" json:"-"`
	Hydration int       `gorm:"not null;default:2400" json:"hydration"`
	Movement  int       `gorm:"not null;default:8000" json:"movement"`
	Sleep     int       `gorm:"not null;default:8" json:"sleep"`
	Screen    int       `gorm:"not null;default:120" json:"screen"`
	Mood      int       `gorm:"not null;default:0" json:"mood"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (g *SuperGoals) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// DefaultSuperGoals applies when a user has no SuperGoals row.
func DefaultSuperGoals() SuperGoals {
	return SuperGoals{Hydration: 2400, Movement: 8000, Sleep: 8, Screen: 120, Mood: 0}
}

// Target returns the goal for a category.
func (g SuperGoals) Target(c task.Category) int {
	switch c {
	case task.Hydration:
		return g.Hydration
	case task.Movement:
		return g.Movement
	case task.Sleep:
		return g.Sleep
	case task.Screen:
		return g.Screen
	case task.Mood:
		return g.Mood
	}
	return 0
}

// UserTask is the transient, daily-scoped interaction state of one user with one task.
type UserTask struct {
	ID             uint64     `gorm:"primaryKey"`
	UserID         uint64     `gorm:"uniqueIndex:uq_user_tasks_user_task;not null"`
	TaskID         string     `gorm:"uniqueIndex:uq_user_tasks_user_task;size:256;not null"`
	Ignores        int        `gorm:"not null;default:0"`
	Status         Status     `gorm:"type:text;not null;default:'pending'"`
	LastDismissal  *time.Time
	LastCompletion *time.Time
	CreatedAt      time.Time
}

func (ut UserTask) Interaction() Interaction {
	return Interaction{
		Status:         ut.Status,
		Ignores:        ut.Ignores,
		LastDismissal:  ut.LastDismissal,
		LastCompletion: ut.LastCompletion,
	}
}

// TaskHistory is append-only.
type TaskHistory struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"index;not null"`
	TaskID    string    `gorm:"size:256;not null"`
	Action    Action    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// UserGoal accumulates progress for one category since the last daily reset.
type UserGoal struct {
	ID           uint64        `gorm:"primaryKey"`
	UserID       uint64        `gorm:"uniqueIndex:uq_user_goals_user_type;not null"`
	GoalType     task.Category `gorm:"uniqueIndex:uq_user_goals_user_type;type:text;not null"`
	CurrentValue int           `gorm:"not null;default:0"`
	Unit         string        `gorm:"type:text;not null"`
	CreatedAt    time.Time
}

// UserMetric is a day's archived goal value.
type UserMetric struct {
	ID        uint64        `gorm:"primaryKey"`
	UserID    uint64        `gorm:"index;not null"`
	Date      time.Time     `gorm:"type:date;not null"`
	GoalType  task.Category `gorm:"type:text;not null"`
	Value     int           `gorm:"not null"`
	Unit      string        `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// SystemState tracks the daily epoch of one user.
type SystemState struct {
	UserID      uint64    `gorm:"primaryKey;autoIncrement:false"`
	LastRefresh time.Time `gorm:"not null"`
}
