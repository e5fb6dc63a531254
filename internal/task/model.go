package task

import "time"

type Category string

const (
	Hydration Category = "hydration"
	Movement  Category = "movement"
	Sleep     Category = "sleep"
	Screen    Category = "screen"
	Mood      Category = "mood"
)

// Categories in their canonical order.
var Categories = []Category{Hydration, Movement, Sleep, Screen, Mood}

func (c Category) Valid() bool {
	switch c {
	case Hydration, Movement, Sleep, Screen, Mood:
		return true
	}
	return false
}

// Unit is the measure a category's goal accumulates in.
func (c Category) Unit() string {
	switch c {
	case Hydration:
		return "ml"
	case Movement:
		return "steps"
	case Sleep:
		return "hours"
	case Screen:
		return "minutes"
	case Mood:
		return "mood"
	}
	return ""
}

type TimeGate string

const (
	Morning   TimeGate = "morning"
	Afternoon TimeGate = "afternoon"
	Evening   TimeGate = "evening"
	Anytime   TimeGate = "anytime"
)

func (g TimeGate) Valid() bool {
	switch g {
	case Morning, Afternoon, Evening, Anytime, "":
		return true
	}
	return false
}

// Task is a catalog entry. Immutable after seeding.
type Task struct {
	ID           string   `gorm:"primaryKey;size:256" json:"id" yaml:"id"`
	Title        string   `gorm:"not null" json:"title" yaml:"title"`
	Category     Category `gorm:"type:text;index;not null" json:"category" yaml:"category"`
	ImpactWeight int      `gorm:"not null" json:"impactWeight" yaml:"impactWeight"`
	EffortMin    int      `gorm:"not null" json:"effortMin" yaml:"effortMin"`
	TimeGate     TimeGate `gorm:"type:text;not null;default:'anytime'" json:"timeGate" yaml:"timeGate"`

	Reward *int `json:"-" yaml:"reward"`

	IsMain          bool    `gorm:"not null;default:false" json:"-" yaml:"isMain"`
	AlternativeTask *string `json:"-" yaml:"alternativeTask"`
	MicroTask       *string `json:"-" yaml:"microTask"`

	Position  int       `gorm:"not null;default:0" json:"-" yaml:"-"`
	CreatedAt time.Time `json:"-" yaml:"-"`
}

// RewardValue is the amount a completion adds to the category goal.
func (t Task) RewardValue() int {
	if t.Reward == nil {
		return 0
	}
	return *t.Reward
}
