package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"nudge/internal/engine"
	"nudge/internal/task"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	DB *gorm.DB
}

type GoalProgress struct {
	GoalType    task.Category `json:"goalType"`
	Consumption int           `json:"consumption"`
	Target      int           `json:"target"`
	Progress    int           `json:"progress"`
}

type Rates struct {
	DismissalRate  int `json:"dismissalRate"`
	CompletionRate int `json:"completionRate"`
	IgnoreRate     int `json:"ignoreRate"`
}

type Today struct {
	Date             string         `json:"date"`
	Goals            []GoalProgress `json:"goals"`
	TaskHistoryRates Rates          `json:"taskHistoryRates"`
}

// Today reports goal progress since the last reset and today's action rates.
func (s *Service) Today(ctx context.Context, userID uint64, now time.Time) (Today, error) {
	start := engine.StartOfDay(now)
	out := Today{Date: start.Format(time.DateOnly), Goals: []GoalProgress{}}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sg, err := superGoals(tx, userID)
		if err != nil {
			return err
		}

		var goals []engine.UserGoal
		if err := tx.Where("user_id = ?", userID).Order("id asc").Find(&goals).Error; err != nil {
			return err
		}
		for _, g := range goals {
			target := sg.Target(g.GoalType)
			out.Goals = append(out.Goals, GoalProgress{
				GoalType:    g.GoalType,
				Consumption: g.CurrentValue,
				Target:      target,
				Progress:    percent(g.CurrentValue, target),
			})
		}

		var counts []struct {
			Action engine.Action
			Count  int64
		}
		if err := tx.Model(&engine.TaskHistory{}).
			Select("action, count(*) as count").
			Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, start.AddDate(0, 0, 1)).
			Group("action").
			Scan(&counts).Error; err != nil {
			return err
		}
		out.TaskHistoryRates = rates(counts)
		return nil
	})
	return out, err
}

func rates(counts []struct {
	Action engine.Action
	Count  int64
}) Rates {
	var total, dismiss, complete, ignore int64
	for _, c := range counts {
		total += c.Count
		switch c.Action {
		case engine.ActionDismiss:
			dismiss = c.Count
		case engine.ActionComplete:
			complete = c.Count
		case engine.ActionIgnore:
			ignore = c.Count
		}
	}
	if total == 0 {
		return Rates{}
	}
	pct := func(n int64) int { return int(math.Round(float64(n) / float64(total) * 100)) }
	return Rates{DismissalRate: pct(dismiss), CompletionRate: pct(complete), IgnoreRate: pct(ignore)}
}

type DayGoal struct {
	Type        task.Category `json:"type"`
	Progress    string        `json:"progress"`
	Consumption int           `json:"consumption"`
}

type Day struct {
	Date     string    `json:"date"`
	Progress int       `json:"progress"`
	Goals    []DayGoal `json:"goals"`
}

type HistoryPage struct {
	Data         []Day `json:"data"`
	TotalEntries int   `json:"totalEntries"`
	TotalPages   int   `json:"totalPages"`
	Page         int   `json:"page"`
	PerPage      int   `json:"perPage"`
}

// History pages through archived daily metrics, newest day first.
// An empty categories list means all categories.
func (s *Service) History(ctx context.Context, userID uint64, page, perPage int, categories []task.Category) (HistoryPage, error) {
	if page < 1 || perPage < 1 {
		return HistoryPage{}, fmt.Errorf("%w: page and perPage must be >= 1", ErrInvalidInput)
	}
	for _, c := range categories {
		if !c.Valid() {
			return HistoryPage{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
		}
	}

	out := HistoryPage{Data: []Day{}, Page: page, PerPage: perPage}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sg, err := superGoals(tx, userID)
		if err != nil {
			return err
		}

		scope := func(db *gorm.DB) *gorm.DB {
			db = db.Model(&engine.UserMetric{}).Where("user_id = ?", userID)
			if len(categories) > 0 {
				names := make([]string, 0, len(categories))
				for _, c := range categories {
					names = append(names, string(c))
				}
				db = db.Where("goal_type = ANY(?)", pq.Array(names))
			}
			return db
		}

		var totalDates int64
		if err := tx.Scopes(scope).Distinct("date").Count(&totalDates).Error; err != nil {
			return err
		}
		out.TotalPages = int(math.Ceil(float64(totalDates) / float64(perPage)))

		var dates []time.Time
		if err := tx.Scopes(scope).
			Distinct("date").
			Order("date desc").
			Limit(perPage).
			Offset((page - 1) * perPage).
			Pluck("date", &dates).Error; err != nil {
			return err
		}
		if len(dates) == 0 {
			return nil
		}

		var rows []engine.UserMetric
		if err := tx.Scopes(scope).
			Where("date >= ? AND date <= ?", dates[len(dates)-1], dates[0]).
			Order("date desc, id asc").
			Find(&rows).Error; err != nil {
			return err
		}

		out.Data = groupDays(dates, rows, sg)
		out.TotalEntries = len(out.Data)
		return nil
	})
	return out, err
}

func groupDays(dates []time.Time, rows []engine.UserMetric, sg engine.SuperGoals) []Day {
	type key struct {
		date string
		cat  task.Category
	}
	sums := map[key]int{}
	order := map[string][]task.Category{}
	for _, r := range rows {
		k := key{r.Date.Format(time.DateOnly), r.GoalType}
		if _, seen := sums[k]; !seen {
			order[k.date] = append(order[k.date], r.GoalType)
		}
		sums[k] += r.Value
	}

	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		ds := d.Format(time.DateOnly)
		day := Day{Date: ds, Goals: []DayGoal{}}
		total := 0
		for _, c := range order[ds] {
			v := sums[key{ds, c}]
			p := percent(v, sg.Target(c))
			total += p
			day.Goals = append(day.Goals, DayGoal{Type: c, Progress: fmt.Sprintf("%d%%", p), Consumption: v})
		}
		if len(day.Goals) > 0 {
			day.Progress = int(math.Round(float64(total) / float64(len(day.Goals))))
		}
		days = append(days, day)
	}
	return days
}

// percent is progress toward target, capped at 100. Targets that are not positive give 0.
func percent(value, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(float64(value)/float64(target)*100)))
}

func superGoals(tx *gorm.DB, userID uint64) (engine.SuperGoals, error) {
	var sg engine.SuperGoals
	if err := tx.Where("user_id = ?", userID).First(&sg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sg, fmt.Errorf("%w: super goals for user %d", ErrNotFound, userID)
		}
		return sg, err
	}
	return sg, nil
}
