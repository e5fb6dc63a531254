package engine

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"nudge/internal/task"
)

type Scored struct {
	ID    string    `json:"id"`
	Score float64   `json:"score"`
	Base  task.Task `json:"base"`
}

// snapshotTx gives Recommend one consistent view of goals, tasks and targets.
var snapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Recommend returns up to count tasks for the user, best first.
func (s *Service) Recommend(ctx context.Context, userID uint64, count int, now time.Time) ([]Scored, error) {
	if count <= 0 {
		return []Scored{}, nil
	}

	var (
		goals     []UserGoal
		userTasks []UserTask
		targets   = DefaultSuperGoals()
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Order("id asc").Find(&goals).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Order("id asc").Find(&userTasks).Error; err != nil {
			return err
		}
		var sg SuperGoals
		err := tx.Where("user_id = ?", userID).First(&sg).Error
		switch {
		case err == nil:
			targets = sg
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return nil
	}, snapshotTx)
	if err != nil {
		return nil, err
	}

	states := make(map[string]Interaction, len(userTasks))
	for _, ut := range userTasks {
		states[ut.TaskID] = ut.Interaction()
	}

	return rank(SelectCandidates(s.Catalog, states, now), MetricsFromGoals(goals), targets, count, now), nil
}

func rank(cands []Candidate, m Metrics, g SuperGoals, count int, now time.Time) []Scored {
	out := make([]Scored, 0, len(cands))
	for _, c := range cands {
		out = append(out, Scored{
			ID:    c.Task.ID,
			Score: ComputeScore(c.Task, c.State, m, g, now),
			Base:  c.Task,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > count {
		out = out[:count]
	}
	return out
}
