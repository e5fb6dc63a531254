package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Action string

const (
	ActionComplete Action = "complete"
	ActionDismiss  Action = "dismiss"
	ActionIgnore   Action = "ignore"
)

func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "complete", "completed":
		return ActionComplete, nil
	case "dismiss":
		return ActionDismiss, nil
	case "ignore":
		return ActionIgnore, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidAction, s)
}

// ApplyStatus records a user's action on a task and updates their state for it.
// History, task state and goal progress change together or not at all.
func (s *Service) ApplyStatus(ctx context.Context, userID uint64, taskID string, action Action, now time.Time) error {
	switch action {
	case ActionComplete, ActionDismiss, ActionIgnore:
	default:
		return fmt.Errorf("%w %q", ErrInvalidAction, action)
	}
	if userID == 0 || strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("%w: user id and task id required", ErrInvalidInput)
	}

	t, ok := s.Catalog.Get(taskID)
	if !ok {
		return fmt.Errorf("%w: task %q", ErrNotFound, taskID)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ut UserTask
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND task_id = ?", userID, taskID).
			First(&ut).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %q for user %d", ErrNotFound, taskID, userID)
			}
			return err
		}

		h := TaskHistory{UserID: userID, TaskID: taskID, Action: action, CreatedAt: now}
		if err := tx.Create(&h).Error; err != nil {
			return err
		}

		var updates map[string]any
		switch action {
		case ActionComplete:
			// no goal row for the category means nothing to accumulate
			if err := tx.Model(&UserGoal{}).
				Where("user_id = ? AND goal_type = ?", userID, t.Category).
				Update("current_value", gorm.Expr("current_value + ?", t.RewardValue())).Error; err != nil {
				return err
			}
			// completion gating keys off the timestamp, so the status goes back to pending
			updates = map[string]any{"status": StatusPending, "last_completion": now}
		case ActionIgnore:
			updates = map[string]any{"status": StatusIgnore, "last_dismissal": now, "ignores": ut.Ignores + 1}
		case ActionDismiss:
			updates = map[string]any{"status": StatusDismiss, "last_dismissal": now}
		}

		return tx.Model(&UserTask{}).Where("id = ?", ut.ID).Updates(updates).Error
	})
}
