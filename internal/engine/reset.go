package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Epoch is the daily state of a user: fresh once today's reset has run.
type Epoch int

const (
	EpochStale Epoch = iota
	EpochFresh
)

func (e Epoch) String() string {
	if e == EpochFresh {
		return "fresh"
	}
	return "stale"
}

// StartOfDay is local midnight in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DayOf is the calendar day of t in t's location, as UTC midnight. Used for date columns.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func EpochOf(lastRefresh, now time.Time) Epoch {
	if lastRefresh.Before(StartOfDay(now)) {
		return EpochStale
	}
	return EpochFresh
}

// ResetIfDue rolls the user into today's epoch. It reports whether a reset happened.
func (s *Service) ResetIfDue(ctx context.Context, userID uint64, now time.Time) (bool, error) {
	if userID == 0 {
		return false, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	advanced := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st SystemState
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&st).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrMissingSystemState, userID)
			}
			return err
		}

		if EpochOf(st.LastRefresh, now) == EpochFresh {
			return nil
		}
		if err := advanceEpoch(tx, userID, now); err != nil {
			return err
		}
		advanced = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if advanced {
		s.Log.Info("daily reset", "user_id", userID, "day", StartOfDay(now).Format(time.DateOnly))
	}
	return advanced, nil
}

// advanceEpoch archives yesterday's goals, zeroes them, clears task penalties
// and stamps the refresh. Runs inside the caller's transaction.
func advanceEpoch(tx *gorm.DB, userID uint64, now time.Time) error {
	var goals []UserGoal
	if err := tx.Where("user_id = ?", userID).Order("id asc").Find(&goals).Error; err != nil {
		return err
	}

	if len(goals) > 0 {
		yesterday := DayOf(StartOfDay(now).AddDate(0, 0, -1))
		snap := make([]UserMetric, 0, len(goals))
		for _, g := range goals {
			snap = append(snap, UserMetric{
				UserID:   userID,
				Date:     yesterday,
				GoalType: g.GoalType,
				Value:    g.CurrentValue,
				Unit:     g.Unit,
			})
		}
		if err := tx.Create(&snap).Error; err != nil {
			return err
		}
		if err := tx.Model(&UserGoal{}).
			Where("user_id = ?", userID).
			Update("current_value", 0).Error; err != nil {
			return err
		}
	}

	if err := tx.Model(&UserTask{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"ignores": 0,
			"status":  StatusPending,
		}).Error; err != nil {
		return err
	}

	return tx.Model(&SystemState{}).
		Where("user_id = ?", userID).
		Update("last_refresh", now).Error
}
