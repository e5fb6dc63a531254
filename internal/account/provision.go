package account

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nudge/internal/engine"
	"nudge/internal/task"
)

// Provision creates the per-user rows the engine relies on: the daily epoch,
// one goal accumulator per category, default targets and one UserTask per
// catalog task. Runs inside the signup transaction.
func Provision(tx *gorm.DB, userID uint64, catalog *task.Catalog, now time.Time) error {
	if err := tx.Create(&engine.SystemState{UserID: userID, LastRefresh: now}).Error; err != nil {
		return err
	}

	goals := make([]engine.UserGoal, 0, len(task.Categories))
	for _, c := range task.Categories {
		goals = append(goals, engine.UserGoal{UserID: userID, GoalType: c, Unit: c.Unit()})
	}
	if err := tx.Create(&goals).Error; err != nil {
		return err
	}

	sg := engine.DefaultSuperGoals()
	sg.UserID = userID
	if err := tx.Create(&sg).Error; err != nil {
		return err
	}

	return enroll(tx, userID, catalog.All())
}

// EnrollAll gives every existing user a UserTask row for every task they lack.
func EnrollAll(tx *gorm.DB, catalog *task.Catalog) error {
	var userIDs []uint64
	if err := tx.Model(&engine.SystemState{}).Order("user_id asc").Pluck("user_id", &userIDs).Error; err != nil {
		return err
	}
	for _, uid := range userIDs {
		if err := enroll(tx, uid, catalog.All()); err != nil {
			return err
		}
	}
	return nil
}

func enroll(tx *gorm.DB, userID uint64, tasks []task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	rows := make([]engine.UserTask, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, engine.UserTask{UserID: userID, TaskID: t.ID, Status: engine.StatusPending})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}
