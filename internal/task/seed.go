package task

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed tasks.yaml
var seedYAML []byte

// SeedTasks returns the built-in catalog, positions assigned in file order.
func SeedTasks() ([]Task, error) {
	return ParseTasks(seedYAML)
}

func ParseTasks(raw []byte) ([]Task, error) {
	var tasks []Task
	if err := yaml.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].Position = i
		if tasks[i].TimeGate == "" {
			tasks[i].TimeGate = Anytime
		}
	}
	return tasks, nil
}

// Seed validates the tasks and inserts the ones not yet present.
// Existing rows are left untouched.
func Seed(ctx context.Context, db *gorm.DB, tasks []Task) (int64, error) {
	if _, err := NewCatalog(tasks); err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&tasks)
	return res.RowsAffected, res.Error
}
