package db

import (
	"fmt"

	"nudge/internal/auth"
	"nudge/internal/engine"
	"nudge/internal/task"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// Config is shared by the postgres connection and the test databases.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	}
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&task.Task{},
		&engine.SuperGoals{},
		&engine.UserTask{},
		&engine.UserGoal{},
		&engine.UserMetric{},
		&engine.TaskHistory{},
		&engine.SystemState{},
	); err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_tasks_main_position on tasks(is_main, position);`,
		`create index if not exists idx_history_user_created on task_histories(user_id, created_at);`,
		`create index if not exists idx_metrics_user_date on user_metrics(user_id, date desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
