package engine

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nudge/internal/logger"
	"nudge/internal/task"
)

type Service struct {
	DB      *gorm.DB
	Catalog *task.Catalog
	Log     *logger.Logger
}

func NewService(db *gorm.DB, catalog *task.Catalog, baseLog *logger.Logger) *Service {
	return &Service{DB: db, Catalog: catalog, Log: baseLog.With("service", "Engine")}
}

// RecommendForUser runs the daily reset when due, then recommends.
func (s *Service) RecommendForUser(ctx context.Context, userID uint64, count int, now time.Time) ([]Scored, error) {
	if _, err := s.ResetIfDue(ctx, userID, now); err != nil {
		return nil, err
	}
	return s.Recommend(ctx, userID, count, now)
}
