package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"nudge/internal/engine"
	"nudge/internal/task"
	"nudge/internal/testutil"
)

var now = time.Date(2025, 9, 28, 15, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, gdb *gorm.DB, userID uint64) {
	t.Helper()
	sg := engine.DefaultSuperGoals()
	sg.UserID = userID
	sg.Mood = 5
	if err := gdb.Create(&sg).Error; err != nil {
		t.Fatalf("super goals: %v", err)
	}
	for _, c := range task.Categories {
		g := engine.UserGoal{UserID: userID, GoalType: c, Unit: c.Unit()}
		if err := gdb.Create(&g).Error; err != nil {
			t.Fatalf("goal: %v", err)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := []struct{ v, target, want int }{
		{0, 2400, 0},
		{1200, 2400, 50},
		{2401, 2400, 100},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
	}
	for _, tc := range cases {
		if got := percent(tc.v, tc.target); got != tc.want {
			t.Fatalf("percent(%d, %d) = %d, want %d", tc.v, tc.target, got, tc.want)
		}
	}
}

func TestToday(t *testing.T) {
	gdb := testutil.DB(t)
	seedUser(t, gdb, 1)
	s := &Service{DB: gdb}

	gdb.Model(&engine.UserGoal{}).Where("user_id = ? AND goal_type = ?", 1, task.Hydration).Update("current_value", 1200)
	gdb.Model(&engine.UserGoal{}).Where("user_id = ? AND goal_type = ?", 1, task.Movement).Update("current_value", 9000)

	history := []engine.TaskHistory{
		{UserID: 1, TaskID: "hydration-0.5l", Action: engine.ActionComplete, CreatedAt: now.Add(-time.Hour)},
		{UserID: 1, TaskID: "movement-2k", Action: engine.ActionComplete, CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: 1, TaskID: "mood-journal-5", Action: engine.ActionIgnore, CreatedAt: now.Add(-3 * time.Hour)},
		{UserID: 1, TaskID: "screen-break-10", Action: engine.ActionDismiss, CreatedAt: now.Add(-4 * time.Hour)},
		// yesterday and another user do not count
		{UserID: 1, TaskID: "screen-break-10", Action: engine.ActionDismiss, CreatedAt: now.Add(-20 * time.Hour)},
		{UserID: 2, TaskID: "screen-break-10", Action: engine.ActionDismiss, CreatedAt: now.Add(-time.Hour)},
	}
	if err := gdb.Create(&history).Error; err != nil {
		t.Fatalf("history: %v", err)
	}

	got, err := s.Today(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if got.Date != "2025-09-28" || len(got.Goals) != 5 {
		t.Fatalf("today = %+v", got)
	}
	if g := got.Goals[0]; g.GoalType != task.Hydration || g.Consumption != 1200 || g.Target != 2400 || g.Progress != 50 {
		t.Fatalf("hydration = %+v", g)
	}
	if g := got.Goals[1]; g.Progress != 100 {
		t.Fatalf("movement should cap at 100: %+v", g)
	}
	want := Rates{DismissalRate: 25, CompletionRate: 50, IgnoreRate: 25}
	if got.TaskHistoryRates != want {
		t.Fatalf("rates = %+v, want %+v", got.TaskHistoryRates, want)
	}
}

func TestToday_NoHistory(t *testing.T) {
	gdb := testutil.DB(t)
	seedUser(t, gdb, 1)

	got, err := (&Service{DB: gdb}).Today(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if got.TaskHistoryRates != (Rates{}) {
		t.Fatalf("rates = %+v", got.TaskHistoryRates)
	}
	if _, err := (&Service{DB: gdb}).Today(context.Background(), 9, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func archive(t *testing.T, gdb *gorm.DB, userID uint64, day string, values map[task.Category]int) {
	t.Helper()
	d, err := time.Parse(time.DateOnly, day)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	for _, c := range task.Categories {
		v, ok := values[c]
		if !ok {
			continue
		}
		m := engine.UserMetric{UserID: userID, Date: d, GoalType: c, Value: v, Unit: c.Unit()}
		if err := gdb.Create(&m).Error; err != nil {
			t.Fatalf("metric: %v", err)
		}
	}
}

func TestHistory_Pages(t *testing.T) {
	gdb := testutil.DB(t)
	seedUser(t, gdb, 1)
	s := &Service{DB: gdb}

	archive(t, gdb, 1, "2025-09-25", map[task.Category]int{task.Hydration: 2400, task.Movement: 4000})
	archive(t, gdb, 1, "2025-09-26", map[task.Category]int{task.Hydration: 600})
	archive(t, gdb, 1, "2025-09-27", map[task.Category]int{task.Hydration: 1200, task.Sleep: 8})
	archive(t, gdb, 2, "2025-09-27", map[task.Category]int{task.Hydration: 99})

	first, err := s.History(context.Background(), 1, 1, 2, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if first.TotalPages != 2 || first.TotalEntries != 2 || len(first.Data) != 2 {
		t.Fatalf("page 1 = %+v", first)
	}
	day := first.Data[0]
	if day.Date != "2025-09-27" || day.Progress != 75 || len(day.Goals) != 2 {
		t.Fatalf("newest day = %+v", day)
	}
	if day.Goals[0].Type != task.Hydration || day.Goals[0].Progress != "50%" || day.Goals[0].Consumption != 1200 {
		t.Fatalf("hydration = %+v", day.Goals[0])
	}
	if first.Data[1].Date != "2025-09-26" {
		t.Fatalf("second day = %+v", first.Data[1])
	}

	second, err := s.History(context.Background(), 1, 2, 2, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(second.Data) != 1 || second.Data[0].Date != "2025-09-25" || second.Data[0].Progress != 75 {
		t.Fatalf("page 2 = %+v", second)
	}

	empty, err := s.History(context.Background(), 1, 5, 2, nil)
	if err != nil || len(empty.Data) != 0 || empty.TotalPages != 2 {
		t.Fatalf("page 5 = %+v, %v", empty, err)
	}
}

func TestHistory_Rejects(t *testing.T) {
	gdb := testutil.DB(t)
	seedUser(t, gdb, 1)
	s := &Service{DB: gdb}

	if _, err := s.History(context.Background(), 1, 0, 10, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("page 0: got %v", err)
	}
	if _, err := s.History(context.Background(), 1, 1, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("perPage 0: got %v", err)
	}
	if _, err := s.History(context.Background(), 1, 1, 10, []task.Category{"posture"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad category: got %v", err)
	}
}

func TestHistory_CategoryFilterPostgres(t *testing.T) {
	gdb := testutil.Tx(t, testutil.PostgresDB(t))
	uid := uint64(time.Now().UnixNano() & 0x7fffffff)
	seedUser(t, gdb, uid)

	archive(t, gdb, uid, "2025-09-26", map[task.Category]int{task.Sleep: 4})
	archive(t, gdb, uid, "2025-09-27", map[task.Category]int{task.Hydration: 1200, task.Sleep: 8})

	got, err := (&Service{DB: gdb}).History(context.Background(), uid, 1, 10, []task.Category{task.Hydration})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got.Data) != 1 || got.TotalPages != 1 {
		t.Fatalf("history = %+v", got)
	}
	if d := got.Data[0]; d.Date != "2025-09-27" || len(d.Goals) != 1 || d.Goals[0].Type != task.Hydration {
		t.Fatalf("day = %+v", d)
	}
}
