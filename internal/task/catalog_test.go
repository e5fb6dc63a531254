package task_test

import (
	"context"
	"errors"
	"testing"

	"nudge/internal/task"
	"nudge/internal/testutil"
)

func ref(s string) *string { return &s }

func family() []task.Task {
	return []task.Task{
		{ID: "water", Title: "Water", Category: task.Hydration, ImpactWeight: 4, EffortMin: 5, TimeGate: task.Anytime,
			IsMain: true, AlternativeTask: ref("fruit"), MicroTask: ref("sip")},
		{ID: "fruit", Title: "Fruit", Category: task.Hydration, ImpactWeight: 3, EffortMin: 3, TimeGate: task.Anytime},
		{ID: "sip", Title: "Sip", Category: task.Hydration, ImpactWeight: 2, EffortMin: 1, TimeGate: task.Anytime},
	}
}

func TestNewCatalog_Valid(t *testing.T) {
	c, err := task.NewCatalog(family())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if c.Len() != 3 || len(c.Mains()) != 1 {
		t.Fatalf("len = %d, mains = %d", c.Len(), len(c.Mains()))
	}
	main := c.Mains()[0]
	if alt, ok := c.Alternative(main); !ok || alt.ID != "fruit" {
		t.Fatalf("alternative = %v, %v", alt.ID, ok)
	}
	if micro, ok := c.Micro(main); !ok || micro.ID != "sip" {
		t.Fatalf("micro = %v, %v", micro.ID, ok)
	}
	if _, ok := c.Micro(c.All()[1]); ok {
		t.Fatalf("substitute should have no micro task")
	}
	if _, ok := c.Get("nope"); ok {
		t.Fatalf("unexpected task")
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func([]task.Task) []task.Task
	}{
		{"empty id", func(ts []task.Task) []task.Task { ts[1].ID = ""; return ts }},
		{"duplicate id", func(ts []task.Task) []task.Task { ts[2].ID = "fruit"; return ts }},
		{"unknown category", func(ts []task.Task) []task.Task { ts[0].Category = "posture"; return ts }},
		{"unknown time gate", func(ts []task.Task) []task.Task { ts[1].TimeGate = "midnight"; return ts }},
		{"zero impact", func(ts []task.Task) []task.Task { ts[1].ImpactWeight = 0; return ts }},
		{"negative effort", func(ts []task.Task) []task.Task { ts[2].EffortMin = -1; return ts }},
		{"missing reference", func(ts []task.Task) []task.Task { ts[0].MicroTask = ref("gulp"); return ts }},
		{"substitute with reference", func(ts []task.Task) []task.Task { ts[1].MicroTask = ref("sip"); return ts }},
		{"reference to main", func(ts []task.Task) []task.Task {
			ts[1].IsMain = true
			return ts
		}},
		{"cross category", func(ts []task.Task) []task.Task { ts[2].Category = task.Mood; return ts }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := task.NewCatalog(tc.mutate(family()))
			if !errors.Is(err, task.ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestSeedTasks(t *testing.T) {
	tasks, err := task.SeedTasks()
	if err != nil {
		t.Fatalf("seed tasks: %v", err)
	}
	c, err := task.NewCatalog(tasks)
	if err != nil {
		t.Fatalf("built-in catalog invalid: %v", err)
	}
	if c.Len() != 15 || len(c.Mains()) != 5 {
		t.Fatalf("len = %d, mains = %d", c.Len(), len(c.Mains()))
	}

	seen := map[task.Category]bool{}
	for _, m := range c.Mains() {
		if seen[m.Category] {
			t.Fatalf("two families for %s", m.Category)
		}
		seen[m.Category] = true
		if m.RewardValue() <= 0 {
			t.Fatalf("%s has no reward", m.ID)
		}
	}
	for i, tk := range tasks {
		if tk.Position != i {
			t.Fatalf("%s position = %d, want %d", tk.ID, tk.Position, i)
		}
	}
}

func TestParseTasks_DefaultsGate(t *testing.T) {
	tasks, err := task.ParseTasks([]byte("- id: a\n  title: A\n  category: mood\n  impactWeight: 1\n  effortMin: 1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tasks) != 1 || tasks[0].TimeGate != task.Anytime || tasks[0].Reward != nil {
		t.Fatalf("tasks = %+v", tasks)
	}
	if _, err := task.ParseTasks([]byte("id: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSeedAndLoad(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()

	c, err := task.Load(ctx, gdb)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tasks, _ := task.SeedTasks()
	all := c.All()
	if len(all) != len(tasks) {
		t.Fatalf("loaded %d tasks, want %d", len(all), len(tasks))
	}
	for i := range tasks {
		if all[i].ID != tasks[i].ID {
			t.Fatalf("order differs at %d: %s vs %s", i, all[i].ID, tasks[i].ID)
		}
	}
	got, _ := c.Get("hydration-0.5l")
	if got.RewardValue() != 500 || !got.IsMain || got.MicroTask == nil || *got.MicroTask != "hydration-3-sips" {
		t.Fatalf("hydration main = %+v", got)
	}

	// seeding again leaves the table alone
	n, err := task.Seed(ctx, gdb, tasks)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 0 {
		t.Fatalf("reseed inserted %d rows", n)
	}

	bad := family()
	bad[0].MicroTask = ref("missing")
	if _, err := task.Seed(ctx, gdb, bad); !errors.Is(err, task.ErrInvalidCatalog) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
