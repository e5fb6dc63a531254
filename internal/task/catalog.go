package task

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrInvalidCatalog = errors.New("invalid task catalog")

// Catalog is the validated task lookup, built once at load time.
// Every substitute reference on a main task resolves to a non-main task of the
// same category, and substitutes carry no references of their own.
type Catalog struct {
	byID  map[string]Task
	order []string
	mains []Task
}

func NewCatalog(tasks []Task) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Task, len(tasks))}

	for _, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: task with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task %q", ErrInvalidCatalog, t.ID)
		}
		if !t.Category.Valid() {
			return nil, fmt.Errorf("%w: task %q has unknown category %q", ErrInvalidCatalog, t.ID, t.Category)
		}
		if !t.TimeGate.Valid() {
			return nil, fmt.Errorf("%w: task %q has unknown time gate %q", ErrInvalidCatalog, t.ID, t.TimeGate)
		}
		if t.ImpactWeight <= 0 {
			return nil, fmt.Errorf("%w: task %q impact weight must be positive", ErrInvalidCatalog, t.ID)
		}
		if t.EffortMin < 0 {
			return nil, fmt.Errorf("%w: task %q effort must not be negative", ErrInvalidCatalog, t.ID)
		}
		c.byID[t.ID] = t
		c.order = append(c.order, t.ID)
	}

	for _, id := range c.order {
		t := c.byID[id]
		if !t.IsMain {
			if t.AlternativeTask != nil || t.MicroTask != nil {
				return nil, fmt.Errorf("%w: substitute %q must not reference other tasks", ErrInvalidCatalog, t.ID)
			}
			continue
		}
		for _, ref := range []*string{t.AlternativeTask, t.MicroTask} {
			if ref == nil {
				continue
			}
			sub, ok := c.byID[*ref]
			switch {
			case !ok:
				return nil, fmt.Errorf("%w: task %q references missing task %q", ErrInvalidCatalog, t.ID, *ref)
			case sub.IsMain:
				return nil, fmt.Errorf("%w: task %q references main task %q", ErrInvalidCatalog, t.ID, *ref)
			case sub.Category != t.Category:
				return nil, fmt.Errorf("%w: task %q references %q of category %s", ErrInvalidCatalog, t.ID, *ref, sub.Category)
			}
		}
		c.mains = append(c.mains, t)
	}

	return c, nil
}

func (c *Catalog) Get(id string) (Task, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Mains returns the main tasks in catalog order.
func (c *Catalog) Mains() []Task {
	return c.mains
}

// All returns every task in catalog order.
func (c *Catalog) All() []Task {
	out := make([]Task, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.order) }

func (c *Catalog) Alternative(main Task) (Task, bool) {
	return c.ref(main.AlternativeTask)
}

func (c *Catalog) Micro(main Task) (Task, bool) {
	return c.ref(main.MicroTask)
}

func (c *Catalog) ref(id *string) (Task, bool) {
	if id == nil {
		return Task{}, false
	}
	return c.Get(*id)
}

// Load reads the tasks table and builds the catalog.
func Load(ctx context.Context, db *gorm.DB) (*Catalog, error) {
	var rows []Task
	if err := db.WithContext(ctx).Order("position asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return NewCatalog(rows)
}
