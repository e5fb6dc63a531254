package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"nudge/internal/auth"
	"nudge/internal/engine"
	"nudge/internal/logger"
	"nudge/internal/task"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

type Service struct {
	DB      *gorm.DB
	Catalog *task.Catalog
	Log     *logger.Logger
}

func NewService(db *gorm.DB, catalog *task.Catalog, baseLog *logger.Logger) *Service {
	return &Service{DB: db, Catalog: catalog, Log: baseLog.With("service", "Account")}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     *string
}

// Register creates the user and provisions their engine state atomically.
func (s *Service) Register(ctx context.Context, in RegisterInput, now time.Time) (auth.User, error) {
	email := auth.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") || len(in.Password) < 8 {
		return auth.User{}, ErrInvalidInput
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return auth.User{}, err
	}

	u := auth.User{Email: email, Name: in.Name, PasswordHash: hash, CreatedAt: now}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		return Provision(tx, u.ID, s.Catalog, now)
	})
	if err != nil {
		return auth.User{}, err
	}

	s.Log.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (auth.User, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return auth.User{}, ErrInvalidInput
	}

	var u auth.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.User{}, ErrInvalidCredentials
		}
		return auth.User{}, err
	}
	if !auth.ComparePassword(u.PasswordHash, password) {
		return auth.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) SuperGoals(ctx context.Context, userID uint64) (engine.SuperGoals, error) {
	var sg engine.SuperGoals
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&sg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sg, fmt.Errorf("%w: super goals for user %d", ErrNotFound, userID)
		}
		return sg, err
	}
	return sg, nil
}

// SuperGoalsPatch updates only the targets that are set.
type SuperGoalsPatch struct {
	Hydration *int `json:"hydration"`
	Movement  *int `json:"movement"`
	Sleep     *int `json:"sleep"`
	Screen    *int `json:"screen"`
	Mood      *int `json:"mood"`
}

func (p SuperGoalsPatch) validate() error {
	for _, v := range []*int{p.Hydration, p.Movement, p.Sleep, p.Screen} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: targets must not be negative", ErrInvalidInput)
		}
	}
	if p.Mood != nil && (*p.Mood < 1 || *p.Mood > 5) {
		return fmt.Errorf("%w: mood must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}

func (s *Service) UpdateSuperGoals(ctx context.Context, userID uint64, p SuperGoalsPatch) (engine.SuperGoals, error) {
	if err := p.validate(); err != nil {
		return engine.SuperGoals{}, err
	}

	var out engine.SuperGoals
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sg, err := (&Service{DB: tx}).SuperGoals(ctx, userID)
		if err != nil {
			return err
		}
		set := func(dst *int, v *int) {
			if v != nil {
				*dst = *v
			}
		}
		set(&sg.Hydration, p.Hydration)
		set(&sg.Movement, p.Movement)
		set(&sg.Sleep, p.Sleep)
		set(&sg.Screen, p.Screen)
		set(&sg.Mood, p.Mood)

		if err := tx.Save(&sg).Error; err != nil {
			return err
		}
		out = sg
		return nil
	})
	return out, err
}

type GoalProgress struct {
	Type     task.Category `json:"type"`
	Progress string        `json:"progress"`
}

type Profile struct {
	ID        uint64         `json:"id"`
	Email     string         `json:"email"`
	Name      *string        `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Goals     []GoalProgress `json:"goals"`
}

func (s *Service) Profile(ctx context.Context, userID uint64) (Profile, error) {
	var p Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u auth.User
		if err := tx.Where("id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}
		var goals []engine.UserGoal
		if err := tx.Where("user_id = ?", userID).Order("id asc").Find(&goals).Error; err != nil {
			return err
		}

		p = Profile{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt, Goals: make([]GoalProgress, 0, len(goals))}
		for _, g := range goals {
			p.Goals = append(p.Goals, GoalProgress{Type: g.GoalType, Progress: fmt.Sprintf("%d %s", g.CurrentValue, g.Unit)})
		}
		return nil
	})
	return p, err
}
