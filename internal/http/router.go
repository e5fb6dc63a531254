package http

import (
	"net/http"
	"time"

	"nudge/internal/account"
	"nudge/internal/auth"
	"nudge/internal/config"
	"nudge/internal/engine"
	"nudge/internal/http/handler"
	mw "nudge/internal/http/middleware"
	"nudge/internal/logger"
	"nudge/internal/report"
	"nudge/internal/task"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, catalog *task.Catalog, jwtSvc *auth.JWT, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLog(log.With("component", "http")))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg))
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := func() time.Time { return time.Now().In(loc) }

	count := cfg.RecommendCount
	if count <= 0 {
		count = 4
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	accounts := account.NewService(db, catalog, log)
	ah := &handler.AuthHandler{Accounts: accounts, JWT: jwtSvc, CookieSecure: cfg.CookieSecure, Log: log, Now: now}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{Accounts: accounts, Reports: &report.Service{DB: db}, Log: log, Now: now}
	r.Route("/me", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", me.Me)
		r.Get("/metrics", me.History)
		r.Get("/metrics/today", me.Today)
		r.Get("/super-goals", me.SuperGoals)
		r.Patch("/super-goals", me.UpdateSuperGoals)
	})

	th := &handler.TaskHandler{
		Engine:       engine.NewService(db, catalog, log),
		DefaultCount: count,
		Log:          log,
		Now:          now,
	}
	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/recommend", th.Recommend)
		r.Put("/status", th.UpdateStatus)
	})

	return r
}
