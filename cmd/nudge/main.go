package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"nudge/internal/account"
	"nudge/internal/auth"
	"nudge/internal/config"
	"nudge/internal/db"
	httpx "nudge/internal/http"
	"nudge/internal/logger"
	"nudge/internal/task"
)

func main() {
	root := &cobra.Command{
		Use:           "nudge",
		Short:         "Wellbeing task recommendation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Stderr.WriteString("nudge: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// setup loads config, builds the logger and opens the migrated database.
func setup() (config.Config, *logger.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, err
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return cfg, nil, nil, err
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return cfg, log, nil, err
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, gdb, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, _, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			log.Info("schema up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the built-in task catalog and enroll existing users",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, gdb, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			return seed(cmd.Context(), gdb, log)
		},
	}
}

func seed(ctx context.Context, gdb *gorm.DB, log *logger.Logger) error {
	tasks, err := task.SeedTasks()
	if err != nil {
		return err
	}
	n, err := task.Seed(ctx, gdb, tasks)
	if err != nil {
		return err
	}
	catalog, err := task.Load(ctx, gdb)
	if err != nil {
		return err
	}
	if err := account.EnrollAll(gdb.WithContext(ctx), catalog); err != nil {
		return err
	}
	log.Info("catalog seeded", "inserted", n, "tasks", catalog.Len())
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, gdb, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.SeedOnStart {
				if err := seed(cmd.Context(), gdb, log); err != nil {
					return err
				}
			}

			catalog, err := task.Load(cmd.Context(), gdb)
			if err != nil {
				return err
			}
			if catalog.Len() == 0 {
				log.Warn("task catalog is empty; run `nudge seed`")
			}

			jwtSvc := auth.NewJWT(cfg.JWTSecret)
			r := httpx.NewRouter(cfg, gdb, catalog, jwtSvc, log)

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           r,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			// graceful shutdown
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-ch:
			case err := <-errCh:
				return err
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
