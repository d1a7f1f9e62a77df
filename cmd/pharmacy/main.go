package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"helio/pharmacy/internal/api"
	"helio/pharmacy/internal/auth"
	"helio/pharmacy/internal/config"
	"helio/pharmacy/internal/database"
	"helio/pharmacy/internal/inventory"
	"helio/pharmacy/internal/logging"
	"helio/pharmacy/internal/metrics"
	"helio/pharmacy/internal/migrations"
	"helio/pharmacy/internal/prescriptions"
	"helio/pharmacy/internal/requests"
	"helio/pharmacy/internal/seed"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "pharmacy",
		Short: "Pharmacy inventory and patient request API",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the SQLite schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			db, err := openSQLite(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info().Str("dsn", cfg.DatabaseDSN).Msg("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the medicine catalog and demo data into the SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != "sqlite" {
				return errors.New("seed needs STORAGE_DRIVER=sqlite; the memory store is seeded on serve")
			}
			st, err := newStores(cfg, log)
			if err != nil {
				return err
			}
			defer st.close()
			return st.seed(cmd.Context(), cfg, log)
		},
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.IsDev()), nil
}

func openSQLite(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type stores struct {
	db            *sqlx.DB
	inventory     *inventory.Service
	requests      *requests.Service
	prescriptions *prescriptions.Service
}

func newStores(cfg *config.Config, log zerolog.Logger) (*stores, error) {
	var (
		invRepo inventory.Repository
		reqRepo requests.Repository
		rxRepo  prescriptions.Repository
		db      *sqlx.DB
	)
	switch cfg.StorageDriver {
	case "sqlite":
		var err error
		if db, err = openSQLite(cfg); err != nil {
			return nil, err
		}
		invRepo = inventory.NewSQLiteRepository(db)
		reqRepo = requests.NewSQLiteRepository(db)
		rxRepo = prescriptions.NewSQLiteRepository(db)
	default:
		invRepo = inventory.NewMemoryRepository()
		reqRepo = requests.NewMemoryRepository()
		rxRepo = prescriptions.NewMemoryRepository()
	}
	return &stores{
		db:            db,
		inventory:     inventory.NewService(invRepo, inventory.WithLogger(log), inventory.WithConfirmTTL(cfg.DeleteConfirmTTL)),
		requests:      requests.NewService(reqRepo, requests.WithLogger(log)),
		prescriptions: prescriptions.NewService(rxRepo, prescriptions.WithLogger(log)),
	}, nil
}

func (s *stores) seed(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if _, err := seed.LoadMedicinesFile(ctx, s.inventory, cfg.SeedCSV, log); err != nil {
		return err
	}
	return seed.Demo(ctx, s.requests, s.prescriptions, log)
}

func (s *stores) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func runServer() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	st, err := newStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := st.seed(ctx, cfg, log); err != nil {
		log.Warn().Err(err).Msg("seeding skipped")
	}

	users := auth.NewDirectory()
	if _, err := users.Register(cfg.DemoName, cfg.DemoEmail, cfg.DemoPassword, auth.RolePharmacist); err != nil {
		return fmt.Errorf("register demo account: %w", err)
	}

	m := metrics.New()
	if err := m.Register(metrics.NewInventoryCollector(st.inventory, cfg.ExpiryWindow(), log)); err != nil {
		return fmt.Errorf("register inventory metrics: %w", err)
	}

	handler := api.New(api.Deps{
		Inventory:     st.inventory,
		Requests:      st.requests,
		Prescriptions: st.prescriptions,
		Users:         users,
		Tokens:        auth.NewIssuer(cfg.Secret),
		Metrics:       m,
		Logger:        log,
		ExpiryWindow:  cfg.ExpiryWindow(),
		AutoLogin:     cfg.AutoLogin,
		DemoEmail:     cfg.DemoEmail,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("pharmacy server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
