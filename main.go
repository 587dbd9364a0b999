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

	"rentbroker/internal/config"
	"rentbroker/internal/db"
	"rentbroker/internal/logger"
	"rentbroker/internal/router"
	"rentbroker/internal/services"
	"rentbroker/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.InitLogger(cfg.LogLevel, cfg.LogPretty)
	cfg.LogWarnings(log)

	rootCmd := &cobra.Command{
		Use:           "rentbroker",
		Short:         "Rental broker API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(cfg, log),
		migrateCmd(cfg, log),
		createAdminCmd(cfg, log),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func openDB(cfg config.Config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.DBUrl == "" {
		return nil, errors.New("DB_URL is not set")
	}
	return db.InitDB(cfg.DBUrl, log)
}

func serveCmd(cfg config.Config, log zerolog.Logger) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close(database)

			if migrate {
				if err := db.RunMigrations(database, log); err != nil {
					return err
				}
			}

			server := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router.SetupRouter(database, cfg, log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Msg("Server listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
				close(serverErr)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErr:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
			}
			log.Info().Msg("Shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Graceful shutdown failed")
				return err
			}

			log.Info().Msg("Server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "run schema migrations before serving")
	return cmd
}

func migrateCmd(cfg config.Config, log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close(database)

			return db.RunMigrations(database, log)
		},
	}
}

func createAdminCmd(cfg config.Config, log zerolog.Logger) *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the first ADMIN account, or grant ADMIN to an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}

			database, err := openDB(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close(database)

			users := services.NewUserService(
				store.NewUserRepository(database),
				store.NewTxManager(database),
				services.NewBcryptHasher(cfg.BcryptCost),
				services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, log),
				log,
			)

			admin, err := users.CreateAdmin(cmd.Context(), email, username, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (id %d) ready\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
