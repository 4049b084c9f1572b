package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/despesas-be/internal/amqp"
	"github.com/isdelr/despesas-be/internal/api"
	"github.com/isdelr/despesas-be/internal/auth"
	"github.com/isdelr/despesas-be/internal/database"
	"github.com/isdelr/despesas-be/internal/monitoring"
	"github.com/isdelr/despesas-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	// Set up database
	if err := database.Migrate(cfg.DatabasePath); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Optional audit fan-out
	var publisher services.AuditPublisher
	if cfg.AMQPURL != "" {
		p, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer p.Close()
		publisher = p
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("Publishing audit entries to AMQP")
	}

	// Set up services
	userService := services.NewUserService(db, auth.NewPasswordHasher(cfg.BcryptCost))
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db)
	auditService := services.NewAuditService(db, publisher)

	// Set up and run the background stats reporter
	statsReporter, err := monitoring.NewStatsReporter(db, cfg.StatsSchedule)
	if err != nil {
		return fmt.Errorf("failed to initialize stats reporter: %w", err)
	}
	statsReporter.Run()

	router := api.NewRouter(api.Dependencies{
		DB:                 db,
		Tokens:             tokens,
		Users:              userService,
		Categories:         categoryService,
		Expenses:           expenseService,
		Audit:              auditService,
		Stats:              statsReporter,
		CORSOrigins:        cfg.CORSOrigins,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info().Msg("Shutting down server...")
	case err := <-serverErr:
		statsReporter.Stop()
		return fmt.Errorf("ListenAndServe: %w", err)
	}

	statsReporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}
