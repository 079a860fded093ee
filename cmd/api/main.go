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
	_ "time/tzdata"

	"clinic-backend/internal/config"
	"clinic-backend/internal/events"
	"clinic-backend/internal/handlers"
	"clinic-backend/internal/jobs"
	"clinic-backend/internal/mailer"
	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/internal/payments"
	"clinic-backend/internal/repository"
	"clinic-backend/internal/routes"
	"clinic-backend/internal/scheduling"
	"clinic-backend/internal/services"
	"clinic-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic-backend",
		Short:         "Clinic management API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createOwnerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// bootstrap loads the settings and opens the database shared by every command.
func bootstrap() (*config.Config, zerolog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, logger, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	db, err := config.ConnectDB(cfg, logger)
	if err != nil {
		return nil, logger, nil, err
	}
	return cfg, logger, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reminder schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			if err := config.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

func createOwnerCmd() *cobra.Command {
	var in models.BootstrapInput
	cmd := &cobra.Command{
		Use:   "create-owner",
		Short: "Add an owner account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(in.Username) < 3 || len(in.Password) < 6 || in.Name == "" {
				return errors.New("username (3+), password (6+) and name are required")
			}
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			auth := services.NewAuthService(
				repository.NewUserRepository(db),
				repository.NewClinicRepository(db),
				nil,
				mailer.NewLogSender(logger),
				services.AuthConfig{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL(), BaseURL: cfg.AppBaseURL},
				logger,
			)
			u, err := auth.CreateOwner(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Owner %q created with id %d.\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "contact email")
	return cmd
}

func runServer() error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	engine := scheduling.NewEngine(scheduling.WithSlots(cfg.ScheduleSlots), scheduling.WithLocation(loc))

	clinicRepo := repository.NewClinicRepository(db)
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	procedureRepo := repository.NewProcedureRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	financialRepo := repository.NewFinancialRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	reportRepo := repository.NewReportRepository(db)

	hub := events.NewHub(logger, cfg.CORSOrigins)
	defer hub.Close()
	publisher := events.Multi{hub}
	var fcm *events.FCMPublisher
	if cfg.FirebaseCredentials != "" {
		fcm, err = events.NewFCMPublisher(ctx, cfg.FirebaseCredentials, userRepo, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("push notifications disabled")
		} else {
			publisher = append(publisher, fcm)
		}
	}

	var mail mailer.Sender = mailer.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	files, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
	if err != nil {
		return err
	}

	var gateway payments.Gateway
	if m := payments.NewMidtrans(cfg.MidtransServerKey, cfg.MidtransEnv); m != nil {
		gateway = m
	}

	authService := services.NewAuthService(userRepo, clinicRepo, files, mail, services.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL(),
		BaseURL:   cfg.AppBaseURL,
	}, logger)
	reminderService := services.NewReminderService(reminderRepo, patientRepo, appointmentRepo, mail, engine, logger)

	h := &handlers.Handler{
		Auth:         authService,
		Clinics:      services.NewClinicService(clinicRepo),
		Users:        services.NewUserService(userRepo, clinicRepo),
		Patients:     services.NewPatientService(patientRepo),
		Procedures:   services.NewProcedureService(procedureRepo, patientRepo, financialRepo, logger),
		Appointments: services.NewAppointmentService(appointmentRepo, patientRepo, procedureRepo, userRepo, engine, publisher, logger),
		Financial:    services.NewFinancialService(financialRepo, patientRepo, procedureRepo, gateway, logger),
		Records:      services.NewRecordService(recordRepo, patientRepo),
		Reminders:    reminderService,
		Reports:      services.NewReportService(reportRepo, clinicRepo, financialRepo, procedureRepo),
	}

	reminderJob, err := jobs.NewReminderJob(reminderService, cfg.ReminderCron, loc, logger)
	if err != nil {
		return err
	}
	reminderJob.Start()
	defer reminderJob.Stop()

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer limiter.Stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := gin.New()
	routes.SetupRoutes(r, routes.Deps{
		Handler:     h,
		Resolver:    authService,
		Streams:     hub,
		Limiter:     limiter,
		Metrics:     middleware.NewMetrics(reg),
		Gatherer:    reg,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   files.Root(),
		Log:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Streams stay open until their clients leave, so close them first.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if fcm != nil {
		fcm.Wait()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
