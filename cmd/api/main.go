package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/config"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	appHTTP "github.com/cmlabs-hris/report-dashboard/internal/handler/http"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/cron"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/database"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/email"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/jwt"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/storage"
	"github.com/cmlabs-hris/report-dashboard/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/report-dashboard/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/report-dashboard/internal/service/auth"
	coeService "github.com/cmlabs-hris/report-dashboard/internal/service/coe"
	leadService "github.com/cmlabs-hris/report-dashboard/internal/service/lead"
	uploadService "github.com/cmlabs-hris/report-dashboard/internal/service/upload"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return fmt.Errorf("error opening storage: %w", err)
	}

	// Upload log is optional
	var uploadRepo report.UploadRepository
	if cfg.Database.Enabled() {
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("error connecting to database: %w", err)
		}
		defer db.Close()

		uploadRepo = postgresql.NewUploadRepository(db)
		if err := uploadRepo.EnsureSchema(ctx); err != nil {
			return err
		}
	} else {
		slog.Info("DB_HOST not set, upload log disabled")
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("error loading email templates: %w", err)
	}
	if !emailService.Enabled() {
		slog.Info("SMTP_HOST not set, warning letters can be drafted but not sent")
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	uploadSvc := uploadService.NewUploadService(fileStorage, uploadRepo, cfg.Storage.RetentionDays, time.Now)
	authSvc := serviceAuth.NewAuthService(cfg.Admin, JWTService)
	leadSvc := leadService.NewLeadService(uploadSvc)
	coeSvc := coeService.NewCOEService(cfg.COE, uploadSvc, time.Now)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceService.Options{
		Thresholds:    cfg.Attendance.Thresholds,
		Columns:       cfg.Attendance.Columns,
		OfficeHours:   cfg.Attendance.OfficeHours,
		UploadService: uploadSvc,
		EmailService:  emailService,
		Now:           time.Now,
	})

	scheduler := cron.NewScheduler()
	if err := cron.NewArchiveJobs(uploadSvc).RegisterJobs(scheduler, cfg.Storage.PurgeInterval); err != nil {
		return fmt.Errorf("error registering archive job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg.App, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Lead:       appHTTP.NewLeadHandler(leadSvc),
		COE:        appHTTP.NewCOEHandler(coeSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Upload:     appHTTP.NewUploadHandler(uploadSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
