package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/attendance"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/coe"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	JWT        JWTConfig
	Admin      AdminConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	SMTP       SMTPConfig
	Attendance AttendanceConfig
	COE        coe.Layout
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AdminConfig holds the single dashboard login. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether the upload log database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type StorageConfig struct {
	BasePath      string
	RetentionDays int
	PurgeInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type AttendanceConfig struct {
	Thresholds  attendance.Thresholds
	Columns     attendance.ColumnMapping
	OfficeHours string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}
	var err error

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	config.Admin = AdminConfig{
		Username:     getEnv("ADMIN_USERNAME", "admin"),
		PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}

	// Database configuration, optional
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "report_dashboard"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Storage configuration
	retentionDays, err := getEnvInt("STORAGE_RETENTION_DAYS", 90)
	if err != nil {
		return nil, err
	}
	purgeInterval, err := time.ParseDuration(getEnv("STORAGE_PURGE_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_PURGE_INTERVAL: %w", err)
	}

	config.Storage = StorageConfig{
		BasePath:      getEnv("STORAGE_BASE_PATH", "./storage"),
		RetentionDays: retentionDays,
		PurgeInterval: purgeInterval,
	}

	// SMTP configuration, optional
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
		FromName: getEnv("SMTP_FROM_NAME", "Management"),
	}

	if config.Attendance, err = loadAttendance(); err != nil {
		return nil, err
	}
	if config.COE, err = loadCOELayout(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	th := attendance.DefaultThresholds()
	var err error

	clocks := []struct {
		key string
		dst *attendance.TimeOfDay
	}{
		{"ATTENDANCE_LATE_THRESHOLD", &th.LateThreshold},
		{"ATTENDANCE_LUNCH_START", &th.LunchStart},
		{"ATTENDANCE_LUNCH_END", &th.LunchEnd},
		{"ATTENDANCE_EXIT_THRESHOLD", &th.ExitThreshold},
	}
	for _, c := range clocks {
		if *c.dst, err = getEnvClock(c.key, *c.dst); err != nil {
			return AttendanceConfig{}, err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"ATTENDANCE_FULL_DAY_MINUTES", &th.FullDayMinutes},
		{"ATTENDANCE_MAX_LUNCH_MINUTES", &th.MaxLunchMinutes},
		{"ATTENDANCE_MAX_BREAK_MINUTES", &th.MaxBreakMinutes},
		{"ATTENDANCE_MAX_PUNCHES", &th.MaxPunches},
		{"ATTENDANCE_BREAK_GAP_MINUTES", &th.BreakGapMinutes},
	}
	for _, c := range ints {
		if *c.dst, err = getEnvInt(c.key, *c.dst); err != nil {
			return AttendanceConfig{}, err
		}
	}

	return AttendanceConfig{
		Thresholds: th,
		Columns: attendance.ColumnMapping{
			Employee:  getEnv("ATTENDANCE_COLUMN_EMPLOYEE", ""),
			Date:      getEnv("ATTENDANCE_COLUMN_DATE", ""),
			Time:      getEnv("ATTENDANCE_COLUMN_TIME", ""),
			DateTime:  getEnv("ATTENDANCE_COLUMN_DATETIME", ""),
			PunchType: getEnv("ATTENDANCE_COLUMN_PUNCH_TYPE", ""),
		},
		OfficeHours: getEnv("ATTENDANCE_OFFICE_HOURS", "9:30 AM to 5:30 PM"),
	}, nil
}

func loadCOELayout() (coe.Layout, error) {
	layout := coe.DefaultLayout()
	var err error

	columns := []struct {
		key string
		dst *int
	}{
		{"COE_COLUMN_TYPE", &layout.Type},
		{"COE_COLUMN_RECEIVED", &layout.Received},
		{"COE_COLUMN_END", &layout.End},
		{"COE_COLUMN_NET_SALES", &layout.NetSales},
		{"COE_COLUMN_CONSULTANT", &layout.Consultant},
		{"COE_OUTPUT_COLUMNS", &layout.OutputColumns},
	}
	for _, c := range columns {
		if *c.dst, err = getEnvInt(c.key, *c.dst); err != nil {
			return coe.Layout{}, err
		}
	}
	return layout, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Admin.Username == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.Admin.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	if c.Database.Enabled() && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DB_HOST is set")
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("STORAGE_RETENTION_DAYS must not be negative")
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	if err := c.Attendance.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid attendance thresholds: %w", err)
	}

	l := c.COE
	for _, col := range []int{l.Type, l.Received, l.End, l.NetSales, l.Consultant} {
		if col < 0 {
			return fmt.Errorf("COE column positions must not be negative")
		}
	}
	if l.OutputColumns <= 0 {
		return fmt.Errorf("COE_OUTPUT_COLUMNS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvClock(key string, fallback attendance.TimeOfDay) (attendance.TimeOfDay, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	t, err := attendance.ParseTimeOfDay(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}
