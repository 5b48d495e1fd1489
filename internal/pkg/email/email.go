package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for rendering and sending emails
type EmailService interface {
	RenderAttendanceWarning(data AttendanceWarningData) (string, error)
	SendHTML(to, subject, htmlBody string) error
	Enabled() bool
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	backoff   time.Duration
	sendMail  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		backoff:   time.Second,
		sendMail:  smtp.SendMail,
	}, nil
}

// AttendanceWarningRow is one flagged day in a warning letter.
type AttendanceWarningRow struct {
	Date         string
	FirstIn      string
	LastOut      string
	HoursPresent string
	Note         string
	IsLate       bool
	IsEarlyExit  bool
}

type AttendanceWarningData struct {
	EmployeeName string
	OfficeHours  string
	Violations   []AttendanceWarningRow
}

// RenderAttendanceWarning renders the warning letter body
func (s *emailServiceImpl) RenderAttendanceWarning(data AttendanceWarningData) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "attendance_warning.html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

// Enabled reports whether an SMTP server is configured
func (s *emailServiceImpl) Enabled() bool {
	return s.cfg.Host != ""
}

func (s *emailServiceImpl) SendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if !s.Enabled() {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sendMail(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// exponential backoff: 1s, 2s, 4s
		if attempt < maxRetries {
			time.Sleep(s.backoff << (attempt - 1))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
