package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

// SMTPConfig is the subset of service configuration the alerter needs.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Sender     string
	Recipients []string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// ReportAlerter mails moderators when a high-severity report is filed.
type ReportAlerter struct {
	cfg    SMTPConfig
	logger *logger.Logger
	d      dialer
}

func NewReportAlerter(cfg SMTPConfig, log *logger.Logger) (*ReportAlerter, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.Sender == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}
	if len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("at least one moderation alert recipient must be configured")
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.Port == 465 {
		d.SSL = true
	}

	return &ReportAlerter{cfg: cfg, logger: log.Named("ReportAlerter"), d: d}, nil
}

func (a *ReportAlerter) SendReportAlert(ctx context.Context, r *domain.Report) error {
	m := a.buildMessage(r)

	done := make(chan error, 1)
	go func() {
		done <- a.d.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		a.logger.Warn("Report alert cancelled or timed out", zap.String("report_id", r.ID), zap.Error(ctx.Err()))
		return fmt.Errorf("report alert cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			a.logger.Error("Failed to send report alert", zap.String("report_id", r.ID), zap.Strings("to", a.cfg.Recipients), zap.Error(err))
			return fmt.Errorf("failed to send report alert: %w", err)
		}
	}

	a.logger.Info("Report alert sent", zap.String("report_id", r.ID), zap.Strings("to", a.cfg.Recipients))
	return nil
}

func alertSubject(r *domain.Report) string {
	return fmt.Sprintf("[%s] %s report on %s %s", strings.ToUpper(string(r.Severity)), r.Reason.Label(), r.TargetType, r.TargetID)
}

func (a *ReportAlerter) buildMessage(r *domain.Report) *gomail.Message {
	target := r.TargetID
	if r.TargetDisplayName != "" {
		target = fmt.Sprintf("%s (%s)", r.TargetDisplayName, r.TargetID)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Report ID: %s\n", r.ID)
	fmt.Fprintf(&text, "Target: %s %s\n", r.TargetType, target)
	fmt.Fprintf(&text, "Reason: %s\n", r.Reason.Label())
	fmt.Fprintf(&text, "Reporter: %s\n", r.ReporterID)
	fmt.Fprintf(&text, "Filed at: %s\n", r.CreatedAt.Format(time.RFC3339))
	if r.Description != "" {
		fmt.Fprintf(&text, "\n%s\n", r.Description)
	}

	htmlBody := fmt.Sprintf(
		"<h3>%s</h3><p><b>Target:</b> %s %s<br><b>Reporter:</b> %s<br><b>Filed at:</b> %s<br><b>Report ID:</b> %s</p><p>%s</p>",
		html.EscapeString(r.Reason.Label()),
		html.EscapeString(string(r.TargetType)), html.EscapeString(target),
		html.EscapeString(r.ReporterID),
		r.CreatedAt.Format(time.RFC3339),
		html.EscapeString(r.ID),
		html.EscapeString(r.Description),
	)

	m := gomail.NewMessage()
	m.SetHeader("From", a.cfg.Sender)
	m.SetHeader("To", a.cfg.Recipients...)
	m.SetHeader("Subject", alertSubject(r))
	m.SetBody("text/html", htmlBody)
	m.AddAlternative("text/plain", text.String())
	return m
}
