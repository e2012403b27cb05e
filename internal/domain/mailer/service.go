package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	apperrors "github.com/yanqian/meeting-notes/pkg/errors"
)

var optionalSettings = []string{"SMTP_PORT", "SMTP_SECURE", "SMTP_STARTTLS", "EMAIL_FROM"}

// Service dispatches summaries by email.
type Service interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// Sender delivers one message through a mail transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type service struct {
	cfg    Config
	sender Sender
	logger *slog.Logger
}

// NewService is a wire provider for the mailer domain.
func NewService(cfg Config, sender Sender, logger *slog.Logger) Service {
	return &service{cfg: cfg, sender: sender, logger: logger.With("component", "mailer.service")}
}

func (s *service) Send(ctx context.Context, req Request) (Response, error) {
	if len(s.cfg.MissingSettings) > 0 || s.sender == nil {
		return Response{}, apperrors.Wrap(apperrors.CodeConfigMissing, notConfiguredMessage(s.cfg.MissingSettings), nil)
	}
	if len(req.Recipients) == 0 {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "at least one recipient is required", nil)
	}

	msg := Message{
		From:    s.cfg.From,
		To:      req.Recipients,
		Subject: req.Subject,
		HTML:    FormatHTML(req.Body),
		Text:    req.Body,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("send email failed", "host", s.cfg.Host, "recipients", len(req.Recipients), "error", err)
		return Response{}, apperrors.Wrap(apperrors.CodeTransport, "Failed to send email", err)
	}

	s.logger.Info("email sent", "recipients", len(req.Recipients))
	return Response{OK: true}, nil
}

func notConfiguredMessage(missing []string) string {
	if len(missing) == 0 {
		missing = []string{"SMTP_HOST", "SMTP_USER", "SMTP_PASS"}
	}
	optional := make([]string, 0, len(optionalSettings))
	for _, name := range optionalSettings {
		if !slices.Contains(missing, name) {
			optional = append(optional, name)
		}
	}
	return fmt.Sprintf("SMTP not configured. Please set %s (optional: %s)", strings.Join(missing, ", "), strings.Join(optional, ", "))
}
