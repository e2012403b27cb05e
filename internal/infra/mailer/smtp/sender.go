// Package smtp delivers mailer messages over SMTP with go-smtp.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/yanqian/meeting-notes/internal/domain/mailer"
	"github.com/yanqian/meeting-notes/pkg/util"
)

const defaultTimeout = 30 * time.Second

// Sender implements mailer.Sender. Each Send opens a fresh connection; there
// are no retries.
type Sender struct {
	cfg    mailer.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewSender builds an SMTP sender from cfg.
func NewSender(cfg mailer.Config, logger *slog.Logger) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Sender{cfg: cfg, logger: logger.With("component", "smtp.sender"), now: util.NowUTC}
}

// Send delivers msg to every recipient in a single SMTP transaction.
func (s *Sender) Send(ctx context.Context, msg mailer.Message) error {
	if len(msg.To) == 0 {
		return errors.New("smtp: no recipients")
	}
	from, err := envelopeAddress(msg.From)
	if err != nil {
		return fmt.Errorf("smtp: invalid from address: %w", err)
	}
	data, err := BuildMessage(msg, s.now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	client, stop, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer stop()
	defer client.Close()

	if s.cfg.User != "" {
		if err := client.Auth(sasl.NewPlainClient("", s.cfg.User, s.cfg.Password)); err != nil {
			return fmt.Errorf("smtp auth: %w", timeoutCause(ctx, err))
		}
	}
	if err := client.Mail(from, nil); err != nil {
		return fmt.Errorf("smtp mail from: %w", timeoutCause(ctx, err))
	}
	for _, rcpt := range msg.To {
		to, err := envelopeAddress(rcpt)
		if err != nil {
			return fmt.Errorf("smtp: invalid recipient %q: %w", rcpt, err)
		}
		if err := client.Rcpt(to, nil); err != nil {
			return fmt.Errorf("smtp rcpt to %s: %w", to, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp finish data: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Warn("smtp quit failed", "error", err)
	}
	return nil
}

// dial connects with implicit TLS when Secure is set, otherwise upgrades with
// STARTTLS unless it is disabled. go-smtp arms its own per-command deadlines,
// so the connection is also closed once ctx expires; that covers the greeting
// and STARTTLS exchange. The returned stop func detaches the watcher.
func (s *Sender) dial(ctx context.Context) (*smtp.Client, func() bool, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	tlsConfig := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.Secure {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	var client *smtp.Client
	if !s.cfg.Secure && s.cfg.StartTLS {
		client, err = smtp.NewClientStartTLS(conn, tlsConfig)
		if err != nil {
			stop()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("smtp starttls: %w", timeoutCause(ctx, err))
		}
	} else {
		client = smtp.NewClient(conn)
	}
	client.CommandTimeout = s.cfg.Timeout
	client.SubmissionTimeout = s.cfg.Timeout
	return client, stop, nil
}

// timeoutCause prefers the context error once the deadline has closed the
// connection, since the raw read error only says the socket was closed.
func timeoutCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}
