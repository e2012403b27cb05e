package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/meeting-notes/internal/domain/mailer"
	"github.com/yanqian/meeting-notes/internal/domain/summarizer"
	"github.com/yanqian/meeting-notes/internal/infra/config"
	apperrors "github.com/yanqian/meeting-notes/pkg/errors"
	"github.com/yanqian/meeting-notes/pkg/validation"
)

func TestRouter_SummarizeFallback(t *testing.T) {
	server := newRouterUnderTest(t, routerDeps{})

	recorder := performRequest(server, "/api/summarize", `{"transcript":"We agreed on scope. Alice drafts the plan.","prompt":"x"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got summarizer.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "fallback-local", got.Model)
	require.True(t, strings.HasPrefix(got.Summary, "Instruction: x"))
	require.Contains(t, got.Summary, "- Alice drafts the plan.")
	require.NotContains(t, recorder.Body.String(), "tokenUsage")
}

func TestRouter_SummarizeValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
		wantForm   bool
	}{
		{name: "empty transcript", body: `{"transcript":"","prompt":"x"}`, wantFields: []string{"transcript"}},
		{name: "both missing", body: `{}`, wantFields: []string{"prompt", "transcript"}},
		{name: "wrong type", body: `{"transcript":42,"prompt":"x"}`, wantFields: []string{"transcript"}},
		{name: "not an object", body: `"hello"`, wantForm: true},
		{name: "malformed json", body: `{"transcript":`, wantForm: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubSummarizer{}
			server := newRouterUnderTest(t, routerDeps{summarizer: svc})

			recorder := performRequest(server, "/api/summarize", tt.body)
			require.Equal(t, http.StatusBadRequest, recorder.Code)

			body := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, "Invalid input", body.Error)
			require.NotNil(t, body.Details)
			if tt.wantForm {
				require.NotEmpty(t, body.Details.FormErrors)
			}
			for _, field := range tt.wantFields {
				require.Contains(t, body.Details.FieldErrors, field)
			}
			require.Zero(t, svc.calls)
		})
	}
}

func TestRouter_SummarizeFailureIsGeneric(t *testing.T) {
	svc := &stubSummarizer{
		summarizeFn: func(ctx context.Context, req summarizer.Request) (summarizer.Response, error) {
			return summarizer.Response{}, apperrors.Wrap(apperrors.CodeLLM, "Failed to generate summary", errors.New("401 invalid api key sk-123"))
		},
	}
	server := newRouterUnderTest(t, routerDeps{summarizer: svc})

	recorder := performRequest(server, "/api/summarize", `{"transcript":"t","prompt":"p"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	body := decodeErrorBody(t, recorder.Body.Bytes())
	require.Contains(t, body.Error, "Failed to generate")
	require.NotContains(t, recorder.Body.String(), "sk-123")
	require.Nil(t, body.Details)
}

func TestRouter_SummarizeUnexpectedError(t *testing.T) {
	svc := &stubSummarizer{
		summarizeFn: func(ctx context.Context, req summarizer.Request) (summarizer.Response, error) {
			return summarizer.Response{}, errors.New("boom")
		},
	}
	server := newRouterUnderTest(t, routerDeps{summarizer: svc})

	recorder := performRequest(server, "/api/summarize", `{"transcript":"t","prompt":"p"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Equal(t, "Failed to generate summary", decodeErrorBody(t, recorder.Body.Bytes()).Error)
}

func TestRouter_SendEmailWithoutSMTP(t *testing.T) {
	sender := &stubSender{}
	server := newRouterUnderTest(t, routerDeps{sender: sender})

	recorder := performRequest(server, "/api/send-email", `{"recipients":["a@example.com"],"subject":"Notes","body":"- item"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeErrorBody(t, recorder.Body.Bytes())
	for _, name := range []string{"SMTP_HOST", "SMTP_USER", "SMTP_PASS"} {
		require.Contains(t, body.Error, name)
	}
	require.Nil(t, body.Details)
	require.Zero(t, sender.calls)
}

func TestRouter_SendEmailValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields map[string]string
	}{
		{
			name:       "invalid recipient",
			body:       `{"recipients":["not-an-email"],"subject":"s","body":"b"}`,
			wantFields: map[string]string{"recipients": "Invalid email"},
		},
		{
			name:       "no recipients",
			body:       `{"recipients":[],"subject":"s","body":"b"}`,
			wantFields: map[string]string{"recipients": "At least one recipient"},
		},
		{
			name: "everything missing",
			body: `{}`,
			wantFields: map[string]string{
				"recipients": "Recipients is required",
				"subject":    "Subject is required",
				"body":       "Body is required",
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sender := &stubSender{}
			server := newRouterUnderTest(t, routerDeps{sender: sender, smtpConfigured: true})

			recorder := performRequest(server, "/api/send-email", tt.body)
			require.Equal(t, http.StatusBadRequest, recorder.Code)

			body := decodeErrorBody(t, recorder.Body.Bytes())
			require.NotNil(t, body.Details)
			for field, message := range tt.wantFields {
				require.Equal(t, []string{message}, body.Details.FieldErrors[field])
			}
			require.Zero(t, sender.calls)
		})
	}
}

func TestRouter_SendEmailSuccess(t *testing.T) {
	sender := &stubSender{}
	server := newRouterUnderTest(t, routerDeps{sender: sender, smtpConfigured: true})

	recorder := performRequest(server, "/api/send-email", `{"recipients":["a@example.com","b@example.com"],"subject":"Notes","body":"Hi <team>\n\n- ship"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"ok":true}`, recorder.Body.String())

	require.Equal(t, 1, sender.calls)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, sender.last.To)
	require.Equal(t, "<p>Hi &lt;team&gt;</p>\n<p><ul><li>ship</li></ul></p>", sender.last.HTML)
}

func TestRouter_SendEmailTransportFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("535 5.7.8 bad credentials for bot@example.com")}
	server := newRouterUnderTest(t, routerDeps{sender: sender, smtpConfigured: true})

	recorder := performRequest(server, "/api/send-email", `{"recipients":["a@example.com"],"subject":"s","body":"b"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Equal(t, "Failed to send email", decodeErrorBody(t, recorder.Body.Bytes()).Error)
	require.NotContains(t, recorder.Body.String(), "bad credentials")
}

func TestRouter_BodyTooLarge(t *testing.T) {
	server := newRouterUnderTest(t, routerDeps{maxBody: 64})

	body := `{"transcript":"` + strings.Repeat("a", 256) + `","prompt":"x"}`
	recorder := performRequest(server, "/api/summarize", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
	require.Equal(t, "Request body too large", decodeErrorBody(t, recorder.Body.Bytes()).Error)
}

func TestRouter_Health(t *testing.T) {
	server := newRouterUnderTest(t, routerDeps{smtpConfigured: true})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","llm":"fallback-local","smtp":true}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	server := newRouterUnderTest(t, routerDeps{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, routerDeps{})

	req := httptest.NewRequest(http.MethodOptions, "/api/summarize", nil)
	req.Header.Set("Origin", "https://notes.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>notes</html>"), 0o600))
	server := newRouterUnderTest(t, routerDeps{staticDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "notes")

	rec = performRequest(server, "/unknown", `{}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Not found", decodeErrorBody(t, rec.Body.Bytes()).Error)
}

func TestResolveOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    string
	}{
		{name: "no list allows all", origin: "https://a.example.com", want: "*"},
		{name: "wildcard entry", origin: "https://a.example.com", allowed: []string{"*"}, want: "*"},
		{name: "matching origin", origin: "https://B.example.com", allowed: []string{"https://a.example.com", "https://b.example.com"}, want: "https://B.example.com"},
		{name: "unknown origin", origin: "https://evil.example.com", allowed: []string{"https://a.example.com"}, want: "https://a.example.com"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, resolveOrigin(tt.origin, tt.allowed))
		})
	}
}

type routerDeps struct {
	summarizer     summarizer.Service
	sender         *stubSender
	smtpConfigured bool
	maxBody        int64
	staticDir      string
}

func performRequest(server *http.Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, deps routerDeps) *http.Server {
	t.Helper()
	logger := newTestLogger()

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			MaxBodyBytes: deps.maxBody,
			StaticDir:    deps.staticDir,
		},
		LLM: config.LLMConfig{Provider: config.ProviderGroq},
	}
	if deps.smtpConfigured {
		cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "bot@example.com", Password: "secret", From: "bot@example.com"}
	}

	summarySvc := deps.summarizer
	if summarySvc == nil {
		summarySvc = summarizer.NewService(summarizer.Config{Model: "unused"}, nil, logger)
	}
	var sender mailer.Sender
	if deps.sender != nil {
		sender = deps.sender
	}
	mailerSvc := mailer.NewService(mailer.Config{
		Host:            cfg.SMTP.Host,
		User:            cfg.SMTP.User,
		Password:        cfg.SMTP.Password,
		From:            cfg.SMTP.From,
		MissingSettings: cfg.SMTP.MissingSettings(),
	}, sender, logger)

	handler := NewHandler(cfg, summarySvc, mailerSvc, validation.New(), logger)
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubSummarizer struct {
	summarizeFn func(ctx context.Context, req summarizer.Request) (summarizer.Response, error)
	calls       int
}

func (s *stubSummarizer) Summarize(ctx context.Context, req summarizer.Request) (summarizer.Response, error) {
	s.calls++
	if s.summarizeFn != nil {
		return s.summarizeFn(ctx, req)
	}
	return summarizer.Response{}, nil
}

type stubSender struct {
	calls int
	last  mailer.Message
	err   error
}

func (s *stubSender) Send(_ context.Context, msg mailer.Message) error {
	s.calls++
	s.last = msg
	return s.err
}

type errorBody struct {
	Error   string            `json:"error"`
	Details *validation.Error `json:"details"`
}

func decodeErrorBody(t *testing.T, raw []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
