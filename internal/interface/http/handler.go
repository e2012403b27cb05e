package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/meeting-notes/internal/domain/mailer"
	"github.com/yanqian/meeting-notes/internal/domain/summarizer"
	"github.com/yanqian/meeting-notes/internal/infra/config"
	apperrors "github.com/yanqian/meeting-notes/pkg/errors"
	"github.com/yanqian/meeting-notes/pkg/validation"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	summarizerSvc summarizer.Service
	mailerSvc     mailer.Service
	validator     *validation.Validator
	health        healthResponse
	logger        *slog.Logger
}

type healthResponse struct {
	Status string `json:"status"`
	LLM    string `json:"llm"`
	SMTP   bool   `json:"smtp"`
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, summarySvc summarizer.Service, mailerSvc mailer.Service, validator *validation.Validator, logger *slog.Logger) *Handler {
	health := healthResponse{Status: "ok", LLM: summarizer.FallbackModel, SMTP: len(cfg.SMTP.MissingSettings()) == 0}
	if cfg.LLM.Enabled() {
		health.LLM = cfg.LLM.Provider
	}
	return &Handler{
		summarizerSvc: summarySvc,
		mailerSvc:     mailerSvc,
		validator:     validator,
		health:        health,
		logger:        logger.With("component", "http.handler"),
	}
}

// Summarize handles POST /api/summarize.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizer.Request
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.summarizerSvc.Summarize(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, h.mapError(err, "Failed to generate summary"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SendEmail handles POST /api/send-email.
func (h *Handler) SendEmail(c *gin.Context) {
	var req mailer.Request
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.mailerSvc.Send(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, h.mapError(err, "Failed to send email"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health reports which integrations are active.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.health)
}

// bind decodes and validates the body, aborting the request on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	err := h.validator.DecodeJSON(c.Request.Body, dst)
	if err == nil {
		return true
	}

	var verr *validation.Error
	switch {
	case errors.Is(err, validation.ErrBodyTooLarge):
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, apperrors.CodeBodyTooLarge, "Request body too large", err))
	case errors.As(err, &verr):
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid input", err).WithDetails(verr))
	default:
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeInternalFailed, "Internal server error", err))
	}
	return false
}

// mapError translates domain errors to HTTP errors. Upstream causes are kept
// for logging only; clients see the public message.
func (h *Handler) mapError(err error, fallback string) *HTTPError {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeInternalFailed, fallback, err)
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeInvalidInput, apperrors.CodeConfigMissing:
		status = http.StatusBadRequest
	}
	message := appErr.Message
	if message == "" || status >= http.StatusInternalServerError {
		message = fallback
	}
	return NewHTTPError(status, appErr.Code, message, err)
}
