package main

import (
	"context"
	"log/slog"

	"github.com/yanqian/meeting-notes/internal/domain/mailer"
	"github.com/yanqian/meeting-notes/internal/domain/summarizer"
	"github.com/yanqian/meeting-notes/internal/infra/config"
	"github.com/yanqian/meeting-notes/internal/infra/llm/gemini"
	"github.com/yanqian/meeting-notes/internal/infra/llm/openai"
	"github.com/yanqian/meeting-notes/internal/infra/mailer/smtp"
)

func provideSummaryConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.Summary.Temperature,
		MaxTokens:   cfg.Summary.MaxTokens,
	}
}

// provideChatClient returns a nil client when no API key is configured, which
// selects the heuristic summarizer.
func provideChatClient(cfg *config.Config, logger *slog.Logger) (summarizer.ChatClient, error) {
	if !cfg.LLM.Enabled() {
		logger.Info("llm api key not set, using heuristic summarizer")
		return nil, nil
	}
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(context.Background(), cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	case config.ProviderOpenAI:
		baseURL := cfg.LLM.BaseURL
		if baseURL == "" {
			baseURL = openai.OpenAIBaseURL
		}
		return openai.NewClient(cfg.LLM.APIKey, baseURL, cfg.LLM.Timeout)
	default:
		return openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	}
}

func provideMailerConfig(cfg *config.Config) mailer.Config {
	return mailer.Config{
		Host:            cfg.SMTP.Host,
		Port:            cfg.SMTP.Port,
		Secure:          cfg.SMTP.Secure,
		StartTLS:        cfg.SMTP.StartTLS,
		User:            cfg.SMTP.User,
		Password:        cfg.SMTP.Password,
		From:            cfg.SMTP.From,
		Timeout:         cfg.SMTP.Timeout,
		MissingSettings: cfg.SMTP.MissingSettings(),
	}
}

func provideMailSender(cfg mailer.Config, logger *slog.Logger) mailer.Sender {
	return smtp.NewSender(cfg, logger)
}
