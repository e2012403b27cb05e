//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/meeting-notes/internal/bootstrap"
	"github.com/yanqian/meeting-notes/internal/domain/mailer"
	"github.com/yanqian/meeting-notes/internal/domain/summarizer"
	"github.com/yanqian/meeting-notes/internal/infra/config"
	httpiface "github.com/yanqian/meeting-notes/internal/interface/http"
	"github.com/yanqian/meeting-notes/pkg/logger"
	"github.com/yanqian/meeting-notes/pkg/validation"
)

var summarizerSet = wire.NewSet(
	provideSummaryConfig,
	provideChatClient,
	summarizer.NewService,
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		summarizerSet,
		provideMailerConfig,
		provideMailSender,
		mailer.NewService,
		validation.New,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}

func initializeSummarizer() (summarizer.Service, error) {
	wire.Build(
		config.Load,
		logger.New,
		summarizerSet,
	)
	return nil, nil
}
