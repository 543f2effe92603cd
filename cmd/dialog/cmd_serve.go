// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDialog/pkg/logging"
	dialog "github.com/AleutianAI/AleutianDialog/services/dialog"
	"github.com/AleutianAI/AleutianDialog/services/dialog/files"
	"github.com/AleutianAI/AleutianDialog/services/dialog/messenger"
	"github.com/AleutianAI/AleutianDialog/services/dialog/nlp"
	"github.com/AleutianAI/AleutianDialog/services/dialog/observability"
	"github.com/AleutianAI/AleutianDialog/services/dialog/routes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/storage"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "dialog",
		Short: "Multi-tenant conversational dialog engine",
		Long: `Dialog runs the Aleutian conversational engine: per-tenant
intent resolution, session state and human-handoff escalation behind
per-messenger webhooks.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the dialog HTTP server",
		Run:   runServe,
	}
)

func runServe(cmd *cobra.Command, args []string) {
	logger, err := logging.New(logging.Config{
		Level:   config.Logging.Level,
		LogDir:  config.Logging.LogDir,
		Service: config.Logging.Service,
		JSON:    config.Logging.JSON,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Close()

	dbCfg := storage.DefaultConfig(config.Storage.Path)
	dbCfg.Logger = logger.Logger
	if config.Storage.InMemory {
		dbCfg = storage.InMemoryConfig()
	}
	db, err := storage.Open(dbCfg)
	if err != nil {
		log.Fatalf("Error opening storage: %v", err)
	}
	defer db.Close()

	intents, err := storage.NewIntentRepository(config.Intents.Dir, logger.Logger)
	if err != nil {
		log.Fatalf("Error loading intents: %v", err)
	}
	if config.Intents.Watch {
		if err := intents.Watch(); err != nil {
			log.Fatalf("Error watching intents: %v", err)
		}
	}
	defer intents.Close()

	configRepo := storage.NewConfigRepository(db)
	issueRepo := storage.NewIssueRepository(db)
	messageRepo := storage.NewMessageRepository(db)
	senderRepo := storage.NewSenderInfoRepository(db)
	sessionRepo := storage.NewSessionRepository(db)

	var nlpService nlp.Service
	switch config.NLP.Provider {
	case "external":
		nlpService = nlp.NewExternalService(config.NLP.BaseURL)
	case "openai":
		nlpService, err = nlp.NewOpenAIService(config.NLP.Model)
		if err != nil {
			log.Fatalf("Error creating OpenAI classifier: %v", err)
		}
	default:
		nlpService = nlp.DefaultService{}
	}

	wsMessenger := messenger.NewWSMessenger(config.DefaultLocale)
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	server, err := dialog.NewBotServer(dialog.Options{
		Logger:   logger.Logger,
		Intents:  intents,
		Configs:  configRepo,
		Issues:   issueRepo,
		Messages: messageRepo,
		Senders:  senderRepo,
		Sessions: sessionRepo,
		Messengers: map[string]messenger.Messenger{
			"web":       messenger.NewWebMessenger(config.DefaultLocale),
			"websocket": wsMessenger,
		},
		NLP:     nlpService,
		Files:   files.NewLocalService(config.Files.Dir),
		Metrics: metrics,
	})
	if err != nil {
		log.Fatalf("Error assembling server: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, routes.Deps{
		Server:      server,
		WSMessenger: wsMessenger,
		Issues:      issueRepo,
		Messages:    messageRepo,
		Configs:     configRepo,
		Intents:     intents,
	})

	httpServer := &http.Server{
		Addr:              config.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("dialog server listening", "addr", config.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
