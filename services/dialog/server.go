// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dialog assembles the multi-tenant dialog engine: repositories,
// channel adapters, the capability registry and the middleware chain,
// behind one Handle entry point the HTTP surface calls per inbound
// message.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/files"
	"github.com/AleutianAI/AleutianDialog/services/dialog/messenger"
	"github.com/AleutianAI/AleutianDialog/services/dialog/middleware"
	"github.com/AleutianAI/AleutianDialog/services/dialog/nlp"
	"github.com/AleutianAI/AleutianDialog/services/dialog/observability"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/registry"
	"github.com/AleutianAI/AleutianDialog/services/dialog/repository"
	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

// Options configures a BotServer. Repositories and at least one
// messenger are required; everything else has a working default.
type Options struct {
	Logger *slog.Logger

	Intents  repository.IntentRepository
	Configs  repository.ConfigRepository
	Issues   repository.IssueRepository
	Messages repository.MessageRepository
	Senders  repository.SenderInfoRepository
	Sessions session.Repository

	// Messengers maps channel names to adapters.
	Messengers map[string]messenger.Messenger

	NLP        nlp.Service
	Files      files.Service
	Transcoder files.Transcoder
	Metrics    *observability.Metrics

	// Registry overrides merge over the default capabilities.
	PreProcessors  map[string]registry.PreProcessor
	PostProcessors map[string]registry.PostProcessor
	Executors      map[string]registry.Executor

	// StageOverrides merge over the default stack by priority.
	StageOverrides []pipeline.Stage
}

// Result is the outcome of one handled message.
type Result struct {
	Status       int
	Responses    []datatypes.BotResponse
	RawResponses []any
}

// BotServer runs the dialog pipeline. Safe for concurrent use; every
// request gets its own pipeline context.
type BotServer struct {
	logger     *slog.Logger
	chain      *pipeline.Chain
	registry   *registry.Registry
	messengers map[string]messenger.Messenger
	metrics    *observability.Metrics

	intents    repository.IntentRepository
	configs    repository.ConfigRepository
	issues     repository.IssueRepository
	messages   repository.MessageRepository
	senders    repository.SenderInfoRepository
	sessions   session.Repository
	nlp        nlp.Service
	files      files.Service
	transcoder files.Transcoder
}

// NewBotServer assembles a server from opts.
func NewBotServer(opts Options) (*BotServer, error) {
	if opts.Intents == nil || opts.Configs == nil || opts.Issues == nil ||
		opts.Messages == nil || opts.Senders == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("dialog: all repositories are required")
	}
	if len(opts.Messengers) == 0 {
		return nil, fmt.Errorf("dialog: at least one messenger is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nlpService := opts.NLP
	if nlpService == nil {
		nlpService = nlp.DefaultService{}
	}
	fileService := opts.Files
	if fileService == nil {
		fileService = files.NewLocalService("data/files")
	}
	transcoder := opts.Transcoder
	if transcoder == nil {
		transcoder = files.NopTranscoder{}
	}

	chain := middleware.DefaultStack()
	chain.Merge(opts.StageOverrides)

	return &BotServer{
		logger:     logger,
		chain:      chain,
		registry:   registry.New(logger, opts.PreProcessors, opts.PostProcessors, opts.Executors),
		messengers: opts.Messengers,
		metrics:    opts.Metrics,
		intents:    opts.Intents,
		configs:    opts.Configs,
		issues:     opts.Issues,
		messages:   opts.Messages,
		senders:    opts.Senders,
		sessions:   opts.Sessions,
		nlp:        nlpService,
		files:      fileService,
		transcoder: transcoder,
	}, nil
}

// Messenger returns the adapter registered under name.
func (s *BotServer) Messenger(name string) (messenger.Messenger, bool) {
	m, ok := s.messengers[name]
	return m, ok
}

// Stages returns the chain's stages in execution order.
func (s *BotServer) Stages() []pipeline.Stage {
	return s.chain.Stages()
}

// Handle runs one inbound channel payload through the pipeline. A
// pipeline error is logged and answered with whatever responses
// accumulated before the failure: the webhook never surfaces internal
// errors to the channel.
func (s *BotServer) Handle(ctx context.Context, uni, messengerName string, raw any) (*Result, error) {
	m, ok := s.messengers[messengerName]
	if !ok {
		return nil, fmt.Errorf("dialog: unknown messenger %q", messengerName)
	}

	c := pipeline.NewContext(ctx, uni, raw)
	c.Messenger = m
	c.Intents = s.intents
	c.Configs = s.configs
	c.Issues = s.issues
	c.Messages = s.messages
	c.Senders = s.senders
	c.Sessions = s.sessions
	c.NLP = s.nlp
	c.Files = s.files
	c.Transcoder = s.transcoder
	c.Registry = s.registry
	c.Metrics = s.metrics
	c.Logger = s.logger.With("uni", uni, "messenger", messengerName)

	started := time.Now()
	err := s.chain.Run(c)
	if err != nil {
		c.Logger.Error("pipeline run failed", "error", err)
	}
	s.observe(c, messengerName, started, err)

	return &Result{
		Status:       c.Status,
		Responses:    c.Responses,
		RawResponses: c.RawResponses,
	}, nil
}

func (s *BotServer) observe(c *pipeline.Context, messengerName string, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case c.Status == http.StatusNotFound:
		status = "not_found"
	}
	s.metrics.RequestsTotal.WithLabelValues(c.Uni, messengerName, status).Inc()
	s.metrics.PipelineDurationSeconds.WithLabelValues(c.Uni, messengerName).Observe(time.Since(started).Seconds())
	for _, r := range c.Responses {
		s.metrics.ResponsesTotal.WithLabelValues(c.Uni, string(r.Type)).Inc()
	}
}
