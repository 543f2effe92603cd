// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/files"
	"github.com/AleutianAI/AleutianDialog/services/dialog/messenger"
	"github.com/AleutianAI/AleutianDialog/services/dialog/nlp"
	"github.com/AleutianAI/AleutianDialog/services/dialog/observability"
	"github.com/AleutianAI/AleutianDialog/services/dialog/registry"
	"github.com/AleutianAI/AleutianDialog/services/dialog/repository"
	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

// Context is the single mutable record threaded through every stage of
// one pipeline run. Stages communicate only through it, never through
// return values. It is owned by one request and discarded afterwards.
type Context struct {
	Ctx context.Context

	// Uni is the tenant id taken from the webhook path.
	Uni string

	// RawRequest is the untranslated channel payload.
	RawRequest any

	// Request is set by the messenger stage.
	Request *datatypes.BotRequest

	// UniConfigs is the merged GLOBAL + tenant runtime configuration.
	UniConfigs datatypes.ConfigMap

	// Commands is the ordered set of resolved command contexts.
	Commands []*datatypes.CommandContext

	// Responses is the accumulated channel-agnostic response sequence.
	Responses []datatypes.BotResponse

	// RawResponses is the channel payload form of Responses, set by the
	// messenger stage on unwind.
	RawResponses []any

	// Status is the HTTP status the webhook answers with. Defaults to
	// 200; the white-list stage sets 404.
	Status int

	Issue          *datatypes.Issue
	SenderInfo     *datatypes.SenderInfo
	RequestMessage *datatypes.Message
	Session        *session.Service

	// Attributes is free-form cross-stage storage.
	Attributes map[string]any

	// External collaborators.
	Messenger  messenger.Messenger
	Intents    repository.IntentRepository
	Configs    repository.ConfigRepository
	Issues     repository.IssueRepository
	Messages   repository.MessageRepository
	Senders    repository.SenderInfoRepository
	Sessions   session.Repository
	NLP        nlp.Service
	Files      files.Service
	Transcoder files.Transcoder
	Registry   *registry.Registry
	Logger     *slog.Logger

	// Metrics is optional; stages check for nil.
	Metrics *observability.Metrics
}

// NewContext returns a context with initialized collections and a 200
// status. Collaborators are filled in by the server.
func NewContext(ctx context.Context, uni string, raw any) *Context {
	return &Context{
		Ctx:        ctx,
		Uni:        uni,
		RawRequest: raw,
		UniConfigs: datatypes.ConfigMap{},
		Attributes: map[string]any{},
		Status:     http.StatusOK,
		Logger:     slog.Default(),
	}
}

// ProcessorContext builds the read-only surface for processors.
func (c *Context) ProcessorContext() registry.ProcessorContext {
	pc := registry.ProcessorContext{
		Uni:        c.Uni,
		UniConfigs: c.UniConfigs,
		Issue:      c.Issue,
		SenderInfo: c.SenderInfo,
	}
	if c.Messenger != nil {
		pc.MessengerName = c.Messenger.Name()
	}
	if c.Request != nil {
		pc.SenderID = c.Request.SenderID
		pc.Locale = c.Request.Locale
	}
	return pc
}
