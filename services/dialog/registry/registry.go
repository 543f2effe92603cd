// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package registry maps the processor and executor names carried by
// intent definitions to their implementations. Resolved once at startup;
// unknown names are a logged warning, never a crash.
package registry

import (
	"context"
	"log/slog"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/messenger"
	"github.com/AleutianAI/AleutianDialog/services/dialog/repository"
	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

// ProcessorContext is the read-only request surface handed to pre- and
// post-processors.
type ProcessorContext struct {
	Uni           string
	SenderID      string
	Locale        string
	MessengerName string
	UniConfigs    datatypes.ConfigMap
	Issue         *datatypes.Issue
	SenderInfo    *datatypes.SenderInfo
}

// PreProcessor transforms raw string features before default fill and
// validation.
type PreProcessor func(ctx context.Context, pc ProcessorContext, features map[string]string) (map[string]string, error)

// PostProcessor transforms validated features into the typed map used by
// templating.
type PostProcessor func(ctx context.Context, pc ProcessorContext, features map[string]any) (map[string]any, error)

// ExecutorContext is the mutable surface handed to executors. Executors
// may replace Issue and RequestMessage; the executor stage copies the
// results back onto the request context.
type ExecutorContext struct {
	ProcessorContext

	Command        *datatypes.CommandContext
	Messenger      messenger.Messenger
	Session        *session.Service
	RequestMessage *datatypes.Message

	Intents  repository.IntentRepository
	Configs  repository.ConfigRepository
	Issues   repository.IssueRepository
	Messages repository.MessageRepository
	Senders  repository.SenderInfoRepository
	Sessions session.Repository
}

// Executor is a named side-effecting handler invoked after responses are
// rendered.
type Executor func(ctx context.Context, ec *ExecutorContext) error

// Registry holds the named capabilities.
type Registry struct {
	pre    map[string]PreProcessor
	post   map[string]PostProcessor
	exec   map[string]Executor
	logger *slog.Logger
}

// New returns a registry preloaded with the default capabilities, merged
// with the given overrides (overrides win on name collision).
func New(logger *slog.Logger, pre map[string]PreProcessor, post map[string]PostProcessor, exec map[string]Executor) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		pre: map[string]PreProcessor{
			"SenderNamePreProcessor": SenderNamePreProcessor,
		},
		post: map[string]PostProcessor{
			"DatePostProcessor": DatePostProcessor,
		},
		exec: map[string]Executor{
			"CreateIssueExecutor": CreateIssueExecutor,
			"CloseIssueExecutor":  CloseIssueExecutor,
		},
		logger: logger,
	}
	for name, p := range pre {
		r.pre[name] = p
	}
	for name, p := range post {
		r.post[name] = p
	}
	for name, e := range exec {
		r.exec[name] = e
	}
	return r
}

// PreProcessors resolves names to implementations, warning on unknowns.
func (r *Registry) PreProcessors(names []string) []PreProcessor {
	out := make([]PreProcessor, 0, len(names))
	for _, name := range names {
		p, ok := r.pre[name]
		if !ok {
			r.logger.Warn("pre-processor not found", "name", name)
			continue
		}
		out = append(out, p)
	}
	return out
}

// PostProcessors resolves names to implementations, warning on unknowns.
func (r *Registry) PostProcessors(names []string) []PostProcessor {
	out := make([]PostProcessor, 0, len(names))
	for _, name := range names {
		p, ok := r.post[name]
		if !ok {
			r.logger.Warn("post-processor not found", "name", name)
			continue
		}
		out = append(out, p)
	}
	return out
}

// Executor resolves one executor name.
func (r *Registry) Executor(name string) (Executor, bool) {
	e, ok := r.exec[name]
	return e, ok
}
