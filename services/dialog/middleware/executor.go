// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/registry"
)

// IntentExecutor runs each command's named executors in sequence,
// fanning out across commands. Every command gets its own executor
// context so concurrent commands never race on the shared issue and
// request message; the results are copied back in command order after
// the join. Unknown executor names are logged, not fatal.
func IntentExecutor() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request == nil || c.Session == nil {
			return next()
		}

		contexts := make([]*registry.ExecutorContext, len(c.Commands))
		g, ctx := errgroup.WithContext(c.Ctx)
		for i, command := range c.Commands {
			if command.Intent == nil || len(command.Intent.Executors) == 0 {
				continue
			}
			ec := &registry.ExecutorContext{
				ProcessorContext: c.ProcessorContext(),
				Command:          command,
				Messenger:        c.Messenger,
				Session:          c.Session,
				RequestMessage:   c.RequestMessage,
				Intents:          c.Intents,
				Configs:          c.Configs,
				Issues:           c.Issues,
				Messages:         c.Messages,
				Senders:          c.Senders,
				Sessions:         c.Sessions,
			}
			contexts[i] = ec
			names := command.Intent.Executors
			g.Go(func() error {
				for _, name := range names {
					exec, ok := c.Registry.Executor(name)
					if !ok {
						c.Logger.Warn("executor not found", "name", name)
						continue
					}
					if err := exec(ctx, ec); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, ec := range contexts {
			if ec == nil {
				continue
			}
			c.Issue = ec.Issue
			c.RequestMessage = ec.RequestMessage
		}
		return next()
	}
}
