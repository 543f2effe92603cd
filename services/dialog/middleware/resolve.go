// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// NewIntent loads the intent definition of every command that does not
// carry one yet. Lookups fan out per command; a command whose name has
// no definition keeps a nil intent for the validation stage to reject.
func NewIntent() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		g, ctx := errgroup.WithContext(c.Ctx)
		for _, command := range c.Commands {
			if command.Intent != nil || command.Name == "" {
				continue
			}
			command := command
			g.Go(func() error {
				intent, err := c.Intents.FindByUniAndCommand(ctx, c.Uni, command.Name)
				if err != nil {
					return err
				}
				command.Intent = intent
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return next()
	}
}

// CommandsValidation rejects the turn when nothing resolved, or when any
// resolved command lacks an intent definition. The fallback stage turns
// the rejection into an answer.
func CommandsValidation() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if len(c.Commands) == 0 {
			return datatypes.NewBotError(datatypes.ErrIntentNotFound, "no command resolved")
		}
		for _, command := range c.Commands {
			if command.Intent == nil {
				return datatypes.NewBotError(datatypes.ErrIntentNotFound, "no intent for command %s", command.Name)
			}
		}
		return next()
	}
}
