// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// NLP classifies free text into commands when nothing upstream resolved
// any. Session memories bias the classifier with what the sender said
// on recent turns. The resolved command names are saved back onto the
// logged request message for the escalation stage's history checks.
func NLP() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		var memories []datatypes.IntentMemory
		if c.Session != nil {
			memories = c.Session.IntentMemories()
		}

		if c.Request != nil && c.Request.Message != "" && len(c.Commands) == 0 {
			commands, err := c.NLP.Analyse(c.Ctx, c.Request.Message, c.Uni, memories)
			if err != nil {
				return err
			}
			resolved := make([]*datatypes.CommandContext, 0, len(commands))
			names := make([]string, 0, len(commands))
			for _, cmd := range commands {
				resolved = append(resolved, datatypes.NewCommandContext(cmd.Name, cmd.Features))
				names = append(names, cmd.Name)
			}
			c.Commands = resolved

			if c.RequestMessage != nil {
				c.RequestMessage.Commands = names
				saved, err := c.Messages.Save(c.Ctx, c.RequestMessage)
				if err != nil {
					return err
				}
				c.RequestMessage = saved
			}
		}
		return next()
	}
}
