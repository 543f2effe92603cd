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
	"github.com/AleutianAI/AleutianDialog/services/dialog/render"
)

// fallbackMessage is the answer of last resort when no fallback intent
// can be resolved.
const fallbackMessage = "Sorry, I don't know"

// FallbackResponse guarantees the sender always gets an answer. Any
// error escaping the inner stages is swallowed here: the accumulated
// responses are replaced with the fallback intent's rendering, or with
// a literal apology when no fallback intent resolves.
//
// A partially resolved command may carry its own fallback command on
// the intent; the first one found wins over FALLBACK_COMMAND_NAME.
func FallbackResponse() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		err := next()
		if err == nil {
			return nil
		}

		c.Logger.Error("returning fallback response",
			"uni", c.Uni,
			"error", err)
		if c.Metrics != nil {
			c.Metrics.FallbacksTotal.WithLabelValues(c.Uni).Inc()
		}

		command := fallbackCommand(c)
		if c.Request != nil && command != "" {
			intent, lookupErr := c.Intents.FindByUniAndCommand(c.Ctx, c.Uni, command)
			if lookupErr != nil {
				c.Logger.Error("fallback intent lookup failed", "command", command, "error", lookupErr)
			} else if intent != nil {
				responses, renderErr := render.Responses(intent.Responses, map[string]any{}, c.Request.Locale)
				if renderErr == nil {
					c.Responses = responses
					return nil
				}
				c.Logger.Error("fallback intent render failed", "command", command, "error", renderErr)
			}
		}

		c.Responses = []datatypes.BotResponse{{
			Type:    datatypes.ResponseTypeText,
			Message: fallbackMessage,
		}}
		return nil
	}
}

func fallbackCommand(c *pipeline.Context) string {
	for _, command := range c.Commands {
		if command.Intent != nil && command.Intent.FallbackCommand != "" {
			return command.Intent.FallbackCommand
		}
	}
	if name, ok := c.UniConfigs.String(datatypes.ConfigFallbackCommandName); ok {
		return name
	}
	return ""
}
