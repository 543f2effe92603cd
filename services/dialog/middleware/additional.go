// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"math/rand"
	"regexp"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/render"
)

// AdditionalResponseMessage appends the ADDITIONAL_RESPONSE_MESSAGE
// command's responses after a successfully answered text turn. Two
// triggers: the message matches the configured regexp, or the total
// message count has passed the threshold and a percentage dice roll
// comes up.
func AdditionalResponseMessage() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if err := next(); err != nil {
			return err
		}
		if c.Request == nil || c.Request.Message == "" || len(c.Responses) == 0 ||
			!c.UniConfigs.Has(datatypes.ConfigAdditionalResponseMessage) {
			return nil
		}

		var cfg datatypes.AdditionalResponseConfig
		if err := c.UniConfigs.Object(datatypes.ConfigAdditionalResponseMessage, &cfg); err != nil {
			c.Logger.Warn("invalid additional response config", "error", err)
			return nil
		}

		trigger, err := regexp.Compile("(?i)" + cfg.TriggerRegexp)
		if err != nil {
			c.Logger.Warn("invalid additional response trigger", "regexp", cfg.TriggerRegexp, "error", err)
			return nil
		}
		triggered := trigger.MatchString(c.Request.Message)

		if !triggered {
			roll := rand.Intn(101)
			count, err := c.Messages.CountAll(c.Ctx)
			if err != nil {
				return err
			}
			triggered = count >= int64(cfg.TriggerUserTotalMessages) &&
				cfg.TriggerUserTotalMessagesPercentage >= roll
		}
		if !triggered {
			return nil
		}

		intent, err := c.Intents.FindByUniAndCommand(c.Ctx, c.Uni, cfg.Command)
		if err != nil {
			return err
		}
		if intent == nil {
			c.Logger.Warn("additional response intent not found", "command", cfg.Command)
			return nil
		}
		responses, err := render.Responses(intent.Responses, map[string]any{}, c.Request.Locale)
		if err != nil {
			return err
		}
		c.Responses = append(c.Responses, responses...)
		return nil
	}
}
