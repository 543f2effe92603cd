// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/render"
)

// IntentResponse renders every command's intent templates against its
// processed features into the command's response list. A malformed
// template fails the turn; the fallback stage answers instead.
func IntentResponse() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request == nil {
			return next()
		}
		for _, command := range c.Commands {
			if command.Intent == nil {
				continue
			}
			responses, err := render.Responses(command.Intent.Responses, command.ProcessedFeatures, c.Request.Locale)
			if err != nil {
				return err
			}
			command.Responses = responses
		}
		return next()
	}
}
