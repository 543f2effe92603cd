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

// FlattenResponses folds every command's rendered responses into the
// context response list, preserving command order. Runs on the way out,
// after the intent stages filled the per-command lists.
func FlattenResponses() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if err := next(); err != nil {
			return err
		}
		var flattened []datatypes.BotResponse
		for _, command := range c.Commands {
			flattened = append(flattened, command.Responses...)
		}
		c.Responses = flattened
		return nil
	}
}
