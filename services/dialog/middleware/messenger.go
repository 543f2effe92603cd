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

// Messenger translates the raw channel payload into a BotRequest on the
// way in and delivers the accumulated responses on the way out. A
// payload carrying pre-resolved commands skips option matching and the
// classifier further down.
func Messenger() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		request, err := c.Messenger.Request(c.RawRequest)
		if err != nil {
			return err
		}
		c.Request = request

		if len(request.Commands) > 0 {
			commands := make([]*datatypes.CommandContext, 0, len(request.Commands))
			for _, cmd := range request.Commands {
				commands = append(commands, datatypes.NewCommandContext(cmd.Name, cmd.Features))
			}
			c.Commands = commands
		}

		if err := next(); err != nil {
			return err
		}

		raw, err := c.Messenger.Response(c.Responses, request.SenderID, c.RawRequest)
		if err != nil {
			return err
		}
		c.RawResponses = raw
		return c.Messenger.Send(c.Ctx, raw, c.UniConfigs)
	}
}
