// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// SenderInfo loads the sender's channel profile so personalization
// pre-processors can reach it. An unknown sender is not an error.
func SenderInfo() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request != nil {
			info, err := c.Senders.FindOneByUniMessengerSender(c.Ctx, c.Uni, c.Messenger.Name(), c.Request.SenderID)
			if err != nil {
				return err
			}
			if info != nil {
				c.SenderInfo = info
			}
		}
		return next()
	}
}
