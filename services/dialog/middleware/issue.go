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

// FetchIssue loads the sender's open support issue, if any, for the
// stages and processors below.
func FetchIssue() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request != nil {
			issues, err := c.Issues.FindOpenByUniAndSender(c.Ctx, c.Uni, c.Request.SenderID)
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				c.Issue = issues[0]
			}
		}
		return next()
	}
}
