// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"context"
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// RequestMessageLogging persists the inbound message to the per-sender
// log before resolution, tagged with the session id so human-authored
// entries stay distinguishable. The open issue's freshness timestamp is
// bumped at the same time.
func RequestMessageLogging() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request == nil || c.Session == nil {
			return next()
		}
		now := time.Now()

		logged := &datatypes.LoggedRequest{Type: c.Request.Type}
		if c.Request.Type == datatypes.RequestTypeText {
			logged.Message = c.Request.Message
		} else {
			logged.Path = c.Request.FileStoredPath
			logged.ContentType = c.Request.FileContentType
		}

		msg := &datatypes.Message{
			Uni:        c.Uni,
			Type:       datatypes.MessageRequest,
			Messenger:  c.Messenger.Name(),
			SenderID:   c.Request.SenderID,
			SessionID:  c.Session.ID(),
			Date:       now,
			Request:    logged,
			RawRequest: c.RawRequest,
		}
		if c.Issue != nil {
			msg.IssueID = c.Issue.ID
		}
		created, err := c.Messages.Create(c.Ctx, msg)
		if err != nil {
			return err
		}
		c.RequestMessage = created

		if c.Issue != nil {
			c.Issue.LastUpdatedDate = now
			saved, err := c.Issues.Save(c.Ctx, c.Issue)
			if err != nil {
				return err
			}
			c.Issue = saved
		}
		return next()
	}
}

// ResponseMessageLogging persists every outbound response after the
// request has been answered. The writes are fire-and-forget: a logging
// failure never fails the request that already went out.
func ResponseMessageLogging() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if err := next(); err != nil {
			return err
		}
		if c.Request == nil || c.Session == nil || len(c.Responses) == 0 || c.RawResponses == nil {
			return nil
		}

		base := datatypes.Message{
			Uni:       c.Uni,
			Type:      datatypes.MessageResponse,
			Messenger: c.Messenger.Name(),
			SenderID:  c.Request.SenderID,
			SessionID: c.Session.ID(),
			Date:      time.Now(),
		}
		if c.Issue != nil {
			base.IssueID = c.Issue.ID
		}

		paired := len(c.Responses) == len(c.RawResponses)
		responses := make([]datatypes.BotResponse, len(c.Responses))
		copy(responses, c.Responses)
		raws := make([]any, len(c.RawResponses))
		copy(raws, c.RawResponses)

		messages := c.Messages
		logger := c.Logger
		ctx := context.WithoutCancel(c.Ctx)
		go func() {
			for i := range responses {
				msg := base
				msg.Response = &responses[i]
				if paired {
					msg.RawResponse = raws[i]
				} else {
					msg.RawResponse = raws
				}
				if _, err := messages.Create(ctx, &msg); err != nil {
					logger.Error("create response message failed", "error", err)
				}
			}
		}()
		return nil
	}
}
