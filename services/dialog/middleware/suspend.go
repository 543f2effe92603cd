// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// SuspendAutoReply is the human-handoff gate. With SUSPEND_AUTO_REPLY
// on and no open issue, it opens one and silences the bot. With an open
// issue the bot stays silent while a human agent is engaged, except:
//
//   - the recreate keyword closes the issue and opens a fresh one, and
//     the bot answers again;
//   - a long enough gap between the two newest logged messages replaces
//     the resolved commands with the confirm-close command;
//   - once a previous request already invoked the confirm-close
//     command, the bot answers normally.
//
// An issue nobody on the human side has answered yet does not silence
// the bot. Missing configuration keys are logged and fail their
// condition.
func SuspendAutoReply() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request == nil {
			return next()
		}
		senderID := c.Request.SenderID

		issues, err := c.Issues.FindOpenByUniAndSender(c.Ctx, c.Uni, senderID)
		if err != nil {
			return err
		}

		if suspend, ok := c.UniConfigs.Bool(datatypes.ConfigSuspendAutoReply); ok && suspend && len(issues) == 0 {
			now := time.Now()
			issue, err := c.Issues.Create(c.Ctx, &datatypes.Issue{
				Uni:             c.Uni,
				SenderID:        senderID,
				Messenger:       c.Messenger.Name(),
				Status:          datatypes.IssueOpen,
				OpenDate:        now,
				LastUpdatedDate: now,
			})
			if err != nil {
				return err
			}
			if err := relinkRequestMessage(c, issue); err != nil {
				return err
			}
			c.Issue = issue
			if c.Metrics != nil {
				c.Metrics.SuspendedTotal.WithLabelValues(c.Uni).Inc()
			}
			return nil
		}

		if len(issues) == 0 {
			// No issue, the bot is allowed to answer.
			return next()
		}

		working := issues[0]
		messages, err := c.Messages.FindByUniSenderIssue(c.Ctx, c.Uni, senderID, working.ID)
		if err != nil {
			return err
		}
		sortByDate(messages)

		if !hasHumanMessage(messages) {
			// Nobody on the human side has answered yet.
			return next()
		}

		closeCommand, hasCloseCommand := c.UniConfigs.String(datatypes.ConfigConfirmCloseIssueCommandName)
		timeGapMS, hasTimeGap := c.UniConfigs.Int(datatypes.ConfigTimeGapTriggerConfirmClose)
		recreateWord, hasRecreateWord := c.UniConfigs.String(datatypes.ConfigRecreateIssueKeyWord)
		if !hasCloseCommand {
			c.Logger.Warn("config not found", "key", datatypes.ConfigConfirmCloseIssueCommandName)
		}
		if !hasTimeGap {
			c.Logger.Warn("config not found", "key", datatypes.ConfigTimeGapTriggerConfirmClose)
		}
		if !hasRecreateWord {
			c.Logger.Warn("config not found", "key", datatypes.ConfigRecreateIssueKeyWord)
		}

		if hasRecreateWord && c.Request.Message != "" &&
			strings.EqualFold(recreateWord, c.Request.Message) {
			now := time.Now()
			working.Status = datatypes.IssueClosed
			working.ClosedDate = &now
			working.LastUpdatedDate = now
			if _, err := c.Issues.Save(c.Ctx, working); err != nil {
				return err
			}
			fresh, err := c.Issues.Create(c.Ctx, &datatypes.Issue{
				Uni:             c.Uni,
				SenderID:        senderID,
				Messenger:       c.Messenger.Name(),
				Status:          datatypes.IssueOpen,
				OpenDate:        now,
				LastUpdatedDate: now,
			})
			if err != nil {
				return err
			}
			c.Issue = fresh
			if err := relinkRequestMessage(c, working); err != nil {
				return err
			}
			return next()
		}

		if hasCloseCommand && hasTimeGap &&
			lastMessageGap(messages) >= time.Duration(timeGapMS)*time.Millisecond {
			c.Commands = []*datatypes.CommandContext{
				datatypes.NewCommandContext(closeCommand, nil),
			}
			if c.RequestMessage != nil {
				c.RequestMessage.Commands = append(c.RequestMessage.Commands, closeCommand)
				saved, err := c.Messages.Save(c.Ctx, c.RequestMessage)
				if err != nil {
					return err
				}
				c.RequestMessage = saved
			}
			return next()
		}

		if hasCloseCommand && requestInvoked(messages, closeCommand) {
			return next()
		}

		// A human agent is engaged; the bot stays silent.
		if c.Metrics != nil {
			c.Metrics.SuspendedTotal.WithLabelValues(c.Uni).Inc()
		}
		return nil
	}
}

func relinkRequestMessage(c *pipeline.Context, issue *datatypes.Issue) error {
	if c.RequestMessage == nil {
		return nil
	}
	c.RequestMessage.IssueID = issue.ID
	saved, err := c.Messages.Save(c.Ctx, c.RequestMessage)
	if err != nil {
		return err
	}
	c.RequestMessage = saved
	return nil
}

func sortByDate(messages []*datatypes.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Date.Before(messages[j].Date)
	})
}

func hasHumanMessage(messages []*datatypes.Message) bool {
	for _, m := range messages {
		if m.FromHuman() {
			return true
		}
	}
	return false
}

// lastMessageGap returns the time between the two newest messages,
// regardless of who authored them.
func lastMessageGap(messages []*datatypes.Message) time.Duration {
	if len(messages) <= 1 {
		return 0
	}
	last := messages[len(messages)-1]
	previous := messages[len(messages)-2]
	return last.Date.Sub(previous.Date)
}

func requestInvoked(messages []*datatypes.Message, command string) bool {
	for _, m := range messages {
		if m.Type != datatypes.MessageRequest {
			continue
		}
		for _, name := range m.Commands {
			if name == command {
				return true
			}
		}
	}
	return false
}
