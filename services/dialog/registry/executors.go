// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"context"
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// CreateIssueExecutor opens a support issue for the sender when none is
// open, redirecting the conversation to a human agent. The request
// message is re-linked to the new issue.
func CreateIssueExecutor(ctx context.Context, ec *ExecutorContext) error {
	if ec.Issue != nil && ec.Issue.Status != datatypes.IssueClosed {
		return nil
	}
	now := time.Now()
	issue, err := ec.Issues.Create(ctx, &datatypes.Issue{
		Uni:             ec.Uni,
		SenderID:        ec.SenderID,
		Messenger:       ec.MessengerName,
		Status:          datatypes.IssueOpen,
		OpenDate:        now,
		LastUpdatedDate: now,
	})
	if err != nil {
		return err
	}
	ec.Issue = issue

	if ec.RequestMessage != nil {
		ec.RequestMessage.IssueID = issue.ID
		saved, err := ec.Messages.Save(ctx, ec.RequestMessage)
		if err != nil {
			return err
		}
		ec.RequestMessage = saved
	}
	return nil
}

// CloseIssueExecutor closes the sender's open issue. Invoked by the
// confirm-close flow.
func CloseIssueExecutor(ctx context.Context, ec *ExecutorContext) error {
	if ec.Issue == nil {
		return nil
	}
	now := time.Now()
	ec.Issue.Status = datatypes.IssueClosed
	ec.Issue.ClosedDate = &now
	ec.Issue.LastUpdatedDate = now
	saved, err := ec.Issues.Save(ctx, ec.Issue)
	if err != nil {
		return err
	}
	ec.Issue = saved
	return nil
}
