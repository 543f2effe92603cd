// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package repository declares the persistence contracts the dialog core
// consumes. Implementations live in services/dialog/storage; tests supply
// in-memory fakes.
package repository

import (
	"context"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// IntentRepository resolves intent definitions by tenant and command name.
// A nil intent with nil error means the command is not defined.
type IntentRepository interface {
	FindByUniAndCommand(ctx context.Context, uni, command string) (*datatypes.Intent, error)
}

// ConfigRepository lists the runtime configuration entries of a tenant.
type ConfigRepository interface {
	FindByUni(ctx context.Context, uni string) ([]datatypes.Config, error)
}

// IssueRepository persists human-handoff tickets.
type IssueRepository interface {
	Create(ctx context.Context, issue *datatypes.Issue) (*datatypes.Issue, error)
	Save(ctx context.Context, issue *datatypes.Issue) (*datatypes.Issue, error)
	FindOpenByUniAndSender(ctx context.Context, uni, senderID string) ([]*datatypes.Issue, error)
}

// MessageRepository persists the per-sender message log.
type MessageRepository interface {
	Create(ctx context.Context, msg *datatypes.Message) (*datatypes.Message, error)
	Save(ctx context.Context, msg *datatypes.Message) (*datatypes.Message, error)
	FindByUniSenderIssue(ctx context.Context, uni, senderID, issueID string) ([]*datatypes.Message, error)
	CountAll(ctx context.Context) (int64, error)
}

// SenderInfoRepository resolves sender profiles.
type SenderInfoRepository interface {
	Create(ctx context.Context, info *datatypes.SenderInfo) (*datatypes.SenderInfo, error)
	FindOneByUniMessengerSender(ctx context.Context, uni, messenger, senderID string) (*datatypes.SenderInfo, error)
}
