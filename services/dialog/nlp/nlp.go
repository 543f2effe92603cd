// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package nlp defines the classifier contract and ships three
// implementations: a silent default, an external HTTP classifier, and an
// OpenAI-backed classifier.
package nlp

import (
	"context"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// Service maps free text to zero or more commands with extracted
// features. Memories bias the classification with what the sender
// already said in live session memories.
type Service interface {
	Analyse(ctx context.Context, message, uni string, memories []datatypes.IntentMemory) ([]datatypes.BotCommand, error)
}

// DefaultService resolves nothing. Used on agent-only channels where a
// human is expected to take over every conversation.
type DefaultService struct{}

func (DefaultService) Analyse(ctx context.Context, message, uni string, memories []datatypes.IntentMemory) ([]datatypes.BotCommand, error) {
	return nil, nil
}
