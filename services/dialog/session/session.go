// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session holds the per-(uni, sender) conversation state: TTL'd
// feature memories, the optional active multi-turn conversation, and the
// optional pending option menu.
package session

import (
	"context"
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// Memory is one remembered (intent, features) pair. Remaining counts the
// saves the memory survives; Save drops it once Remaining reaches zero.
type Memory struct {
	Remaining int               `json:"remaining"`
	Features  map[string]string `json:"features"`
	Intent    *datatypes.Intent `json:"intent"`
}

// Conversation is the active multi-turn exchange. At most one per session.
type Conversation struct {
	Intent   *datatypes.Intent `json:"intent"`
	Features map[string]string `json:"features"`
}

// Option is one pending option-menu entry. LiveCount is the number of
// saves since the menu was offered; the continuous-options stage uses it
// to suppress re-showing menus on consecutive turns.
type Option struct {
	Command           string            `json:"command"`
	Features          map[string]string `json:"features"`
	TextOnlyIndicator string            `json:"textOnlyIndicator"`
	LiveCount         int               `json:"liveCount"`
}

// Session is the persisted record. LastOptions nil means no pending menu;
// Conversation nil means no active conversation.
type Session struct {
	ID           string        `json:"id"`
	Memories     []Memory      `json:"memories"`
	Conversation *Conversation `json:"conversation,omitempty"`
	LastOptions  []Option      `json:"lastOptions,omitempty"`
}

// Repository loads and saves sessions with a per-save expiry.
type Repository interface {
	FindByUniAndSender(ctx context.Context, uni, senderID string) (*Session, error)
	Save(ctx context.Context, uni, senderID string, session *Session, expire time.Duration) error
}
