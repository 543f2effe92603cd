// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package messenger defines the channel adapter contract and ships two
// adapters: a plain web JSON adapter and a websocket adapter.
package messenger

import (
	"context"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// Messenger translates between one channel's wire format and the
// channel-agnostic request/response types, and delivers responses.
type Messenger interface {
	// Name identifies the channel ("web", "websocket", "facebook", ...).
	Name() string

	// Request converts the raw inbound payload.
	Request(raw any) (*datatypes.BotRequest, error)

	// Response converts rendered responses to channel payloads.
	Response(responses []datatypes.BotResponse, senderID string, raw any) ([]any, error)

	// Send delivers the channel payloads. Adapters that answer in the
	// HTTP response body (like the web adapter) make this a no-op.
	Send(ctx context.Context, payloads []any, configs datatypes.ConfigMap) error
}
