// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// WSPayload is one inbound websocket frame.
type WSPayload struct {
	SenderID string `json:"senderId"`
	Locale   string `json:"locale"`
	Message  string `json:"message"`
}

// WSMessenger delivers responses over live websocket connections. One
// connection per sender; a reconnect replaces the previous connection.
type WSMessenger struct {
	DefaultLocale string

	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

// NewWSMessenger returns a websocket adapter with no connections yet.
func NewWSMessenger(defaultLocale string) *WSMessenger {
	if defaultLocale == "" {
		defaultLocale = "en-GB"
	}
	return &WSMessenger{
		DefaultLocale: defaultLocale,
		conns:         map[string]*websocket.Conn{},
	}
}

func (m *WSMessenger) Name() string { return "websocket" }

// Register binds a sender's live connection. The handler calls this after
// upgrading.
func (m *WSMessenger) Register(senderID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.conns[senderID]; ok && old != conn {
		_ = old.Close()
	}
	m.conns[senderID] = conn
}

// Unregister drops a sender's connection if it is still the current one.
func (m *WSMessenger) Unregister(senderID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.conns[senderID]; ok && current == conn {
		delete(m.conns, senderID)
	}
}

func (m *WSMessenger) Request(raw any) (*datatypes.BotRequest, error) {
	var payload WSPayload
	switch v := raw.(type) {
	case WSPayload:
		payload = v
	case *WSPayload:
		payload = *v
	case []byte:
		if err := json.Unmarshal(v, &payload); err != nil {
			return nil, fmt.Errorf("decode websocket frame: %w", err)
		}
	default:
		return nil, fmt.Errorf("unexpected websocket payload %T", raw)
	}
	if payload.SenderID == "" {
		return nil, fmt.Errorf("websocket frame missing senderId")
	}
	locale := payload.Locale
	if locale == "" {
		locale = m.DefaultLocale
	}
	return &datatypes.BotRequest{
		Type:     datatypes.RequestTypeText,
		Locale:   locale,
		SenderID: payload.SenderID,
		Message:  payload.Message,
	}, nil
}

func (m *WSMessenger) Response(responses []datatypes.BotResponse, senderID string, raw any) ([]any, error) {
	out := make([]any, 0, len(responses))
	for _, r := range responses {
		out = append(out, map[string]any{
			"senderId": senderID,
			"response": r,
		})
	}
	return out, nil
}

// Send writes each payload as one JSON frame to the sender's connection.
// A sender with no live connection is a delivery failure.
func (m *WSMessenger) Send(ctx context.Context, payloads []any, configs datatypes.ConfigMap) error {
	for _, p := range payloads {
		entry, ok := p.(map[string]any)
		if !ok {
			return fmt.Errorf("unexpected websocket response payload %T", p)
		}
		senderID, _ := entry["senderId"].(string)
		m.mu.RLock()
		conn, ok := m.conns[senderID]
		m.mu.RUnlock()
		if !ok {
			return fmt.Errorf("no websocket connection for sender %s", senderID)
		}
		if err := conn.WriteJSON(entry); err != nil {
			slog.Warn("websocket write failed", "senderId", senderID, "error", err)
			return err
		}
	}
	return nil
}
