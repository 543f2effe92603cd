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

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// WebPayload is the JSON body the web channel posts to the webhook.
type WebPayload struct {
	SenderID string `json:"senderId" binding:"required"`
	Locale   string `json:"locale"`
	Message  string `json:"message"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
}

// WebMessenger is the synchronous web channel: the webhook response body
// carries the rendered responses, so Send is a no-op.
type WebMessenger struct {
	DefaultLocale string
}

// NewWebMessenger returns a web adapter with the given default locale.
func NewWebMessenger(defaultLocale string) *WebMessenger {
	if defaultLocale == "" {
		defaultLocale = "en-GB"
	}
	return &WebMessenger{DefaultLocale: defaultLocale}
}

func (m *WebMessenger) Name() string { return "web" }

func (m *WebMessenger) Request(raw any) (*datatypes.BotRequest, error) {
	payload, err := decodeWebPayload(raw)
	if err != nil {
		return nil, err
	}
	locale := payload.Locale
	if locale == "" {
		locale = m.DefaultLocale
	}
	req := &datatypes.BotRequest{
		Type:     datatypes.RequestTypeText,
		Locale:   locale,
		SenderID: payload.SenderID,
		Message:  payload.Message,
	}
	if payload.FileURL != "" {
		req.FileURL = payload.FileURL
		req.Type = fileRequestType(payload.FileType)
	}
	return req, nil
}

func (m *WebMessenger) Response(responses []datatypes.BotResponse, senderID string, raw any) ([]any, error) {
	out := make([]any, 0, len(responses))
	for _, r := range responses {
		out = append(out, map[string]any{
			"senderId": senderID,
			"response": r,
		})
	}
	return out, nil
}

func (m *WebMessenger) Send(ctx context.Context, payloads []any, configs datatypes.ConfigMap) error {
	// Delivered in the webhook response body.
	return nil
}

func decodeWebPayload(raw any) (*WebPayload, error) {
	switch v := raw.(type) {
	case *WebPayload:
		return v, nil
	case WebPayload:
		return &v, nil
	default:
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode web payload: %w", err)
		}
		var payload WebPayload
		if err := json.Unmarshal(encoded, &payload); err != nil {
			return nil, fmt.Errorf("decode web payload: %w", err)
		}
		if payload.SenderID == "" {
			return nil, fmt.Errorf("web payload missing senderId")
		}
		return &payload, nil
	}
}

func fileRequestType(fileType string) datatypes.RequestType {
	switch fileType {
	case "audio":
		return datatypes.RequestTypeAudio
	case "video":
		return datatypes.RequestTypeVideo
	case "image":
		return datatypes.RequestTypeImage
	default:
		return datatypes.RequestTypeFile
	}
}
