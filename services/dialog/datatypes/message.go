// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// MessageType distinguishes logged inbound requests from logged outbound
// responses.
type MessageType string

const (
	MessageRequest  MessageType = "REQUEST"
	MessageResponse MessageType = "RESPONSE"
)

// RequestType is the payload kind of an inbound message.
type RequestType string

const (
	RequestTypeText  RequestType = "TEXT"
	RequestTypeAudio RequestType = "AUDIO"
	RequestTypeVideo RequestType = "VIDEO"
	RequestTypeImage RequestType = "IMAGE"
	RequestTypeFile  RequestType = "FILE"
)

// LoggedRequest is the normalized request payload kept on a message log
// entry. Text requests carry Message; file requests carry Path and
// ContentType.
type LoggedRequest struct {
	Type        RequestType `json:"type"`
	Message     string      `json:"message,omitempty"`
	Path        string      `json:"path,omitempty"`
	ContentType string      `json:"contentType,omitempty"`
}

// Message is one entry of the per-sender message log. An entry without a
// SessionID was written by a human agent: automated replies always carry
// the session id of the pipeline run that produced them.
type Message struct {
	ID        string      `json:"id"`
	Uni       string      `json:"uni"`
	Type      MessageType `json:"type"`
	Messenger string      `json:"messenger"`
	SenderID  string      `json:"senderId"`
	SessionID string      `json:"sessionId,omitempty"`
	IssueID   string      `json:"issueId,omitempty"`
	Date      time.Time   `json:"date"`

	// Commands holds the command names resolved for a REQUEST entry.
	Commands []string `json:"commands,omitempty"`

	Request     *LoggedRequest `json:"request,omitempty"`
	Response    *BotResponse   `json:"response,omitempty"`
	RawRequest  any            `json:"rawRequest,omitempty"`
	RawResponse any            `json:"rawResponse,omitempty"`
}

// FromHuman reports whether the entry was authored by a human agent.
func (m *Message) FromHuman() bool {
	return m.SessionID == ""
}
