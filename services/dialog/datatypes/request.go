// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// BotCommand is a resolved (command, features) pair as produced by the
// classifier or a channel adapter.
type BotCommand struct {
	Name     string            `json:"name"`
	Features map[string]string `json:"features"`
}

// BotRequest is the channel-agnostic inbound message produced by a
// messenger adapter.
type BotRequest struct {
	Type     RequestType `json:"type"`
	Locale   string      `json:"locale"`
	SenderID string      `json:"senderId"`
	Message  string      `json:"message,omitempty"`

	FileURL         string `json:"fileUrl,omitempty"`
	FileStoredPath  string `json:"fileStoredPath,omitempty"`
	FileContentType string `json:"fileContentType,omitempty"`

	// Commands lets an adapter hand over pre-resolved commands, skipping
	// option-menu matching and the classifier.
	Commands []BotCommand `json:"commands,omitempty"`
}

// ResponseOption is one selectable entry of a rendered OPTIONS response.
type ResponseOption struct {
	Command           string            `json:"command"`
	Features          map[string]string `json:"features"`
	Message           string            `json:"message"`
	TextOnlyIndicator string            `json:"textOnlyIndicator"`
}

// ResponseItem is one entry of a rendered ITEMS response.
type ResponseItem struct {
	Type    ItemType `json:"type"`
	URL     string   `json:"url,omitempty"`
	Message string   `json:"message"`
}

// BotResponse is one channel-agnostic outbound response. Type selects
// which of the optional fields are meaningful.
type BotResponse struct {
	Type    ResponseType `json:"type"`
	Message string       `json:"message"`

	// OPTIONS only. ForceShow keeps the menu visible even on consecutive
	// option-driven turns.
	Options   []ResponseOption `json:"options,omitempty"`
	ForceShow bool             `json:"forceShow,omitempty"`

	// ITEMS only.
	Items []ResponseItem `json:"items,omitempty"`
}

// CommandContext is one resolved-or-resolving intent invocation within a
// request. Created by a command resolution stage, mutated by feature
// processing and response stages, never shared across requests.
type CommandContext struct {
	Name              string
	Intent            *Intent
	Features          map[string]string
	ProcessedFeatures map[string]any
	Responses         []BotResponse
	Attributes        map[string]any
}

// NewCommandContext returns a command context with initialized maps.
func NewCommandContext(name string, features map[string]string) *CommandContext {
	if features == nil {
		features = map[string]string{}
	}
	return &CommandContext{
		Name:              name,
		Features:          features,
		ProcessedFeatures: map[string]any{},
		Attributes:        map[string]any{},
	}
}
