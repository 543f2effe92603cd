// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the records exchanged between the dialog
// pipeline stages: intent definitions, tenant configuration, issues,
// logged messages, sender profiles, and the per-request command context.
//
// Everything here is a plain data record. Behavior lives in the pipeline,
// session, and middleware packages.
package datatypes

// ResponseType discriminates intent response templates.
type ResponseType string

const (
	ResponseTypeText    ResponseType = "TEXT"
	ResponseTypeOptions ResponseType = "OPTIONS"
	ResponseTypeItems   ResponseType = "ITEMS"
)

// ItemType discriminates entries of an ITEMS response.
type ItemType string

const (
	ItemTypeText  ItemType = "TEXT"
	ItemTypeImage ItemType = "IMAGE"
	ItemTypeAudio ItemType = "AUDIO"
	ItemTypeVideo ItemType = "VIDEO"
)

// LocalizedText maps a BCP-47 locale tag (e.g. "en-GB", "zh-TW") to a
// message template. Templates support {KEY} substitution, a small plural
// form, and the [^LEXICA^] split marker; see the render package.
type LocalizedText map[string]string

// TemplateOption is one selectable entry of an OPTIONS template. The
// TextOnlyIndicator is the short reply ("A", "B", ...) that resolves the
// option on the next inbound message.
type TemplateOption struct {
	Command           string            `yaml:"command" json:"command" validate:"required"`
	Messages          []LocalizedText   `yaml:"messages" json:"messages" validate:"min=1"`
	Features          map[string]string `yaml:"features" json:"features"`
	TextOnlyIndicator string            `yaml:"textOnlyIndicator" json:"textOnlyIndicator" validate:"required"`
}

// TemplateItem is one entry of an ITEMS template.
type TemplateItem struct {
	Type     ItemType        `yaml:"type" json:"type" validate:"required"`
	URL      string          `yaml:"url" json:"url"`
	Messages []LocalizedText `yaml:"messages" json:"messages" validate:"min=1"`
}

// ResponseTemplate is one locale-keyed response carried by an intent.
// Exactly one of Options or Items is populated depending on Type.
// Messages holds one or more variants; rendering picks one at random.
type ResponseTemplate struct {
	Type      ResponseType     `yaml:"type" json:"type" validate:"required,oneof=TEXT OPTIONS ITEMS"`
	Messages  []LocalizedText  `yaml:"messages" json:"messages"`
	Options   []TemplateOption `yaml:"options" json:"options" validate:"dive"`
	Items     []TemplateItem   `yaml:"items" json:"items" validate:"dive"`
	ForceShow bool             `yaml:"forceShow" json:"forceShow"`
}

// MissingFeaturePrompt is the follow-up question asked when a required
// feature is absent. Lower Priority values are asked first.
type MissingFeaturePrompt struct {
	Priority int              `yaml:"priority" json:"priority"`
	Response ResponseTemplate `yaml:"response" json:"response"`
}

// Intent is a configured conversational command. Read-only at runtime;
// authored externally and loaded by the intent repository.
type Intent struct {
	Uni                 string                          `yaml:"uni" json:"uni" validate:"required"`
	Command             string                          `yaml:"command" json:"command" validate:"required"`
	RequiredFeatureKeys []string                        `yaml:"requiredFeatureKeys" json:"requiredFeatureKeys"`
	DefaultFeatures     map[string]string               `yaml:"defaultFeatures" json:"defaultFeatures"`
	MissingFeatures     map[string]MissingFeaturePrompt `yaml:"missingFeatures" json:"missingFeatures"`
	Responses           []ResponseTemplate              `yaml:"responses" json:"responses" validate:"min=1,dive"`
	PreProcessors       []string                        `yaml:"preProcessors" json:"preProcessors"`
	PostProcessors      []string                        `yaml:"postProcessors" json:"postProcessors"`
	Executors           []string                        `yaml:"executors" json:"executors"`
	FallbackCommand     string                          `yaml:"fallbackCommand" json:"fallbackCommand"`

	// SessionExpire is the number of turns this intent's features stay in
	// session memory. Nil means -1: the memory is dropped on the first
	// save after use. Multi-turn memory needs a positive value.
	SessionExpire *int `yaml:"sessionExpire" json:"sessionExpire"`

	Category string `yaml:"category" json:"category"`
}

// MemoryTurns returns the remaining-turns counter a fresh memory of this
// intent starts with.
func (i *Intent) MemoryTurns() int {
	expire := -1
	if i.SessionExpire != nil {
		expire = *i.SessionExpire
	}
	return expire + 1
}

// IntentMemory is the (command, features) pair handed to the NLP
// classifier so it can bias resolution with what the sender already said.
type IntentMemory struct {
	Command  string            `json:"command"`
	Features map[string]string `json:"features"`
}
