// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"fmt"
)

// GlobalUni is the pseudo tenant whose configuration applies to every
// dialog agent. Tenant-specific entries override it.
const GlobalUni = "GLOBAL"

// Recognized runtime configuration keys.
const (
	ConfigSessionExpireInMS            = "SESSION_EXPIRE_IN_MS"
	ConfigFallbackCommandName          = "FALLBACK_COMMAND_NAME"
	ConfigSuspendAutoReply             = "SUSPEND_AUTO_REPLY"
	ConfigMessengerWhiteList           = "MESSENGER_WHITE_LIST"
	ConfigFileRequestCommandName       = "FILE_REQUEST_COMMAND_NAME"
	ConfigConfirmCloseIssueCommandName = "CONFIRM_CLOSE_ISSUE_COMMAND_NAME"
	ConfigTimeGapTriggerConfirmClose   = "TIME_GAP_IN_MS_TRIGGER_CONFIRM_CLOSE_ISSUE"
	ConfigRecreateIssueKeyWord         = "RECREATE_ISSUE_KEY_WORD"
	ConfigAdditionalResponseMessage    = "ADDITIONAL_RESPONSE_MESSAGE"
)

// Config is one tenant-scoped runtime setting. Value is loosely typed
// because the store keeps heterogeneous settings (strings, numbers,
// booleans, string lists, and one object).
type Config struct {
	Uni   string `yaml:"uni" json:"uni"`
	Key   string `yaml:"key" json:"key"`
	Value any    `yaml:"value" json:"value"`
}

// AdditionalResponseConfig is the decoded ADDITIONAL_RESPONSE_MESSAGE
// object.
type AdditionalResponseConfig struct {
	Command                            string `json:"COMMAND"`
	TriggerRegexp                      string `json:"TRIGGER_REGEXP"`
	TriggerUserTotalMessages           int    `json:"TRIGGER_USER_TOTAL_MESSAGES"`
	TriggerUserTotalMessagesPercentage int    `json:"TRIGGER_USER_TOTAL_MESSAGES_PERCENTAGE"`
}

// ConfigMap is the merged per-request view of runtime configuration,
// keyed by config key. Built by the config resolution stages.
type ConfigMap map[string]Config

// Merge overlays the given entries onto the map. Later entries win, which
// is how tenant config overrides GLOBAL config.
func (m ConfigMap) Merge(configs []Config) {
	for _, c := range configs {
		m[c.Key] = c
	}
}

// Has reports whether a key is present.
func (m ConfigMap) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String returns the value of a string-typed key.
func (m ConfigMap) String(key string) (string, bool) {
	c, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := c.Value.(string)
	return s, ok
}

// Int returns the value of a numeric key. YAML and JSON decoders produce
// different numeric types, so all of them are accepted.
func (m ConfigMap) Int(key string) (int64, bool) {
	c, ok := m[key]
	if !ok {
		return 0, false
	}
	switch v := c.Value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns the value of a boolean key.
func (m ConfigMap) Bool(key string) (bool, bool) {
	c, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := c.Value.(bool)
	return b, ok
}

// StringList returns the value of a string-list key.
func (m ConfigMap) StringList(key string) ([]string, bool) {
	c, ok := m[key]
	if !ok {
		return nil, false
	}
	switch v := c.Value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Object decodes an object-typed key into out via JSON round-trip.
func (m ConfigMap) Object(key string, out any) error {
	c, ok := m[key]
	if !ok {
		return fmt.Errorf("config %s not found", key)
	}
	raw, err := json.Marshal(c.Value)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode config %s: %w", key, err)
	}
	return nil
}
