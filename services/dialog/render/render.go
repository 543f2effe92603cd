// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package render turns intent response templates into channel-agnostic
// bot responses.
//
// Templates are locale-keyed. The message syntax is the subset of ICU
// MessageFormat the intent corpus actually uses:
//
//	{KEY}                                   plain substitution
//	{KEY, plural, one {hour} other {hours}} two-branch plural
//	{KEY, date, short}                      short date
//
// A TEXT message may carry the split marker [^LEXICA^]; each segment is
// emitted as its own TEXT response.
package render

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// SplitMarker breaks one logical TEXT response into sequential messages.
const SplitMarker = "[^LEXICA^]"

// Responses renders every template of an intent in order.
func Responses(templates []datatypes.ResponseTemplate, features map[string]any, locale string) ([]datatypes.BotResponse, error) {
	var out []datatypes.BotResponse
	for _, t := range templates {
		rendered, err := Response(t, features, locale)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
	}
	return out, nil
}

// Response renders one template. TEXT templates may expand to several
// responses via the split marker; OPTIONS and ITEMS always yield one.
func Response(t datatypes.ResponseTemplate, features map[string]any, locale string) ([]datatypes.BotResponse, error) {
	switch {
	case t.Type == datatypes.ResponseTypeText && len(t.Messages) > 0:
		message, err := Message(t.Messages, features, locale)
		if err != nil {
			return nil, err
		}
		var out []datatypes.BotResponse
		for _, segment := range strings.Split(message, SplitMarker) {
			out = append(out, datatypes.BotResponse{
				Type:    datatypes.ResponseTypeText,
				Message: segment,
			})
		}
		return out, nil

	case t.Type == datatypes.ResponseTypeOptions && len(t.Options) > 0:
		prompt, err := Message(t.Messages, features, locale)
		if err != nil {
			return nil, err
		}
		options := make([]datatypes.ResponseOption, 0, len(t.Options))
		for _, o := range t.Options {
			label, err := Message(o.Messages, features, locale)
			if err != nil {
				return nil, err
			}
			options = append(options, datatypes.ResponseOption{
				Command:           o.Command,
				Features:          o.Features,
				Message:           label,
				TextOnlyIndicator: o.TextOnlyIndicator,
			})
		}
		return []datatypes.BotResponse{{
			Type:      datatypes.ResponseTypeOptions,
			Message:   prompt,
			Options:   options,
			ForceShow: t.ForceShow,
		}}, nil

	case t.Type == datatypes.ResponseTypeItems && len(t.Items) > 0:
		prompt, err := Message(t.Messages, features, locale)
		if err != nil {
			return nil, err
		}
		items := make([]datatypes.ResponseItem, 0, len(t.Items))
		for _, it := range t.Items {
			label, err := Message(it.Messages, features, locale)
			if err != nil {
				return nil, err
			}
			items = append(items, datatypes.ResponseItem{
				Type:    it.Type,
				URL:     it.URL,
				Message: label,
			})
		}
		return []datatypes.BotResponse{{
			Type:    datatypes.ResponseTypeItems,
			Message: prompt,
			Items:   items,
		}}, nil
	}

	return nil, datatypes.NewBotError(datatypes.ErrInvalidResponseType,
		"response type %q with empty body", t.Type)
}

// Message picks one variant at random and formats it for the locale.
func Message(messages []datatypes.LocalizedText, features map[string]any, locale string) (string, error) {
	if len(messages) == 0 {
		return "", datatypes.NewBotError(datatypes.ErrInvalidResponseType, "no messages")
	}
	variant := messages[rand.Intn(len(messages))]
	template, ok := variant[locale]
	if !ok {
		return "", datatypes.NewBotError(datatypes.ErrInvalidResponseType,
			"no template for locale %q", locale)
	}
	return Format(template, features), nil
}

// Format expands the ICU subset against the feature map. Unknown keys
// render as empty strings, matching the original engine.
func Format(template string, features map[string]any) string {
	var b strings.Builder
	for i := 0; i < len(template); {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}
		end := matchBrace(template, i)
		if end < 0 {
			// Unbalanced brace: emit literally.
			b.WriteString(template[i:])
			break
		}
		b.WriteString(expand(template[i+1:end], features))
		i = end + 1
	}
	return b.String()
}

// expand evaluates the inside of one {...} argument.
func expand(arg string, features map[string]any) string {
	name, rest, hasType := strings.Cut(arg, ",")
	name = strings.TrimSpace(name)
	value := features[name]
	if !hasType {
		return stringify(value)
	}
	kind, spec, _ := strings.Cut(rest, ",")
	switch strings.TrimSpace(kind) {
	case "plural":
		return pluralBranch(spec, value)
	case "date":
		return formatDate(strings.TrimSpace(spec), value)
	default:
		return stringify(value)
	}
}

// pluralBranch selects the "one" or "other" branch by numeric value.
func pluralBranch(spec string, value any) string {
	branches := parseBranches(spec)
	n, err := toFloat(value)
	branch := "other"
	if err == nil && n == 1 {
		branch = "one"
	}
	if text, ok := branches[branch]; ok {
		return strings.TrimSpace(text)
	}
	if text, ok := branches["other"]; ok {
		return strings.TrimSpace(text)
	}
	return ""
}

// parseBranches reads `name {body} name {body} ...` pairs.
func parseBranches(spec string) map[string]string {
	out := map[string]string{}
	i := 0
	for i < len(spec) {
		open := strings.IndexByte(spec[i:], '{')
		if open < 0 {
			break
		}
		open += i
		name := strings.TrimSpace(spec[i:open])
		closing := matchBrace(spec, open)
		if closing < 0 {
			break
		}
		out[name] = spec[open+1 : closing]
		i = closing + 1
	}
	return out
}

// matchBrace returns the index of the brace closing the one at open, or
// -1 when unbalanced.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func formatDate(style string, value any) string {
	t, ok := toTime(value)
	if !ok {
		return stringify(value)
	}
	switch style {
	case "short":
		return t.Format("02/01/2006")
	case "long":
		return t.Format("2 January 2006")
	default:
		return t.Format(time.RFC1123)
	}
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	}
	return time.Time{}, false
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("not numeric: %T", value)
	}
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// FeaturesToAny widens a string feature map for template rendering.
func FeaturesToAny(features map[string]string) map[string]any {
	out := make(map[string]any, len(features))
	for k, v := range features {
		out[k] = v
	}
	return out
}
