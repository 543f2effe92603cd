// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"strings"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

// IntentOption resolves a short reply ("A", "B", ...) against the
// pending option menu on the way in, and captures a freshly rendered
// menu as the new pending one on the way out.
//
// A reply resolves only when it matches exactly one option and no
// commands were resolved earlier; the menu is consumed on match. After
// the inner stages run, exactly one OPTIONS response becomes the new
// pending menu with a zeroed live count.
func IntentOption() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Session != nil && c.Request != nil && c.Request.Message != "" &&
			c.Session.HasOptions() && len(c.Commands) == 0 {
			options, err := c.Session.Options()
			if err != nil {
				return err
			}
			var matched []session.Option
			for _, o := range options {
				if indicatorMatch(o.TextOnlyIndicator, c.Request.Message) {
					matched = append(matched, o)
				}
			}
			if len(matched) == 1 {
				c.Commands = []*datatypes.CommandContext{
					datatypes.NewCommandContext(matched[0].Command, matched[0].Features),
				}
				c.Session.RemoveOptions()
			}
		}

		if err := next(); err != nil {
			return err
		}

		if c.Session == nil {
			return nil
		}
		var menus []datatypes.BotResponse
		for _, r := range c.Responses {
			if r.Type == datatypes.ResponseTypeOptions {
				menus = append(menus, r)
			}
		}
		if len(menus) == 1 && len(menus[0].Options) > 0 {
			pending := make([]session.Option, 0, len(menus[0].Options))
			for _, o := range menus[0].Options {
				pending = append(pending, session.Option{
					Command:           o.Command,
					Features:          o.Features,
					TextOnlyIndicator: o.TextOnlyIndicator,
				})
			}
			c.Session.SetOptions(pending)
		}
		return nil
	}
}

func indicatorMatch(indicator, message string) bool {
	return strings.EqualFold(strings.TrimSpace(indicator), strings.TrimSpace(message))
}

// ContinuousOptionsToText demotes OPTIONS responses to plain TEXT on
// option-driven turns, keeping only the prompt. Menus marked forceShow
// stay menus. Without this, picking an option from a menu that renders
// another menu would stack interactive menus turn after turn.
func ContinuousOptionsToText() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		optionDriven := len(c.Commands) > 0
		if err := next(); err != nil {
			return err
		}
		if !optionDriven {
			return nil
		}
		for i, r := range c.Responses {
			if r.Type == datatypes.ResponseTypeOptions && !r.ForceShow {
				c.Responses[i] = datatypes.BotResponse{
					Type:    datatypes.ResponseTypeText,
					Message: r.Message,
				}
			}
		}
		return nil
	}
}
