// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/render"
)

// ConversationIntent redirects an active multi-turn conversation: all
// resolved commands are replaced with one command for the conversation
// intent, carrying the conversation features overlaid with whatever
// features this turn's resolution extracted.
func ConversationIntent() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Session != nil && c.Session.HasConversation() {
			features, err := c.Session.ConversationFeatures()
			if err != nil {
				return err
			}
			for _, command := range c.Commands {
				for k, v := range command.Features {
					features[k] = v
				}
			}
			intent, err := c.Session.ConversationIntent()
			if err != nil {
				return err
			}
			command := datatypes.NewCommandContext(intent.Command, features)
			command.Intent = intent
			c.Commands = []*datatypes.CommandContext{command}
		}
		return next()
	}
}

// StartConversation turns a missing-required-feature failure into a
// follow-up question. The intent's absent prompt with the lowest
// priority value is rendered onto the command and a conversation is
// opened (or its features updated when one is already running) so the
// next inbound message resumes the same intent.
//
// Only a single-command resolution is recoverable; anything else
// propagates.
func StartConversation() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		err := next()
		if err == nil {
			return nil
		}
		if c.Session == nil || c.Request == nil || len(c.Commands) != 1 ||
			!datatypes.IsBotError(err, datatypes.ErrMissingRequiredFeature) {
			return err
		}

		command := c.Commands[0]
		intent := command.Intent
		if intent == nil || len(intent.MissingFeatures) == 0 {
			return err
		}

		if c.Session.HasConversation() {
			if uerr := c.Session.UpdateConversationFeatures(command.Features); uerr != nil {
				return uerr
			}
		} else {
			if serr := c.Session.StartConversation(intent, command.Features); serr != nil {
				return serr
			}
		}

		prompt, ok := absentPrompt(intent, command.Features)
		if !ok {
			return err
		}
		responses, rerr := render.Response(prompt.Response, render.FeaturesToAny(command.Features), c.Request.Locale)
		if rerr != nil {
			return rerr
		}
		command.Responses = responses
		return nil
	}
}

// absentPrompt picks the prompt of the highest-priority feature still
// missing. Lower priority values ask first.
func absentPrompt(intent *datatypes.Intent, features map[string]string) (datatypes.MissingFeaturePrompt, bool) {
	var (
		best  datatypes.MissingFeaturePrompt
		found bool
	)
	for key, prompt := range intent.MissingFeatures {
		if _, present := features[key]; present {
			continue
		}
		if !found || prompt.Priority < best.Priority {
			best = prompt
			found = true
		}
	}
	return best, found
}
