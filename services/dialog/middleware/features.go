// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/render"
)

// IntentPreProcessor runs each command's configured pre-processors over
// its raw string features, fanning out per command. Processor output
// overrides existing keys.
func IntentPreProcessor() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request == nil {
			return next()
		}
		pc := c.ProcessorContext()
		g, ctx := errgroup.WithContext(c.Ctx)
		for _, command := range c.Commands {
			if command.Intent == nil || len(command.Intent.PreProcessors) == 0 {
				continue
			}
			command := command
			g.Go(func() error {
				features := copyStringMap(command.Features)
				for _, pre := range c.Registry.PreProcessors(command.Intent.PreProcessors) {
					out, err := pre(ctx, pc, features)
					if err != nil {
						return err
					}
					for k, v := range out {
						features[k] = v
					}
				}
				command.Features = features
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return next()
	}
}

// MemoriesFeature overlays remembered session features under each
// command's own on the way in (the turn's extraction wins), and commits
// every executed command back to session memory on the way out.
func MemoriesFeature() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Session != nil {
			remembered := c.Session.MemoriesFeatures()
			for _, command := range c.Commands {
				merged := copyStringMap(remembered)
				for k, v := range command.Features {
					merged[k] = v
				}
				command.Features = merged
			}
		}
		if err := next(); err != nil {
			return err
		}
		if c.Session != nil {
			for _, command := range c.Commands {
				if command.Intent != nil {
					c.Session.AddMemory(command.Intent, command.Features)
				}
			}
		}
		return nil
	}
}

// IntentDefaultFeature fills absent feature keys from the intent's
// configured defaults. Present keys are never overwritten.
func IntentDefaultFeature() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		for _, command := range c.Commands {
			if command.Intent == nil || len(command.Intent.DefaultFeatures) == 0 {
				continue
			}
			for key, value := range command.Intent.DefaultFeatures {
				if _, present := command.Features[key]; !present {
					command.Features[key] = value
				}
			}
		}
		return next()
	}
}

// IntentRequiredFeature rejects the turn when a required feature is
// still absent after memory and default fill. The conversation stage
// recovers single-command failures with a follow-up question.
func IntentRequiredFeature() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		for _, command := range c.Commands {
			if command.Intent == nil {
				continue
			}
			for _, key := range command.Intent.RequiredFeatureKeys {
				if _, present := command.Features[key]; !present {
					return datatypes.NewBotError(datatypes.ErrMissingRequiredFeature,
						"feature %s missing for command %s", key, command.Name)
				}
			}
		}
		return next()
	}
}

// IntentPostProcessor widens each command's validated string features
// into the typed map templating consumes and runs the configured
// post-processors over it, fanning out per command.
func IntentPostProcessor() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request == nil {
			return next()
		}
		pc := c.ProcessorContext()
		g, ctx := errgroup.WithContext(c.Ctx)
		for _, command := range c.Commands {
			command := command
			g.Go(func() error {
				processed := render.FeaturesToAny(command.Features)
				if command.Intent != nil {
					for _, post := range c.Registry.PostProcessors(command.Intent.PostProcessors) {
						out, err := post(ctx, pc, processed)
						if err != nil {
							return err
						}
						for k, v := range out {
							processed[k] = v
						}
					}
				}
				command.ProcessedFeatures = processed
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return next()
	}
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
