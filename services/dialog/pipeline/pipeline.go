// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline is the onion-style middleware executor at the heart
// of the dialog engine.
//
// Stages register under a numeric priority and run in ascending order.
// Each stage receives the shared Context and a next function: code before
// next() runs on the way in, code after it runs on the way out in reverse
// order. A stage that skips next() short-circuits everything below it; a
// stage that wraps next() in error handling intercepts failures raised
// further down.
package pipeline

import (
	"fmt"
	"sort"
)

// Next advances the chain to the following stage.
type Next func() error

// Middleware is one pipeline stage.
type Middleware func(c *Context, next Next) error

// Stage is a named middleware registered at a priority.
type Stage struct {
	Priority int
	Name     string
	Handler  Middleware
}

// Chain is an ordered middleware registry keyed by priority. Build it
// once at startup; Run composes and executes it per request.
type Chain struct {
	stages map[int]Stage
}

// NewChain returns an empty chain.
func NewChain() *Chain {
	return &Chain{stages: map[int]Stage{}}
}

// Use registers a stage. A duplicate priority is a configuration error:
// resolution order between ties would be unspecified.
func (ch *Chain) Use(stage Stage) error {
	if existing, ok := ch.stages[stage.Priority]; ok {
		return fmt.Errorf("pipeline: priority %d already taken by %s", stage.Priority, existing.Name)
	}
	ch.stages[stage.Priority] = stage
	return nil
}

// Merge overlays stages onto the chain, replacing any stage registered
// at the same priority. This is how caller overrides are applied over
// the default stack.
func (ch *Chain) Merge(stages []Stage) {
	for _, s := range stages {
		ch.stages[s.Priority] = s
	}
}

// Stages returns the registered stages in ascending priority order.
func (ch *Chain) Stages() []Stage {
	out := make([]Stage, 0, len(ch.stages))
	for _, s := range ch.stages {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// Run executes the chain against one request context. A panic in any
// stage is converted to an error so a misbehaving stage cannot crash the
// host; the returned error is whatever escaped the outermost stage.
func (ch *Chain) Run(c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: panic in stage: %v", r)
		}
	}()
	return ch.start(c, ch.Stages(), 0)()
}

// start builds the composed entry point: stage i calls stage i+1 through
// the Next it is handed.
func (ch *Chain) start(c *Context, stages []Stage, index int) Next {
	if index >= len(stages) {
		return func() error { return nil }
	}
	return func() error {
		// Aborted requests stop descending; unwind logic of stages
		// already entered still runs.
		if err := c.Ctx.Err(); err != nil {
			return err
		}
		return stages[index].Handler(c, ch.start(c, stages, index+1))
	}
}
