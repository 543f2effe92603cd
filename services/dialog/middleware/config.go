// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware implements every stage of the dialog pipeline and
// the default stack wiring them together.
package middleware

import (
	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// GlobalConfig loads the GLOBAL pseudo-tenant configuration shared by
// every dialog agent.
func GlobalConfig() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		configs, err := c.Configs.FindByUni(c.Ctx, datatypes.GlobalUni)
		if err != nil {
			return err
		}
		c.UniConfigs.Merge(configs)
		return next()
	}
}

// UnitConfig overlays the tenant's own configuration onto the global
// entries.
func UnitConfig() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		configs, err := c.Configs.FindByUni(c.Ctx, c.Uni)
		if err != nil {
			return err
		}
		c.UniConfigs.Merge(configs)
		return next()
	}
}
