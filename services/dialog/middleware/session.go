// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

// defaultSessionExpire applies when SESSION_EXPIRE_IN_MS is not
// configured for the tenant.
const defaultSessionExpire = 15 * time.Minute

// SessionService loads or creates the sender's session on the way in
// and ages and persists it on the way out. The save only happens when
// the inner stages succeed; a failed run leaves the stored session
// untouched.
func SessionService() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if c.Request == nil {
			return next()
		}

		expire := defaultSessionExpire
		if ms, ok := c.UniConfigs.Int(datatypes.ConfigSessionExpireInMS); ok {
			expire = time.Duration(ms) * time.Millisecond
		} else {
			c.Logger.Warn("config not found, using default session expiry",
				"key", datatypes.ConfigSessionExpireInMS)
		}

		svc := session.NewService(c.Sessions, c.Uni, c.Request.SenderID, expire)
		if err := svc.Init(c.Ctx); err != nil {
			return err
		}
		c.Session = svc

		if err := next(); err != nil {
			return err
		}
		return svc.Save(c.Ctx)
	}
}
