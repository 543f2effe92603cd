// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"strings"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// MessengerWhiteList short-circuits with 404 when the tenant restricts
// channels and the current one is not listed. No white list means every
// channel is allowed.
func MessengerWhiteList() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		names, ok := c.UniConfigs.StringList(datatypes.ConfigMessengerWhiteList)
		if !ok {
			return next()
		}
		for _, name := range names {
			if strings.EqualFold(name, c.Messenger.Name()) {
				return next()
			}
		}
		c.Status = http.StatusNotFound
		return nil
	}
}
