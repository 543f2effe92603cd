// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"encoding/json"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// RemoveDuplicateResponse drops structurally identical responses,
// keeping the first occurrence. Not part of the default stack: repeated
// answers can be intentional ("Yes. Yes. YES."), so tenants opt in via
// a stack override.
func RemoveDuplicateResponse() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		if err := next(); err != nil {
			return err
		}
		if len(c.Responses) <= 1 {
			return nil
		}
		seen := map[string]struct{}{}
		kept := make([]datatypes.BotResponse, 0, len(c.Responses))
		for _, r := range c.Responses {
			raw, err := json.Marshal(r)
			if err != nil {
				kept = append(kept, r)
				continue
			}
			if _, dup := seen[string(raw)]; dup {
				continue
			}
			seen[string(raw)] = struct{}{}
			kept = append(kept, r)
		}
		c.Responses = kept
		return nil
	}
}
