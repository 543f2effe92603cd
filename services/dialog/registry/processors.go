// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var datePattern = regexp.MustCompile(`(?i)date`)

// SenderNamePreProcessor injects the sender's profile name into the
// feature map so greeting templates can address the sender.
func SenderNamePreProcessor(ctx context.Context, pc ProcessorContext, features map[string]string) (map[string]string, error) {
	firstName, lastName := "", ""
	if pc.SenderInfo != nil {
		firstName = pc.SenderInfo.FirstName
		lastName = pc.SenderInfo.LastName
	}
	features["SENDER_FIRST_NAME"] = firstName
	features["SENDER_LAST_NAME"] = lastName
	features["SENDER_NAME"] = strings.TrimSpace(firstName + " " + lastName)
	return features, nil
}

// DatePostProcessor converts features whose key mentions "date" from
// epoch milliseconds to time.Time so date formatting applies.
func DatePostProcessor(ctx context.Context, pc ProcessorContext, features map[string]any) (map[string]any, error) {
	for key, value := range features {
		if !datePattern.MatchString(key) {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		millis, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		features[key] = time.UnixMilli(millis)
	}
	return features, nil
}
