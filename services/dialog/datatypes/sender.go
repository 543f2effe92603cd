// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// SenderInfo is the optional per-channel profile of a sender, used by
// pre-processors to personalize responses.
type SenderInfo struct {
	Uni       string `json:"uni"`
	Messenger string `json:"messenger"`
	SenderID  string `json:"senderId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Locale    string `json:"locale,omitempty"`
}
