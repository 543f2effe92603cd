// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// IssueStatus is the lifecycle state of a support issue.
type IssueStatus string

const (
	IssueOpen   IssueStatus = "OPEN"
	IssueClosed IssueStatus = "CLOSED"
)

// Issue is a human-handoff ticket. At most one OPEN issue exists per
// (uni, sender); the escalation stage enforces this, not the store.
type Issue struct {
	ID              string      `json:"id"`
	Uni             string      `json:"uni"`
	SenderID        string      `json:"senderId"`
	Messenger       string      `json:"messenger"`
	Status          IssueStatus `json:"status"`
	OpenDate        time.Time   `json:"openDate"`
	ClosedDate      *time.Time  `json:"closedDate,omitempty"`
	LastUpdatedDate time.Time   `json:"lastUpdatedDate"`
}
