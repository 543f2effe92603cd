// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// IssueRepository persists support issues keyed by (uni, sender, id).
type IssueRepository struct {
	db *DB
}

// NewIssueRepository returns an issue repository on db.
func NewIssueRepository(db *DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func issueKey(uni, senderID, id string) []byte {
	return []byte(fmt.Sprintf("issue/%s/%s/%s", uni, senderID, id))
}

// Create assigns an id and stores the issue.
func (r *IssueRepository) Create(ctx context.Context, issue *datatypes.Issue) (*datatypes.Issue, error) {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	return r.put(ctx, issue)
}

// Save stores an existing issue. An issue without an id has never been
// created and is rejected.
func (r *IssueRepository) Save(ctx context.Context, issue *datatypes.Issue) (*datatypes.Issue, error) {
	if issue.ID == "" {
		return nil, fmt.Errorf("save issue: missing id")
	}
	return r.put(ctx, issue)
}

func (r *IssueRepository) put(ctx context.Context, issue *datatypes.Issue) (*datatypes.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("encode issue %s: %w", issue.ID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(issueKey(issue.Uni, issue.SenderID, issue.ID), raw)
	})
	if err != nil {
		return nil, fmt.Errorf("store issue %s: %w", issue.ID, err)
	}
	return issue, nil
}

// FindOpenByUniAndSender lists the sender's open issues, oldest first.
func (r *IssueRepository) FindOpenByUniAndSender(ctx context.Context, uni, senderID string) ([]*datatypes.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(fmt.Sprintf("issue/%s/%s/", uni, senderID))
	var open []*datatypes.Issue
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var issue datatypes.Issue
				if err := json.Unmarshal(val, &issue); err != nil {
					return err
				}
				if issue.Status == datatypes.IssueOpen {
					open = append(open, &issue)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list open issues %s/%s: %w", uni, senderID, err)
	}
	sort.Slice(open, func(i, j int) bool { return open[i].OpenDate.Before(open[j].OpenDate) })
	return open, nil
}
