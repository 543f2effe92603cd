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

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// MessageRepository persists the per-sender message log. Message ids
// embed the creation timestamp so a prefix scan yields entries in
// chronological order.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository returns a message repository on db.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func messageKey(uni, senderID, id string) []byte {
	return []byte(fmt.Sprintf("message/%s/%s/%s", uni, senderID, id))
}

// Create assigns a time-ordered id and stores the message.
func (r *MessageRepository) Create(ctx context.Context, msg *datatypes.Message) (*datatypes.Message, error) {
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("%020d-%s", msg.Date.UnixNano(), uuid.NewString())
	}
	return r.put(ctx, msg)
}

// Save rewrites an existing message in place.
func (r *MessageRepository) Save(ctx context.Context, msg *datatypes.Message) (*datatypes.Message, error) {
	if msg.ID == "" {
		return nil, fmt.Errorf("save message: missing id")
	}
	return r.put(ctx, msg)
}

func (r *MessageRepository) put(ctx context.Context, msg *datatypes.Message) (*datatypes.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message %s: %w", msg.ID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg.Uni, msg.SenderID, msg.ID), raw)
	})
	if err != nil {
		return nil, fmt.Errorf("store message %s: %w", msg.ID, err)
	}
	return msg, nil
}

// FindByUniSenderIssue lists a sender's messages linked to one issue,
// oldest first.
func (r *MessageRepository) FindByUniSenderIssue(ctx context.Context, uni, senderID, issueID string) ([]*datatypes.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(fmt.Sprintf("message/%s/%s/", uni, senderID))
	var out []*datatypes.Message
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg datatypes.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				if msg.IssueID == issueID {
					out = append(out, &msg)
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
		return nil, fmt.Errorf("list messages %s/%s: %w", uni, senderID, err)
	}
	return out, nil
}

// CountAll counts every logged message across tenants.
func (r *MessageRepository) CountAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("message/")
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
