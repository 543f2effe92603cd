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
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

// SessionRepository persists sessions with Badger's native entry TTL,
// so expiry needs no sweeper: a session the sender stopped touching
// simply disappears.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository returns a session repository on db.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func sessionKey(uni, senderID string) []byte {
	return []byte(fmt.Sprintf("session/%s/%s", uni, senderID))
}

// FindByUniAndSender loads a session. Expired or unknown senders get
// (nil, nil).
func (r *SessionRepository) FindByUniAndSender(ctx context.Context, uni, senderID string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var stored *session.Session
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(uni, senderID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored = &session.Session{}
			return json.Unmarshal(val, stored)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load session %s/%s: %w", uni, senderID, err)
	}
	return stored, nil
}

// Save stores the session with the given TTL. Every save restarts the
// expiry clock.
func (r *SessionRepository) Save(ctx context.Context, uni, senderID string, s *session.Session, expire time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s/%s: %w", uni, senderID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(uni, senderID), raw)
		if expire > 0 {
			entry = entry.WithTTL(expire)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("save session %s/%s: %w", uni, senderID, err)
	}
	return nil
}
