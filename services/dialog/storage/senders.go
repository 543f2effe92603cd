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

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// SenderInfoRepository persists sender profiles keyed by
// (uni, messenger, sender).
type SenderInfoRepository struct {
	db *DB
}

// NewSenderInfoRepository returns a sender info repository on db.
func NewSenderInfoRepository(db *DB) *SenderInfoRepository {
	return &SenderInfoRepository{db: db}
}

func senderKey(uni, messenger, senderID string) []byte {
	return []byte(fmt.Sprintf("sender/%s/%s/%s", uni, messenger, senderID))
}

// Create stores the profile, replacing any previous one for the same
// sender.
func (r *SenderInfoRepository) Create(ctx context.Context, info *datatypes.SenderInfo) (*datatypes.SenderInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode sender info: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(senderKey(info.Uni, info.Messenger, info.SenderID), raw)
	})
	if err != nil {
		return nil, fmt.Errorf("store sender info: %w", err)
	}
	return info, nil
}

// FindOneByUniMessengerSender loads a profile; unknown senders get
// (nil, nil).
func (r *SenderInfoRepository) FindOneByUniMessengerSender(ctx context.Context, uni, messenger, senderID string) (*datatypes.SenderInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var info *datatypes.SenderInfo
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(senderKey(uni, messenger, senderID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			info = &datatypes.SenderInfo{}
			return json.Unmarshal(val, info)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load sender info %s/%s/%s: %w", uni, messenger, senderID, err)
	}
	return info, nil
}
