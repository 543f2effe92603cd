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

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// ConfigRepository persists tenant runtime configuration entries.
type ConfigRepository struct {
	db *DB
}

// NewConfigRepository returns a config repository on db.
func NewConfigRepository(db *DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func configKey(uni, key string) []byte {
	return []byte(fmt.Sprintf("config/%s/%s", uni, key))
}

// FindByUni lists every configuration entry of one tenant.
func (r *ConfigRepository) FindByUni(ctx context.Context, uni string) ([]datatypes.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(fmt.Sprintf("config/%s/", uni))
	var out []datatypes.Config
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var cfg datatypes.Config
				if err := json.Unmarshal(val, &cfg); err != nil {
					return err
				}
				out = append(out, cfg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list configs %s: %w", uni, err)
	}
	return out, nil
}

// Put stores one entry. Used by the admin surface and by seeding.
func (r *ConfigRepository) Put(ctx context.Context, cfg datatypes.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config %s/%s: %w", cfg.Uni, cfg.Key, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(configKey(cfg.Uni, cfg.Key), raw)
	})
	if err != nil {
		return fmt.Errorf("store config %s/%s: %w", cfg.Uni, cfg.Key, err)
	}
	return nil
}

// Delete removes one entry.
func (r *ConfigRepository) Delete(ctx context.Context, uni, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(configKey(uni, key))
	})
	if err != nil {
		return fmt.Errorf("delete config %s/%s: %w", uni, key, err)
	}
	return nil
}
