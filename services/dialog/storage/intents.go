// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// intentFile is the on-disk shape: one YAML document holding a list of
// intent definitions.
type intentFile struct {
	Intents []datatypes.Intent `yaml:"intents"`
}

// IntentRepository serves intent definitions authored as YAML files in
// one directory. Definitions are validated on load and hot-reloaded
// when the directory changes; a reload that fails validation keeps the
// previous definitions serving.
type IntentRepository struct {
	dir      string
	logger   *slog.Logger
	validate *validator.Validate

	mu      sync.RWMutex
	intents map[string]*datatypes.Intent

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewIntentRepository loads every *.yaml / *.yml file under dir.
func NewIntentRepository(dir string, logger *slog.Logger) (*IntentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &IntentRepository{
		dir:      dir,
		logger:   logger,
		validate: validator.New(),
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func intentKey(uni, command string) string {
	return uni + "/" + command
}

// FindByUniAndCommand resolves a definition; an unknown command gets
// (nil, nil).
func (r *IntentRepository) FindByUniAndCommand(ctx context.Context, uni, command string) (*datatypes.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.intents[intentKey(uni, command)], nil
}

// All returns every loaded definition. Admin surface only.
func (r *IntentRepository) All() []*datatypes.Intent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*datatypes.Intent, 0, len(r.intents))
	for _, intent := range r.intents {
		out = append(out, intent)
	}
	return out
}

func (r *IntentRepository) reload() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("read intent directory %s: %w", r.dir, err)
	}

	loaded := map[string]*datatypes.Intent{}
	for _, entry := range entries {
		if entry.IsDir() || !yamlFile(entry.Name()) {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read intent file %s: %w", path, err)
		}
		var file intentFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("parse intent file %s: %w", path, err)
		}
		for i := range file.Intents {
			intent := file.Intents[i]
			if err := r.validate.Struct(intent); err != nil {
				return fmt.Errorf("invalid intent %s/%s in %s: %w", intent.Uni, intent.Command, path, err)
			}
			loaded[intentKey(intent.Uni, intent.Command)] = &intent
		}
	}

	r.mu.Lock()
	r.intents = loaded
	r.mu.Unlock()
	return nil
}

func yamlFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Watch hot-reloads the directory on change, debounced so an editor
// save burst triggers one reload. Call Close to stop.
func (r *IntentRepository) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create intent watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch intent directory %s: %w", r.dir, err)
	}
	r.watcher = watcher
	r.done = make(chan struct{})

	go func() {
		const debounce = 250 * time.Millisecond
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-r.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !yamlFile(event.Name) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
					fire = timer.C
				} else {
					timer.Reset(debounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("intent watcher error", "error", err)
			case <-fire:
				timer = nil
				fire = nil
				if err := r.reload(); err != nil {
					r.logger.Error("intent reload failed, keeping previous definitions", "error", err)
					continue
				}
				r.logger.Info("intent definitions reloaded", "dir", r.dir)
			}
		}
	}()
	return nil
}

// Close stops the watcher. Safe to call when Watch was never started.
func (r *IntentRepository) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	return r.watcher.Close()
}
