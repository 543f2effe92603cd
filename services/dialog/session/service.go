// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

var (
	// ErrConversationActive is returned by StartConversation when a
	// conversation is already open. The session is left untouched.
	ErrConversationActive = errors.New("session: conversation already active")

	// ErrNoConversation is returned by conversation accessors when no
	// conversation is active.
	ErrNoConversation = errors.New("session: no active conversation")

	// ErrNoOptions is returned by Options when no menu is pending.
	ErrNoOptions = errors.New("session: no pending options")
)

// Service wraps one loaded session with the state-machine operations the
// pipeline uses. Not safe for concurrent use; each request owns one.
type Service struct {
	repo     Repository
	uni      string
	senderID string
	expire   time.Duration
	session  *Session
}

// NewService builds a service bound to one (uni, sender). Call Init
// before anything else.
func NewService(repo Repository, uni, senderID string, expire time.Duration) *Service {
	return &Service{repo: repo, uni: uni, senderID: senderID, expire: expire}
}

// Init loads the stored session or creates a fresh one on first contact.
func (s *Service) Init(ctx context.Context) error {
	if s.session != nil {
		return nil
	}
	stored, err := s.repo.FindByUniAndSender(ctx, s.uni, s.senderID)
	if err != nil {
		return err
	}
	if stored == nil {
		stored = &Session{ID: uuid.NewString(), Memories: []Memory{}}
	}
	s.session = stored
	return nil
}

// Save ages the session and persists it: every memory loses one remaining
// turn and memories at zero or below are dropped; every pending option's
// LiveCount is incremented.
func (s *Service) Save(ctx context.Context) error {
	kept := s.session.Memories[:0]
	for _, m := range s.session.Memories {
		m.Remaining--
		if m.Remaining > 0 {
			kept = append(kept, m)
		}
	}
	s.session.Memories = kept
	for i := range s.session.LastOptions {
		s.session.LastOptions[i].LiveCount++
	}
	return s.repo.Save(ctx, s.uni, s.senderID, s.session, s.expire)
}

// ID returns the session id.
func (s *Service) ID() string {
	return s.session.ID
}

// AddMemory appends a memory for the intent's configured number of turns.
func (s *Service) AddMemory(intent *datatypes.Intent, features map[string]string) {
	s.session.Memories = append(s.session.Memories, Memory{
		Remaining: intent.MemoryTurns(),
		Features:  copyFeatures(features),
		Intent:    intent,
	})
}

// MemoriesFeatures folds all live memories' features into one map. Later
// memories win on key collisions.
func (s *Service) MemoriesFeatures() map[string]string {
	merged := map[string]string{}
	for _, m := range s.session.Memories {
		for k, v := range m.Features {
			merged[k] = v
		}
	}
	return merged
}

// IntentMemories returns the remembered (command, features) pairs handed
// to the classifier.
func (s *Service) IntentMemories() []datatypes.IntentMemory {
	out := make([]datatypes.IntentMemory, 0, len(s.session.Memories))
	for _, m := range s.session.Memories {
		out = append(out, datatypes.IntentMemory{
			Command:  m.Intent.Command,
			Features: m.Features,
		})
	}
	return out
}

// StartConversation opens a multi-turn conversation. Fails without
// mutating state if one is already active.
func (s *Service) StartConversation(intent *datatypes.Intent, features map[string]string) error {
	if s.session.Conversation != nil {
		return ErrConversationActive
	}
	s.session.Conversation = &Conversation{Intent: intent, Features: copyFeatures(features)}
	return nil
}

// HasConversation reports whether a conversation is active.
func (s *Service) HasConversation() bool {
	return s.session.Conversation != nil
}

// ConversationIntent returns the active conversation's intent.
func (s *Service) ConversationIntent() (*datatypes.Intent, error) {
	if s.session.Conversation == nil {
		return nil, ErrNoConversation
	}
	return s.session.Conversation.Intent, nil
}

// ConversationFeatures returns a copy of the active conversation's
// features.
func (s *Service) ConversationFeatures() (map[string]string, error) {
	if s.session.Conversation == nil {
		return nil, ErrNoConversation
	}
	return copyFeatures(s.session.Conversation.Features), nil
}

// UpdateConversationFeatures replaces the active conversation's features.
func (s *Service) UpdateConversationFeatures(features map[string]string) error {
	if s.session.Conversation == nil {
		return ErrNoConversation
	}
	s.session.Conversation.Features = copyFeatures(features)
	return nil
}

// EndConversation clears the conversation unconditionally.
func (s *Service) EndConversation() {
	s.session.Conversation = nil
}

// SetOptions replaces the pending option menu.
func (s *Service) SetOptions(options []Option) {
	s.session.LastOptions = options
}

// HasOptions reports whether an option menu is pending.
func (s *Service) HasOptions() bool {
	return s.session.LastOptions != nil
}

// Options returns the pending option menu.
func (s *Service) Options() ([]Option, error) {
	if s.session.LastOptions == nil {
		return nil, ErrNoOptions
	}
	return s.session.LastOptions, nil
}

// RemoveOptions consumes the pending option menu.
func (s *Service) RemoveOptions() {
	s.session.LastOptions = nil
}

func copyFeatures(features map[string]string) map[string]string {
	out := make(map[string]string, len(features))
	for k, v := range features {
		out[k] = v
	}
	return out
}
