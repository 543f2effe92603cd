// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/files"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/registry"
	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

// =============================================================================
// In-memory fakes
// =============================================================================

type fakeIntents struct {
	intents map[string]*datatypes.Intent
}

func (f *fakeIntents) add(intent *datatypes.Intent) {
	f.intents[intent.Uni+"/"+intent.Command] = intent
}

func (f *fakeIntents) FindByUniAndCommand(ctx context.Context, uni, command string) (*datatypes.Intent, error) {
	return f.intents[uni+"/"+command], nil
}

type fakeConfigs struct {
	configs map[string][]datatypes.Config
}

func (f *fakeConfigs) set(uni, key string, value any) {
	f.configs[uni] = append(f.configs[uni], datatypes.Config{Uni: uni, Key: key, Value: value})
}

func (f *fakeConfigs) FindByUni(ctx context.Context, uni string) ([]datatypes.Config, error) {
	return f.configs[uni], nil
}

type fakeIssues struct {
	mu     sync.Mutex
	issues []*datatypes.Issue
	nextID int
}

func (f *fakeIssues) Create(ctx context.Context, issue *datatypes.Issue) (*datatypes.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	issue.ID = fmt.Sprintf("issue-%d", f.nextID)
	f.issues = append(f.issues, issue)
	return issue, nil
}

func (f *fakeIssues) Save(ctx context.Context, issue *datatypes.Issue) (*datatypes.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.issues {
		if existing.ID == issue.ID {
			f.issues[i] = issue
			return issue, nil
		}
	}
	return nil, fmt.Errorf("issue %s not found", issue.ID)
}

func (f *fakeIssues) FindOpenByUniAndSender(ctx context.Context, uni, senderID string) ([]*datatypes.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []*datatypes.Issue
	for _, issue := range f.issues {
		if issue.Uni == uni && issue.SenderID == senderID && issue.Status == datatypes.IssueOpen {
			open = append(open, issue)
		}
	}
	return open, nil
}

func (f *fakeIssues) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, issue := range f.issues {
		if issue.Status == datatypes.IssueOpen {
			count++
		}
	}
	return count
}

type fakeMessages struct {
	mu       sync.Mutex
	messages []*datatypes.Message
	nextID   int
}

func (f *fakeMessages) Create(ctx context.Context, msg *datatypes.Message) (*datatypes.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg.ID = fmt.Sprintf("msg-%d", f.nextID)
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeMessages) Save(ctx context.Context, msg *datatypes.Message) (*datatypes.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.messages {
		if existing.ID == msg.ID {
			f.messages[i] = msg
			return msg, nil
		}
	}
	return nil, fmt.Errorf("message %s not found", msg.ID)
}

func (f *fakeMessages) FindByUniSenderIssue(ctx context.Context, uni, senderID, issueID string) ([]*datatypes.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*datatypes.Message
	for _, msg := range f.messages {
		if msg.Uni == uni && msg.SenderID == senderID && msg.IssueID == issueID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessages) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.messages)), nil
}

// seed writes a log entry directly, bypassing the pipeline.
func (f *fakeMessages) seed(msg *datatypes.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg.ID = fmt.Sprintf("msg-%d", f.nextID)
	f.messages = append(f.messages, msg)
}

func (f *fakeMessages) requestMessages() []*datatypes.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*datatypes.Message
	for _, msg := range f.messages {
		if msg.Type == datatypes.MessageRequest {
			out = append(out, msg)
		}
	}
	return out
}

type fakeSenders struct {
	infos map[string]*datatypes.SenderInfo
}

func (f *fakeSenders) Create(ctx context.Context, info *datatypes.SenderInfo) (*datatypes.SenderInfo, error) {
	f.infos[info.Uni+"/"+info.Messenger+"/"+info.SenderID] = info
	return info, nil
}

func (f *fakeSenders) FindOneByUniMessengerSender(ctx context.Context, uni, messenger, senderID string) (*datatypes.SenderInfo, error) {
	return f.infos[uni+"/"+messenger+"/"+senderID], nil
}

type fakeSessions struct {
	mu     sync.Mutex
	stored map[string]*session.Session
}

func (f *fakeSessions) FindByUniAndSender(ctx context.Context, uni, senderID string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored[uni+"/"+senderID], nil
}

func (f *fakeSessions) Save(ctx context.Context, uni, senderID string, s *session.Session, expire time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[uni+"/"+senderID] = s
	return nil
}

// scriptedNLP maps exact messages to resolved commands.
type scriptedNLP struct {
	script map[string][]datatypes.BotCommand
}

func (s *scriptedNLP) Analyse(ctx context.Context, message, uni string, memories []datatypes.IntentMemory) ([]datatypes.BotCommand, error) {
	return s.script[message], nil
}

// testMessenger passes BotRequests through untouched and records what
// was sent.
type testMessenger struct {
	mu   sync.Mutex
	sent [][]any
}

func (m *testMessenger) Name() string { return "test" }

func (m *testMessenger) Request(raw any) (*datatypes.BotRequest, error) {
	req, ok := raw.(*datatypes.BotRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected raw payload %T", raw)
	}
	return req, nil
}

func (m *testMessenger) Response(responses []datatypes.BotResponse, senderID string, raw any) ([]any, error) {
	out := make([]any, 0, len(responses))
	for _, r := range responses {
		out = append(out, r)
	}
	return out, nil
}

func (m *testMessenger) Send(ctx context.Context, payloads []any, configs datatypes.ConfigMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, payloads)
	return nil
}

type fakeFiles struct {
	file files.File
}

func (f *fakeFiles) Copy(ctx context.Context, url string) (files.File, error) {
	return f.file, nil
}

// =============================================================================
// Harness
// =============================================================================

// bot wires the default stack against the in-memory fakes.
type bot struct {
	intents  *fakeIntents
	configs  *fakeConfigs
	issues   *fakeIssues
	messages *fakeMessages
	senders  *fakeSenders
	sessions *fakeSessions
	nlp      *scriptedNLP
	msgr     *testMessenger
	files    *fakeFiles
	chain    *pipeline.Chain
	logger   *slog.Logger
}

func newBot() *bot {
	return &bot{
		intents:  &fakeIntents{intents: map[string]*datatypes.Intent{}},
		configs:  &fakeConfigs{configs: map[string][]datatypes.Config{}},
		issues:   &fakeIssues{},
		messages: &fakeMessages{},
		senders:  &fakeSenders{infos: map[string]*datatypes.SenderInfo{}},
		sessions: &fakeSessions{stored: map[string]*session.Session{}},
		nlp:      &scriptedNLP{script: map[string][]datatypes.BotCommand{}},
		msgr:     &testMessenger{},
		files:    &fakeFiles{},
		chain:    DefaultStack(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (b *bot) run(t *testing.T, uni string, req *datatypes.BotRequest) *pipeline.Context {
	t.Helper()
	c := pipeline.NewContext(context.Background(), uni, req)
	c.Messenger = b.msgr
	c.Intents = b.intents
	c.Configs = b.configs
	c.Issues = b.issues
	c.Messages = b.messages
	c.Senders = b.senders
	c.Sessions = b.sessions
	c.NLP = b.nlp
	c.Files = b.files
	c.Transcoder = files.NopTranscoder{}
	c.Registry = registry.New(b.logger, nil, nil, nil)
	c.Logger = b.logger
	require.NoError(t, b.chain.Run(c))
	return c
}

// send runs one text turn through the full default stack.
func (b *bot) send(t *testing.T, uni, senderID, message string) *pipeline.Context {
	t.Helper()
	return b.run(t, uni, &datatypes.BotRequest{
		Type:     datatypes.RequestTypeText,
		Locale:   "en-GB",
		SenderID: senderID,
		Message:  message,
	})
}

// textMessages extracts the TEXT payloads of a run.
func textMessages(responses []datatypes.BotResponse) []string {
	var out []string
	for _, r := range responses {
		out = append(out, r.Message)
	}
	return out
}

func textIntent(uni, command, template string) *datatypes.Intent {
	return &datatypes.Intent{
		Uni:     uni,
		Command: command,
		Responses: []datatypes.ResponseTemplate{{
			Type:     datatypes.ResponseTypeText,
			Messages: []datatypes.LocalizedText{{"en-GB": template}},
		}},
	}
}
