// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/session"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := NewSessionRepository(testDB(t))
	ctx := context.Background()

	// Unknown sender is not an error.
	found, err := repo.FindByUniAndSender(ctx, "HKU", "s1")
	require.NoError(t, err)
	assert.Nil(t, found)

	stored := &session.Session{
		ID: "sess-1",
		Memories: []session.Memory{{
			Remaining: 2,
			Features:  map[string]string{"F_BRANCH": "main"},
			Intent:    &datatypes.Intent{Uni: "HKU", Command: "C_PICK_BRANCH"},
		}},
		LastOptions: []session.Option{{Command: "C_GREETING", TextOnlyIndicator: "A", LiveCount: 1}},
	}
	require.NoError(t, repo.Save(ctx, "HKU", "s1", stored, time.Hour))

	found, err = repo.FindByUniAndSender(ctx, "HKU", "s1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "sess-1", found.ID)
	require.Len(t, found.Memories, 1)
	assert.Equal(t, "main", found.Memories[0].Features["F_BRANCH"])
	require.Len(t, found.LastOptions, 1)
	assert.Equal(t, 1, found.LastOptions[0].LiveCount)

	// Sessions are scoped per (uni, sender).
	other, err := repo.FindByUniAndSender(ctx, "CUHK", "s1")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestSessionRepository_Expiry(t *testing.T) {
	if testing.Short() {
		t.Skip("TTL expiry needs wall-clock time")
	}
	repo := NewSessionRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "HKU", "s1", &session.Session{ID: "sess-1"}, time.Second))
	time.Sleep(2100 * time.Millisecond)

	found, err := repo.FindByUniAndSender(ctx, "HKU", "s1")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestIssueRepository_OpenFilterAndOrder(t *testing.T) {
	repo := NewIssueRepository(testDB(t))
	ctx := context.Background()

	older, err := repo.Create(ctx, &datatypes.Issue{
		Uni: "HKU", SenderID: "s1", Status: datatypes.IssueOpen,
		OpenDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, older.ID)

	newer, err := repo.Create(ctx, &datatypes.Issue{
		Uni: "HKU", SenderID: "s1", Status: datatypes.IssueOpen,
		OpenDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &datatypes.Issue{
		Uni: "HKU", SenderID: "s2", Status: datatypes.IssueOpen,
		OpenDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	open, err := repo.FindOpenByUniAndSender(ctx, "HKU", "s1")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, older.ID, open[0].ID)
	assert.Equal(t, newer.ID, open[1].ID)

	// Closing drops the issue from the open list.
	now := time.Now()
	older.Status = datatypes.IssueClosed
	older.ClosedDate = &now
	_, err = repo.Save(ctx, older)
	require.NoError(t, err)

	open, err = repo.FindOpenByUniAndSender(ctx, "HKU", "s1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, newer.ID, open[0].ID)
}

func TestIssueRepository_SaveRequiresID(t *testing.T) {
	repo := NewIssueRepository(testDB(t))
	_, err := repo.Save(context.Background(), &datatypes.Issue{Uni: "HKU", SenderID: "s1"})
	assert.Error(t, err)
}

func TestMessageRepository_ChronologicalScan(t *testing.T) {
	repo := NewMessageRepository(testDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, &datatypes.Message{
			Uni: "HKU", SenderID: "s1", IssueID: "issue-1",
			Type: datatypes.MessageRequest,
			Date: base.Add(time.Duration(i) * time.Minute),
			Request: &datatypes.LoggedRequest{
				Type: datatypes.RequestTypeText, Message: text,
			},
		})
		require.NoError(t, err)
	}
	// A message on another issue is filtered out.
	_, err := repo.Create(ctx, &datatypes.Message{
		Uni: "HKU", SenderID: "s1", IssueID: "issue-2",
		Type: datatypes.MessageRequest, Date: base.Add(10 * time.Minute),
	})
	require.NoError(t, err)

	out, err := repo.FindByUniSenderIssue(ctx, "HKU", "s1", "issue-1")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].Request.Message)
	assert.Equal(t, "second", out[1].Request.Message)
	assert.Equal(t, "third", out[2].Request.Message)

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestMessageRepository_SaveRewritesInPlace(t *testing.T) {
	repo := NewMessageRepository(testDB(t))
	ctx := context.Background()

	msg, err := repo.Create(ctx, &datatypes.Message{
		Uni: "HKU", SenderID: "s1", Type: datatypes.MessageRequest,
		Date: time.Now(),
	})
	require.NoError(t, err)

	msg.Commands = []string{"C_GREETING"}
	msg.IssueID = "issue-1"
	_, err = repo.Save(ctx, msg)
	require.NoError(t, err)

	out, err := repo.FindByUniSenderIssue(ctx, "HKU", "s1", "issue-1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"C_GREETING"}, out[0].Commands)

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestConfigRepository_TenantOverridesGlobal(t *testing.T) {
	repo := NewConfigRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, datatypes.Config{
		Uni: datatypes.GlobalUni, Key: datatypes.ConfigFallbackCommandName, Value: "C_GLOBAL",
	}))
	require.NoError(t, repo.Put(ctx, datatypes.Config{
		Uni: datatypes.GlobalUni, Key: datatypes.ConfigSuspendAutoReply, Value: false,
	}))
	require.NoError(t, repo.Put(ctx, datatypes.Config{
		Uni: "HKU", Key: datatypes.ConfigFallbackCommandName, Value: "C_HKU",
	}))

	merged := datatypes.ConfigMap{}
	global, err := repo.FindByUni(ctx, datatypes.GlobalUni)
	require.NoError(t, err)
	merged.Merge(global)
	tenant, err := repo.FindByUni(ctx, "HKU")
	require.NoError(t, err)
	merged.Merge(tenant)

	name, ok := merged.String(datatypes.ConfigFallbackCommandName)
	require.True(t, ok)
	assert.Equal(t, "C_HKU", name)
	suspend, ok := merged.Bool(datatypes.ConfigSuspendAutoReply)
	require.True(t, ok)
	assert.False(t, suspend)
}

func TestConfigRepository_Delete(t *testing.T) {
	repo := NewConfigRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, datatypes.Config{Uni: "HKU", Key: "K", Value: "v"}))
	require.NoError(t, repo.Delete(ctx, "HKU", "K"))

	out, err := repo.FindByUni(ctx, "HKU")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSenderInfoRepository_RoundTrip(t *testing.T) {
	repo := NewSenderInfoRepository(testDB(t))
	ctx := context.Background()

	found, err := repo.FindOneByUniMessengerSender(ctx, "HKU", "web", "s1")
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = repo.Create(ctx, &datatypes.SenderInfo{
		Uni: "HKU", Messenger: "web", SenderID: "s1",
		FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)

	found, err = repo.FindOneByUniMessengerSender(ctx, "HKU", "web", "s1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ada", found.FirstName)

	// Profiles are scoped per channel.
	other, err := repo.FindOneByUniMessengerSender(ctx, "HKU", "facebook", "s1")
	require.NoError(t, err)
	assert.Nil(t, other)
}
