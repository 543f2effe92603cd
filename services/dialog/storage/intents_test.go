// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetingYAML = `intents:
  - uni: HKU
    command: C_GREETING
    preProcessors:
      - SenderNamePreProcessor
    responses:
      - type: TEXT
        messages:
          - en-GB: "Hello {SENDER_NAME}. I am Lexica."
            zh-TW: "你好 {SENDER_NAME}，我是 Lexica。"
`

const bookingYAML = `intents:
  - uni: HKU
    command: C_BOOK_ROOM
    requiredFeatureKeys:
      - F_DATE
    defaultFeatures:
      F_ROOM: A123
    sessionExpire: 2
    missingFeatures:
      F_DATE:
        priority: 1
        response:
          type: TEXT
          messages:
            - en-GB: "Which date?"
    responses:
      - type: TEXT
        messages:
          - en-GB: "Booked."
`

func writeIntentFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIntentRepository_LoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeIntentFile(t, dir, "greeting.yaml", greetingYAML)
	writeIntentFile(t, dir, "booking.yml", bookingYAML)
	writeIntentFile(t, dir, "ignored.txt", "not yaml")

	repo, err := NewIntentRepository(dir, discardLogger())
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	greeting, err := repo.FindByUniAndCommand(ctx, "HKU", "C_GREETING")
	require.NoError(t, err)
	require.NotNil(t, greeting)
	require.Len(t, greeting.Responses, 1)
	assert.Equal(t, "Hello {SENDER_NAME}. I am Lexica.", greeting.Responses[0].Messages[0]["en-GB"])
	assert.Equal(t, "你好 {SENDER_NAME}，我是 Lexica。", greeting.Responses[0].Messages[0]["zh-TW"])

	booking, err := repo.FindByUniAndCommand(ctx, "HKU", "C_BOOK_ROOM")
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, []string{"F_DATE"}, booking.RequiredFeatureKeys)
	assert.Equal(t, "A123", booking.DefaultFeatures["F_ROOM"])
	require.NotNil(t, booking.SessionExpire)
	assert.Equal(t, 3, booking.MemoryTurns())
	require.Contains(t, booking.MissingFeatures, "F_DATE")

	// Unknown commands resolve to nil without error.
	unknown, err := repo.FindByUniAndCommand(ctx, "HKU", "C_NOPE")
	require.NoError(t, err)
	assert.Nil(t, unknown)

	assert.Len(t, repo.All(), 2)
}

func TestIntentRepository_RejectsInvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	// Missing command and responses.
	writeIntentFile(t, dir, "bad.yaml", "intents:\n  - uni: HKU\n")

	_, err := NewIntentRepository(dir, discardLogger())
	assert.Error(t, err)
}

func TestIntentRepository_FailedReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	writeIntentFile(t, dir, "greeting.yaml", greetingYAML)

	repo, err := NewIntentRepository(dir, discardLogger())
	require.NoError(t, err)
	defer repo.Close()

	// Break the file on disk and reload directly.
	writeIntentFile(t, dir, "greeting.yaml", "intents:\n  - uni: HKU\n")
	require.Error(t, repo.reload())

	intent, err := repo.FindByUniAndCommand(context.Background(), "HKU", "C_GREETING")
	require.NoError(t, err)
	assert.NotNil(t, intent)
}

func TestIntentRepository_WatchHotReload(t *testing.T) {
	if testing.Short() {
		t.Skip("watch needs wall-clock debounce time")
	}
	dir := t.TempDir()
	writeIntentFile(t, dir, "greeting.yaml", greetingYAML)

	repo, err := NewIntentRepository(dir, discardLogger())
	require.NoError(t, err)
	require.NoError(t, repo.Watch())
	defer repo.Close()

	writeIntentFile(t, dir, "booking.yaml", bookingYAML)

	assert.Eventually(t, func() bool {
		intent, err := repo.FindByUniAndCommand(context.Background(), "HKU", "C_BOOK_ROOM")
		return err == nil && intent != nil
	}, 5*time.Second, 100*time.Millisecond)
}
