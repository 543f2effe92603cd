// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dialog "github.com/AleutianAI/AleutianDialog/services/dialog"
	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/messenger"
	"github.com/AleutianAI/AleutianDialog/services/dialog/routes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const handlersGreetingYAML = `intents:
  - uni: HKU
    command: C_GREETING
    responses:
      - type: TEXT
        messages:
          - en-GB: "Hi there."
`

type greetingNLP struct{}

func (greetingNLP) Analyse(ctx context.Context, message, uni string, memories []datatypes.IntentMemory) ([]datatypes.BotCommand, error) {
	if message == "hello" {
		return []datatypes.BotCommand{{Name: "C_GREETING"}}, nil
	}
	return nil, nil
}

type testEnv struct {
	router   *gin.Engine
	issues   *storage.IssueRepository
	messages *storage.MessageRepository
	configs  *storage.ConfigRepository
}

// newTestEnv assembles the full HTTP surface on in-memory storage.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.yaml"), []byte(handlersGreetingYAML), 0600))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	intents, err := storage.NewIntentRepository(dir, logger)
	require.NoError(t, err)
	t.Cleanup(func() { intents.Close() })

	issues := storage.NewIssueRepository(db)
	messages := storage.NewMessageRepository(db)
	configs := storage.NewConfigRepository(db)
	ws := messenger.NewWSMessenger("en-GB")

	server, err := dialog.NewBotServer(dialog.Options{
		Logger:   logger,
		Intents:  intents,
		Configs:  configs,
		Issues:   issues,
		Messages: messages,
		Senders:  storage.NewSenderInfoRepository(db),
		Sessions: storage.NewSessionRepository(db),
		Messengers: map[string]messenger.Messenger{
			"web":     messenger.NewWebMessenger("en-GB"),
			ws.Name(): ws,
		},
		NLP: greetingNLP{},
	})
	require.NoError(t, err)

	router := gin.New()
	routes.SetupRoutes(router, routes.Deps{
		Server:      server,
		WSMessenger: ws,
		Issues:      issues,
		Messages:    messages,
		Configs:     configs,
		Intents:     intents,
	})
	return &testEnv{router: router, issues: issues, messages: messages, configs: configs}
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	w := performRequest(env.router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestWebhook(t *testing.T) {
	t.Run("happy path answers with responses", func(t *testing.T) {
		env := newTestEnv(t)
		w := performRequest(env.router, http.MethodPost, "/v1/HKU/messengers/web",
			`{"senderId":"s1","message":"hello"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Responses []map[string]any `json:"responses"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Responses, 1)
		assert.Equal(t, "s1", body.Responses[0]["senderId"])
	})

	t.Run("unknown messenger answers 404", func(t *testing.T) {
		env := newTestEnv(t)
		w := performRequest(env.router, http.MethodPost, "/v1/HKU/messengers/facebook",
			`{"senderId":"s1","message":"hello"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "unknown messenger")
	})

	t.Run("malformed payload answers 400", func(t *testing.T) {
		env := newTestEnv(t)
		w := performRequest(env.router, http.MethodPost, "/v1/HKU/messengers/web", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("white-listed tenant blocks the channel", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.configs.Put(context.Background(), datatypes.Config{
			Uni: "HKU", Key: datatypes.ConfigMessengerWhiteList, Value: []any{"facebook"},
		}))
		w := performRequest(env.router, http.MethodPost, "/v1/HKU/messengers/web",
			`{"senderId":"s1","message":"hello"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestChatWebSocket(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/HKU/messengers/websocket/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"senderId":"s1","message":"hello"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var reply struct {
		SenderID string                `json:"senderId"`
		Response datatypes.BotResponse `json:"response"`
	}
	require.NoError(t, json.Unmarshal(frame, &reply))
	assert.Equal(t, "s1", reply.SenderID)
	assert.Equal(t, "Hi there.", reply.Response.Message)
}

func TestAdminIssues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issue, err := env.issues.Create(ctx, &datatypes.Issue{
		Uni: "HKU", SenderID: "s1", Messenger: "web",
		Status: datatypes.IssueOpen, OpenDate: time.Now(),
	})
	require.NoError(t, err)

	t.Run("requires senderId", func(t *testing.T) {
		w := performRequest(env.router, http.MethodGet, "/v1/admin/HKU/issues", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists open issues", func(t *testing.T) {
		w := performRequest(env.router, http.MethodGet, "/v1/admin/HKU/issues?senderId=s1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Issues []datatypes.Issue `json:"issues"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Issues, 1)
		assert.Equal(t, issue.ID, body.Issues[0].ID)
	})

	t.Run("lists issue messages", func(t *testing.T) {
		_, err := env.messages.Create(ctx, &datatypes.Message{
			Uni: "HKU", SenderID: "s1", IssueID: issue.ID,
			Type: datatypes.MessageRequest, Date: time.Now(),
			Request: &datatypes.LoggedRequest{Type: datatypes.RequestTypeText, Message: "help"},
		})
		require.NoError(t, err)

		w := performRequest(env.router, http.MethodGet,
			"/v1/admin/HKU/issues/"+issue.ID+"/messages?senderId=s1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Messages []datatypes.Message `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "help", body.Messages[0].Request.Message)
	})
}

func TestAdminConfigs(t *testing.T) {
	env := newTestEnv(t)

	t.Run("put rejects a missing key", func(t *testing.T) {
		w := performRequest(env.router, http.MethodPut, "/v1/admin/HKU/configs",
			`{"value":"C_FALLBACK"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("put then list round trips", func(t *testing.T) {
		w := performRequest(env.router, http.MethodPut, "/v1/admin/HKU/configs",
			`{"key":"FALLBACK_COMMAND_NAME","value":"C_FALLBACK"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = performRequest(env.router, http.MethodGet, "/v1/admin/HKU/configs", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Configs []datatypes.Config `json:"configs"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Configs, 1)
		assert.Equal(t, "FALLBACK_COMMAND_NAME", body.Configs[0].Key)
		assert.Equal(t, "C_FALLBACK", body.Configs[0].Value)
	})
}

func TestAdminIntents(t *testing.T) {
	env := newTestEnv(t)

	w := performRequest(env.router, http.MethodGet, "/v1/admin/intents", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Intents []datatypes.Intent `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Intents, 1)
	assert.Equal(t, "C_GREETING", body.Intents[0].Command)
}
