// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/files"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

func TestDefaultStack_StagePrioritiesUnique(t *testing.T) {
	stages := DefaultStack().Stages()
	require.Len(t, stages, 30)
	for i := 1; i < len(stages); i++ {
		assert.Less(t, stages[i-1].Priority, stages[i].Priority,
			"stage %s must come after %s", stages[i].Name, stages[i-1].Name)
	}
	assert.Equal(t, "GlobalConfig", stages[0].Name)
	assert.Equal(t, "IntentExecutor", stages[len(stages)-1].Name)
}

func TestGreetingTurn(t *testing.T) {
	b := newBot()
	greeting := textIntent("HKU", "C_GREETING", "Hello {SENDER_NAME}. I am Lexica.")
	greeting.PreProcessors = []string{"SenderNamePreProcessor"}
	b.intents.add(greeting)
	b.senders.infos["HKU/test/walter"] = &datatypes.SenderInfo{
		Uni: "HKU", Messenger: "test", SenderID: "walter", FirstName: "World",
	}
	b.nlp.script["hello"] = []datatypes.BotCommand{{Name: "C_GREETING"}}

	c := b.send(t, "HKU", "walter", "hello")

	assert.Equal(t, http.StatusOK, c.Status)
	assert.Equal(t, []string{"Hello World. I am Lexica."}, textMessages(c.Responses))
	require.Len(t, c.RawResponses, 1)

	// The inbound message was logged with the resolved command.
	logged := b.messages.requestMessages()
	require.Len(t, logged, 1)
	assert.Equal(t, []string{"C_GREETING"}, logged[0].Commands)
	assert.Equal(t, "hello", logged[0].Request.Message)
	assert.NotEmpty(t, logged[0].SessionID)
}

func TestTenantConfigOverridesGlobal(t *testing.T) {
	b := newBot()
	b.configs.set(datatypes.GlobalUni, datatypes.ConfigFallbackCommandName, "C_GLOBAL_FALLBACK")
	b.configs.set("HKU", datatypes.ConfigFallbackCommandName, "C_HKU_FALLBACK")
	b.intents.add(textIntent("HKU", "C_HKU_FALLBACK", "HKU fallback"))
	b.intents.add(textIntent("HKU", "C_GLOBAL_FALLBACK", "global fallback"))

	c := b.send(t, "HKU", "s1", "gibberish")
	assert.Equal(t, []string{"HKU fallback"}, textMessages(c.Responses))
}

func TestUnknownMessageGetsLiteralFallback(t *testing.T) {
	b := newBot()
	c := b.send(t, "HKU", "s1", "gibberish")

	assert.Equal(t, http.StatusOK, c.Status)
	assert.Equal(t, []string{"Sorry, I don't know"}, textMessages(c.Responses))
}

func TestUnknownCommandGetsFallbackIntent(t *testing.T) {
	b := newBot()
	b.configs.set("HKU", datatypes.ConfigFallbackCommandName, "C_FALLBACK")
	b.intents.add(textIntent("HKU", "C_FALLBACK", "Let me find a human for you."))
	// The classifier resolves a command no intent defines.
	b.nlp.script["help"] = []datatypes.BotCommand{{Name: "C_UNDEFINED"}}

	c := b.send(t, "HKU", "s1", "help")
	assert.Equal(t, []string{"Let me find a human for you."}, textMessages(c.Responses))
}

func TestIntentFallbackWinsOverTenantFallback(t *testing.T) {
	b := newBot()
	b.configs.set("HKU", datatypes.ConfigFallbackCommandName, "C_TENANT_FALLBACK")
	b.intents.add(textIntent("HKU", "C_TENANT_FALLBACK", "tenant fallback"))
	b.intents.add(textIntent("HKU", "C_OWN_FALLBACK", "booking fallback"))

	booking := textIntent("HKU", "C_BOOK_ROOM", "booked")
	booking.RequiredFeatureKeys = []string{"F_DATE"}
	booking.FallbackCommand = "C_OWN_FALLBACK"
	b.intents.add(booking)
	b.nlp.script["book"] = []datatypes.BotCommand{{Name: "C_BOOK_ROOM"}}

	// No missingFeatures prompts, so the required-feature error is not
	// recoverable and reaches the fallback stage.
	c := b.send(t, "HKU", "s1", "book")
	assert.Equal(t, []string{"booking fallback"}, textMessages(c.Responses))
}

func TestMessengerWhiteList(t *testing.T) {
	t.Run("unlisted channel is rejected", func(t *testing.T) {
		b := newBot()
		b.configs.set("HKU", datatypes.ConfigMessengerWhiteList, []any{"facebook"})

		c := b.send(t, "HKU", "s1", "hello")
		assert.Equal(t, http.StatusNotFound, c.Status)
		assert.Empty(t, c.Responses)
		assert.Empty(t, c.RawResponses)
	})

	t.Run("listed channel passes", func(t *testing.T) {
		b := newBot()
		b.configs.set("HKU", datatypes.ConfigMessengerWhiteList, []any{"facebook", "TEST"})
		b.intents.add(textIntent("HKU", "C_GREETING", "hi"))
		b.nlp.script["hello"] = []datatypes.BotCommand{{Name: "C_GREETING"}}

		c := b.send(t, "HKU", "s1", "hello")
		assert.Equal(t, http.StatusOK, c.Status)
		assert.Equal(t, []string{"hi"}, textMessages(c.Responses))
	})
}

func TestPreResolvedCommandsSkipClassifier(t *testing.T) {
	b := newBot()
	b.intents.add(textIntent("HKU", "C_GREETING", "hi"))

	c := b.run(t, "HKU", &datatypes.BotRequest{
		Type:     datatypes.RequestTypeText,
		Locale:   "en-GB",
		SenderID: "s1",
		Message:  "anything",
		Commands: []datatypes.BotCommand{{Name: "C_GREETING"}},
	})
	assert.Equal(t, []string{"hi"}, textMessages(c.Responses))
}

func TestFileRequestResponse(t *testing.T) {
	b := newBot()
	b.configs.set("HKU", datatypes.ConfigFileRequestCommandName, "C_FILE_RECEIVED")
	b.intents.add(textIntent("HKU", "C_FILE_RECEIVED", "Got your file, thanks!"))
	b.files.file = files.File{Path: "/data/files/abc", ContentType: "image/png"}

	c := b.run(t, "HKU", &datatypes.BotRequest{
		Type:     datatypes.RequestTypeImage,
		Locale:   "en-GB",
		SenderID: "s1",
		FileURL:  "https://example.com/photo.png",
	})

	assert.Equal(t, []string{"Got your file, thanks!"}, textMessages(c.Responses))

	// The stored copy, not the origin URL, is what gets logged.
	logged := b.messages.requestMessages()
	require.Len(t, logged, 1)
	assert.Equal(t, datatypes.RequestTypeImage, logged[0].Request.Type)
	assert.Equal(t, "/data/files/abc", logged[0].Request.Path)
	assert.Equal(t, "image/png", logged[0].Request.ContentType)
}

func TestAdditionalResponseMessage_RegexpTrigger(t *testing.T) {
	b := newBot()
	b.intents.add(textIntent("HKU", "C_GREETING", "hi"))
	b.intents.add(textIntent("HKU", "C_PROMO", "By the way, the library closes at 9pm."))
	b.configs.set("HKU", datatypes.ConfigAdditionalResponseMessage, map[string]any{
		"COMMAND":        "C_PROMO",
		"TRIGGER_REGEXP": "HELLO",
	})
	b.nlp.script["hello there"] = []datatypes.BotCommand{{Name: "C_GREETING"}}

	c := b.send(t, "HKU", "s1", "hello there")
	assert.Equal(t, []string{"hi", "By the way, the library closes at 9pm."}, textMessages(c.Responses))
}

func TestRemoveDuplicateResponse(t *testing.T) {
	b := newBot()
	duplicated := &datatypes.Intent{
		Uni:     "HKU",
		Command: "C_ECHO",
		Responses: []datatypes.ResponseTemplate{
			{Type: datatypes.ResponseTypeText, Messages: []datatypes.LocalizedText{{"en-GB": "same"}}},
			{Type: datatypes.ResponseTypeText, Messages: []datatypes.LocalizedText{{"en-GB": "same"}}},
			{Type: datatypes.ResponseTypeText, Messages: []datatypes.LocalizedText{{"en-GB": "different"}}},
		},
	}
	b.intents.add(duplicated)
	b.nlp.script["echo"] = []datatypes.BotCommand{{Name: "C_ECHO"}}

	// Dedupe is opt-in, slotted between FlattenResponses and
	// AdditionalResponseMessage.
	b.chain.Merge([]pipeline.Stage{{
		Priority: PriorityAdditionalResponseMessage + 50,
		Name:     "RemoveDuplicateResponse",
		Handler:  RemoveDuplicateResponse(),
	}})

	c := b.send(t, "HKU", "s1", "echo")
	assert.Equal(t, []string{"same", "different"}, textMessages(c.Responses))
}
