// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

const classifierPrompt = `You map a chat message to intent commands.
Known commands are provided per tenant. Respond with JSON only:
{"commands":[{"name":"C_EXAMPLE","features":{"F_KEY":"value"}}]}
Return an empty commands array when nothing matches. A message that only
supplies a value for an ongoing conversation (a date, a number) maps to a
command with an empty name and the extracted feature.`

// OpenAIService classifies messages with a chat-completion model.
type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService reads OPENAI_API_KEY (falling back to the container
// secret file). An empty model falls back to OPENAI_MODEL, then to a
// small default.
func NewOpenAIService(model string) (*OpenAIService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		raw, err := os.ReadFile("/run/secrets/openai_api_key")
		if err != nil {
			return nil, fmt.Errorf("OPENAI_API_KEY not set and secret not found")
		}
		apiKey = strings.TrimSpace(string(raw))
		slog.Info("Read the OpenAI API key from container secrets")
	}
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	return &OpenAIService{client: openai.NewClient(apiKey), model: model}, nil
}

func (s *OpenAIService) Analyse(ctx context.Context, message, uni string, memories []datatypes.IntentMemory) ([]datatypes.BotCommand, error) {
	user := map[string]any{
		"uni":      uni,
		"message":  message,
		"memories": memories,
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode classifier input: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(encoded)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classifier completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	var decoded analyseResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &decoded); err != nil {
		return nil, fmt.Errorf("decode classifier output: %w", err)
	}
	return decoded.Commands, nil
}
