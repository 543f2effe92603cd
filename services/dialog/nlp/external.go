// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
)

// ExternalService calls a remote classifier over HTTP.
type ExternalService struct {
	BaseURL string
	Client  *http.Client
}

// NewExternalService returns a client for the classifier at baseURL.
func NewExternalService(baseURL string) *ExternalService {
	return &ExternalService{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type analyseRequest struct {
	Message  string                   `json:"message"`
	Uni      string                   `json:"uni"`
	Memories []datatypes.IntentMemory `json:"memories,omitempty"`
}

type analyseResponse struct {
	Commands []datatypes.BotCommand `json:"commands"`
}

func (s *ExternalService) Analyse(ctx context.Context, message, uni string, memories []datatypes.IntentMemory) ([]datatypes.BotCommand, error) {
	body, err := json.Marshal(analyseRequest{Message: message, Uni: uni, Memories: memories})
	if err != nil {
		return nil, fmt.Errorf("encode analyse request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/analyse", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build analyse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var decoded analyseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode analyse response: %w", err)
	}
	return decoded.Commands, nil
}
