// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package files holds the file copy and transcoding contracts the
// pipeline consumes. Cloud-backed implementations are external
// collaborators; a local-disk implementation ships for development.
package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// File is a stored file reference.
type File struct {
	Path        string
	ContentType string
}

// Service copies an inbound file URL into durable storage.
type Service interface {
	Copy(ctx context.Context, url string) (File, error)
}

// Transcoder converts stored audio/video into the channel-ready format.
type Transcoder interface {
	TranscodeAudio(ctx context.Context, f File) (File, error)
	TranscodeVideo(ctx context.Context, f File) (File, error)
}

// LocalService downloads files into a directory. Development only.
type LocalService struct {
	Dir    string
	Client *http.Client
}

// NewLocalService returns a disk-backed file service rooted at dir.
func NewLocalService(dir string) *LocalService {
	return &LocalService{Dir: dir, Client: http.DefaultClient}
}

func (s *LocalService) Copy(ctx context.Context, url string) (File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return File{}, fmt.Errorf("build file request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return File{}, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("fetch file: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(s.Dir, 0750); err != nil {
		return File{}, fmt.Errorf("create file dir: %w", err)
	}
	path := filepath.Join(s.Dir, uuid.NewString())
	out, err := os.Create(path)
	if err != nil {
		return File{}, fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return File{}, fmt.Errorf("store file: %w", err)
	}
	return File{Path: path, ContentType: resp.Header.Get("Content-Type")}, nil
}

// NopTranscoder returns files unchanged. Used when no transcoding
// backend is configured.
type NopTranscoder struct{}

func (NopTranscoder) TranscodeAudio(ctx context.Context, f File) (File, error) { return f, nil }
func (NopTranscoder) TranscodeVideo(ctx context.Context, f File) (File, error) { return f, nil }
