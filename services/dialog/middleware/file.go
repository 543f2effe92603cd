// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/files"
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
	"github.com/AleutianAI/AleutianDialog/services/dialog/render"
)

// FileRequest copies an inbound file attachment into durable storage
// and records the stored path on the request.
func FileRequest() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		r := c.Request
		if r != nil && r.FileURL != "" && fileRequestType(r.Type) {
			file, err := c.Files.Copy(c.Ctx, r.FileURL)
			if err != nil {
				return err
			}
			r.FileStoredPath = file.Path
			r.FileContentType = file.ContentType
		}
		return next()
	}
}

func fileRequestType(t datatypes.RequestType) bool {
	switch t {
	case datatypes.RequestTypeAudio, datatypes.RequestTypeFile,
		datatypes.RequestTypeImage, datatypes.RequestTypeVideo:
		return true
	}
	return false
}

// Transcode converts stored audio and video into the channel-ready
// format before anything downstream looks at the file.
func Transcode() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		r := c.Request
		if r != nil && r.FileStoredPath != "" && r.FileContentType != "" {
			stored := files.File{Path: r.FileStoredPath, ContentType: r.FileContentType}
			var (
				file files.File
				err  error
			)
			switch r.Type {
			case datatypes.RequestTypeAudio:
				file, err = c.Transcoder.TranscodeAudio(c.Ctx, stored)
			case datatypes.RequestTypeVideo:
				file, err = c.Transcoder.TranscodeVideo(c.Ctx, stored)
			default:
				return next()
			}
			if err != nil {
				return err
			}
			r.FileStoredPath = file.Path
			r.FileContentType = file.ContentType
		}
		return next()
	}
}

// FileRequestResponse answers a file-only message with the configured
// FILE_REQUEST_COMMAND_NAME intent and short-circuits the rest of the
// chain. A configured command without an intent definition is an error.
func FileRequestResponse() pipeline.Middleware {
	return func(c *pipeline.Context, next pipeline.Next) error {
		r := c.Request
		command, configured := c.UniConfigs.String(datatypes.ConfigFileRequestCommandName)
		if r == nil || r.FileURL == "" || r.Message != "" || !configured {
			return next()
		}

		intent, err := c.Intents.FindByUniAndCommand(c.Ctx, c.Uni, command)
		if err != nil {
			return err
		}
		if intent == nil {
			return datatypes.NewBotError(datatypes.ErrIntentNotFound, "command not found: %s", command)
		}
		responses, err := render.Responses(intent.Responses, map[string]any{}, r.Locale)
		if err != nil {
			return err
		}
		c.Responses = responses
		return nil
	}
}
