// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the gin HTTP handlers for the dialog
// engine: the per-messenger webhook, the websocket chat endpoint, the
// health check and the admin surface.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	dialog "github.com/AleutianAI/AleutianDialog/services/dialog"
)

// HealthCheck answers liveness probes.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Webhook handles one inbound channel payload:
//
//	POST /v1/:uni/messengers/:name
//
// The response body carries the channel payload form of the rendered
// responses; synchronous channels like the web adapter answer through
// it. Internal pipeline failures still answer 200 with whatever the
// fallback stage produced.
func Webhook(server *dialog.BotServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		uni := c.Param("uni")
		name := c.Param("name")

		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		result, err := server.Handle(c.Request.Context(), uni, name, raw)
		if err != nil {
			slog.Error("webhook dispatch failed", "uni", uni, "messenger", name, "error", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown messenger"})
			return
		}
		if result.Status != http.StatusOK {
			c.Status(result.Status)
			return
		}
		c.JSON(http.StatusOK, gin.H{"responses": result.RawResponses})
	}
}
