// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	dialog "github.com/AleutianAI/AleutianDialog/services/dialog"
	"github.com/AleutianAI/AleutianDialog/services/dialog/messenger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// ChatWebSocket upgrades the connection and feeds every frame through
// the pipeline:
//
//	GET /v1/:uni/messengers/websocket/chat
//
// Responses come back over the same connection via the adapter's Send;
// a frame that fails the pipeline closes nothing, the next frame is
// read regardless.
func ChatWebSocket(server *dialog.BotServer, ws *messenger.WSMessenger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uni := c.Param("uni")
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "uni", uni, "error", err)
			return
		}
		defer conn.Close()
		slog.Info("websocket client connected", "uni", uni)

		var senderID string
		defer func() {
			if senderID != "" {
				ws.Unregister(senderID, conn)
			}
		}()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				slog.Info("websocket client disconnected", "uni", uni, "error", err)
				return
			}
			request, err := ws.Request(frame)
			if err != nil {
				slog.Warn("invalid websocket frame", "uni", uni, "error", err)
				continue
			}
			senderID = request.SenderID
			ws.Register(senderID, conn)

			if _, err := server.Handle(c.Request.Context(), uni, ws.Name(), frame); err != nil {
				slog.Error("websocket dispatch failed", "uni", uni, "error", err)
			}
		}
	}
}
