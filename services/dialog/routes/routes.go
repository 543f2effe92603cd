// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package routes wires the HTTP surface of the dialog engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dialog "github.com/AleutianAI/AleutianDialog/services/dialog"
	"github.com/AleutianAI/AleutianDialog/services/dialog/handlers"
	"github.com/AleutianAI/AleutianDialog/services/dialog/messenger"
	"github.com/AleutianAI/AleutianDialog/services/dialog/storage"
)

// Deps carries everything the routes need. WSMessenger, Configs and
// Intents are optional; their routes are skipped when nil.
type Deps struct {
	Server      *dialog.BotServer
	WSMessenger *messenger.WSMessenger
	Issues      *storage.IssueRepository
	Messages    *storage.MessageRepository
	Configs     *storage.ConfigRepository
	Intents     *storage.IntentRepository
	Gatherer    prometheus.Gatherer
}

// SetupRoutes registers the webhook, websocket, health, metrics and
// admin routes on router.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	{
		v1.POST("/:uni/messengers/:name", handlers.Webhook(deps.Server))
		if deps.WSMessenger != nil {
			v1.GET("/:uni/messengers/websocket/chat", handlers.ChatWebSocket(deps.Server, deps.WSMessenger))
		}

		admin := v1.Group("/admin")
		{
			if deps.Issues != nil {
				admin.GET("/:uni/issues", handlers.ListOpenIssues(deps.Issues))
			}
			if deps.Messages != nil {
				admin.GET("/:uni/issues/:issueId/messages", handlers.ListMessages(deps.Messages))
			}
			if deps.Configs != nil {
				admin.GET("/:uni/configs", handlers.ListConfigs(deps.Configs))
				admin.PUT("/:uni/configs", handlers.PutConfig(deps.Configs))
			}
			if deps.Intents != nil {
				admin.GET("/intents", handlers.ListIntents(deps.Intents))
			}
		}
	}
}
