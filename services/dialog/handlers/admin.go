// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianDialog/services/dialog/datatypes"
	"github.com/AleutianAI/AleutianDialog/services/dialog/repository"
	"github.com/AleutianAI/AleutianDialog/services/dialog/storage"
)

// ListOpenIssues lists a sender's open issues.
//
//	GET /v1/admin/:uni/issues?senderId=...
func ListOpenIssues(issues repository.IssueRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uni := c.Param("uni")
		senderID := c.Query("senderId")
		if senderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "senderId is required"})
			return
		}
		open, err := issues.FindOpenByUniAndSender(c.Request.Context(), uni, senderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"issues": open})
	}
}

// ListMessages lists a sender's messages linked to one issue.
//
//	GET /v1/admin/:uni/issues/:issueId/messages?senderId=...
func ListMessages(messages repository.MessageRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uni := c.Param("uni")
		issueID := c.Param("issueId")
		senderID := c.Query("senderId")
		if senderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "senderId is required"})
			return
		}
		out, err := messages.FindByUniSenderIssue(c.Request.Context(), uni, senderID, issueID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": out})
	}
}

// ListConfigs lists one tenant's runtime configuration.
//
//	GET /v1/admin/:uni/configs
func ListConfigs(configs repository.ConfigRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uni := c.Param("uni")
		out, err := configs.FindByUni(c.Request.Context(), uni)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"configs": out})
	}
}

// PutConfig upserts one runtime configuration entry.
//
//	PUT /v1/admin/:uni/configs
func PutConfig(configs *storage.ConfigRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uni := c.Param("uni")
		var cfg datatypes.Config
		if err := c.ShouldBindJSON(&cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid config"})
			return
		}
		if cfg.Key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
			return
		}
		cfg.Uni = uni
		if err := configs.Put(c.Request.Context(), cfg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"config": cfg})
	}
}

// ListIntents lists every loaded intent definition.
//
//	GET /v1/admin/intents
func ListIntents(intents *storage.IntentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"intents": intents.All()})
	}
}
