// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"github.com/AleutianAI/AleutianDialog/services/dialog/pipeline"
)

// Stage priorities of the default stack. Spaced by 100 so overrides can
// slot custom stages between any two.
const (
	PriorityGlobalConfig              = 100
	PriorityUnitConfig                = 200
	PriorityMessengerWhiteList        = 300
	PriorityResponseMessageLogging    = 400
	PriorityMessenger                 = 500
	PrioritySenderInfo                = 600
	PriorityFallbackResponse          = 700
	PriorityFetchIssue                = 800
	PriorityFileRequest               = 900
	PriorityTranscode                 = 1000
	PrioritySession                   = 1100
	PriorityRequestMessageLogging     = 1200
	PriorityFileRequestResponse       = 1300
	PriorityIntentOption              = 1400
	PriorityContinuousOptionsToText   = 1500
	PriorityNLP                       = 1600
	PrioritySuspendAutoReply          = 1700
	PriorityAdditionalResponseMessage = 1800
	PriorityFlattenResponses          = 1900
	PriorityConversationIntent        = 2000
	PriorityStartConversation         = 2100
	PriorityNewIntent                 = 2200
	PriorityCommandsValidation        = 2300
	PriorityIntentPreProcessor        = 2400
	PriorityMemoriesFeature           = 2500
	PriorityIntentDefaultFeature      = 2600
	PriorityIntentRequiredFeature     = 2700
	PriorityIntentPostProcessor       = 2800
	PriorityIntentResponse            = 2900
	PriorityIntentExecutor            = 3000
)

// DefaultStack builds the full dialog chain in canonical order. Callers
// override or extend it with Chain.Merge before serving.
func DefaultStack() *pipeline.Chain {
	ch := pipeline.NewChain()
	ch.Merge([]pipeline.Stage{
		{Priority: PriorityGlobalConfig, Name: "GlobalConfig", Handler: GlobalConfig()},
		{Priority: PriorityUnitConfig, Name: "UnitConfig", Handler: UnitConfig()},
		{Priority: PriorityMessengerWhiteList, Name: "MessengerWhiteList", Handler: MessengerWhiteList()},
		{Priority: PriorityResponseMessageLogging, Name: "ResponseMessageLogging", Handler: ResponseMessageLogging()},
		{Priority: PriorityMessenger, Name: "Messenger", Handler: Messenger()},
		{Priority: PrioritySenderInfo, Name: "SenderInfo", Handler: SenderInfo()},
		{Priority: PriorityFallbackResponse, Name: "FallbackResponse", Handler: FallbackResponse()},
		{Priority: PriorityFetchIssue, Name: "FetchIssue", Handler: FetchIssue()},
		{Priority: PriorityFileRequest, Name: "FileRequest", Handler: FileRequest()},
		{Priority: PriorityTranscode, Name: "Transcode", Handler: Transcode()},
		{Priority: PrioritySession, Name: "Session", Handler: SessionService()},
		{Priority: PriorityRequestMessageLogging, Name: "RequestMessageLogging", Handler: RequestMessageLogging()},
		{Priority: PriorityFileRequestResponse, Name: "FileRequestResponse", Handler: FileRequestResponse()},
		{Priority: PriorityIntentOption, Name: "IntentOption", Handler: IntentOption()},
		{Priority: PriorityContinuousOptionsToText, Name: "ContinuousOptionsToText", Handler: ContinuousOptionsToText()},
		{Priority: PriorityNLP, Name: "Nlp", Handler: NLP()},
		{Priority: PrioritySuspendAutoReply, Name: "SuspendAutoReply", Handler: SuspendAutoReply()},
		{Priority: PriorityAdditionalResponseMessage, Name: "AdditionalResponseMessage", Handler: AdditionalResponseMessage()},
		{Priority: PriorityFlattenResponses, Name: "FlattenResponses", Handler: FlattenResponses()},
		{Priority: PriorityConversationIntent, Name: "ConversationIntent", Handler: ConversationIntent()},
		{Priority: PriorityStartConversation, Name: "StartConversation", Handler: StartConversation()},
		{Priority: PriorityNewIntent, Name: "NewIntent", Handler: NewIntent()},
		{Priority: PriorityCommandsValidation, Name: "CommandsValidation", Handler: CommandsValidation()},
		{Priority: PriorityIntentPreProcessor, Name: "IntentPreProcessor", Handler: IntentPreProcessor()},
		{Priority: PriorityMemoriesFeature, Name: "MemoriesFeature", Handler: MemoriesFeature()},
		{Priority: PriorityIntentDefaultFeature, Name: "IntentDefaultFeature", Handler: IntentDefaultFeature()},
		{Priority: PriorityIntentRequiredFeature, Name: "IntentRequiredFeature", Handler: IntentRequiredFeature()},
		{Priority: PriorityIntentPostProcessor, Name: "IntentPostProcessor", Handler: IntentPostProcessor()},
		{Priority: PriorityIntentResponse, Name: "IntentResponse", Handler: IntentResponse()},
		{Priority: PriorityIntentExecutor, Name: "IntentExecutor", Handler: IntentExecutor()},
	})
	return ch
}
