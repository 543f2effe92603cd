// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"fmt"
)

// ErrorCode is the dialog error taxonomy.
type ErrorCode string

const (
	// ErrIntentNotFound: no command resolved, or a resolved command has no
	// matching intent definition. Handled by the fallback stage.
	ErrIntentNotFound ErrorCode = "INTENT_NOT_FOUND"

	// ErrMissingRequiredFeature: a required feature is absent after
	// default fill. Recoverable; caught once by the conversation stage.
	ErrMissingRequiredFeature ErrorCode = "MISSING_REQUIRED_FEATURE"

	// ErrInvalidResponseType: a response template is malformed. Not
	// recoverable.
	ErrInvalidResponseType ErrorCode = "INVALID_RESPONSE_TYPE"
)

// BotError carries an ErrorCode through the middleware chain.
type BotError struct {
	Code    ErrorCode
	Message string
}

func (e *BotError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBotError builds a BotError with an optional formatted message.
func NewBotError(code ErrorCode, format string, args ...any) *BotError {
	return &BotError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsBotError reports whether err is a BotError with the given code.
func IsBotError(err error, code ErrorCode) bool {
	var be *BotError
	return errors.As(err, &be) && be.Code == code
}
