// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/json"
	"fmt"
)

// apiErrorBody is the platform's JSON error shape:
// {"error":{"code":403,"message":"...","errors":[{"reason":"...","message":"..."}]}}.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

// HTTPError is a non-2xx platform reply. Reason preserves the first
// error item's reason so callers can pattern-match and rewrite
// messages with follow-up hints.
type HTTPError struct {
	StatusCode int
	Reason     string
	Message    string
	Label      string
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Label != "" {
		return fmt.Sprintf("%s: %s", e.Label, msg)
	}
	return msg
}

// AuthError is a 401, or a 403 whose reason is not quota-related.
type AuthError struct {
	*HTTPError
}

// ExitCode maps the error to the auth exit status.
func (e *AuthError) ExitCode() int { return 3 }

// Unwrap exposes the underlying HTTPError to errors.As.
func (e *AuthError) Unwrap() error { return e.HTTPError }

// QuotaError is a 429, or a 403 with a quota reason.
type QuotaError struct {
	*HTTPError
}

// ExitCode maps the error to the quota/permission exit status.
func (e *QuotaError) ExitCode() int { return 4 }

// Unwrap exposes the underlying HTTPError to errors.As.
func (e *QuotaError) Unwrap() error { return e.HTTPError }

// classifyStatus turns a non-2xx reply into the matching typed error.
func classifyStatus(status int, body []byte, label string) error {
	httpErr := &HTTPError{StatusCode: status, Label: label, Body: body}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		httpErr.Message = parsed.Error.Message
		if len(parsed.Error.Errors) > 0 {
			httpErr.Reason = parsed.Error.Errors[0].Reason
		}
	}

	switch {
	case status == 429:
		return &QuotaError{httpErr}
	case status == 403 && isQuotaReason(httpErr.Reason):
		return &QuotaError{httpErr}
	case status == 401 || status == 403:
		return &AuthError{httpErr}
	default:
		return httpErr
	}
}

func isQuotaReason(reason string) bool {
	switch reason {
	case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded":
		return true
	}
	return false
}
