package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Domain error codes the server embeds in response messages.
const (
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeResetRequestFailed = "RESET_REQUEST_FAILED"
	CodeMissingCredentials = "MISSING_CREDENTIALS"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Code returns the domain error code when the message is one.
func (e *APIError) Code() string {
	switch e.Message {
	case CodeEmailNotVerified, CodeResetRequestFailed, CodeMissingCredentials:
		return e.Message
	}
	return ""
}

// statusMessages maps HTTP statuses to user-facing copy used when the
// body carries no better message.
var statusMessages = map[int]string{
	401: "Invalid credentials. Please check your email and password.",
	403: "Access denied. Please verify your account.",
	404: "Service not found. Please try again later.",
	500: "Server error. Please try again later.",
}

const genericErrorMessage = "Something went wrong. Please try again."

// NewAPIError builds an APIError from a reply, extracting the most
// specific message available from the body.
func NewAPIError(status int, body []byte) *APIError {
	msg := extractMessage(body)
	if msg == "" {
		msg = statusMessages[status]
	}
	if msg == "" {
		msg = genericErrorMessage
	}
	return &APIError{Status: status, Message: msg, Body: body}
}

// extractMessage digs a human-readable message out of an error body.
// Checked in order: data.message, error.data.message, message.
func extractMessage(body []byte) string {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}

	if data, ok := raw["data"].(map[string]interface{}); ok {
		if msg, ok := data["message"].(string); ok && msg != "" {
			return msg
		}
	}

	if errObj, ok := raw["error"].(map[string]interface{}); ok {
		if data, ok := errObj["data"].(map[string]interface{}); ok {
			if msg, ok := data["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if errMsg, ok := raw["error"].(string); ok && errMsg != "" {
		return errMsg
	}

	if msg, ok := raw["message"].(string); ok && msg != "" {
		return msg
	}

	return ""
}

// ApplyFailureMessage maps a role-request apply failure to user
// copy. Unlike the general taxonomy, this flow reports known statuses
// with their fixed copy first and only then falls back to whatever
// the server said.
func ApplyFailureMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return genericErrorMessage
	}
	if msg, ok := statusMessages[apiErr.Status]; ok {
		return msg
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return genericErrorMessage
}

// FriendlyResetMessage rewrites domain codes into copy for the
// password reset flow. Other messages pass through untouched.
func FriendlyResetMessage(err error) string {
	apiErr, ok := err.(*APIError)
	if !ok {
		return genericErrorMessage
	}
	switch apiErr.Code() {
	case CodeResetRequestFailed:
		return "We couldn't start a password reset for that email."
	case CodeMissingCredentials:
		return "Please enter your email address."
	case CodeEmailNotVerified:
		return "Please verify your email before resetting your password."
	}
	return apiErr.Message
}
