package generation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies a failed request.
type Code string

const (
	CodeAuthorizationRequired Code = "authorization_required"
	CodeInvalidCredential     Code = "invalid_credential"
	CodeEmptyResult           Code = "empty_result"
	CodeFetchFailed           Code = "fetch_failed"
	CodeUnknown               Code = "unknown"
)

const (
	msgAuthorizationRequired = "API Key required for video generation. Please select a key in the settings."
	msgInvalidCredential     = "API Key is invalid. Please select a valid key. You can open the key selector from the settings tab."
	msgNoImageData           = "No image data received from API."
	msgNoVideoLink           = "Video generation completed, but no download link was provided."
)

// Error is the failure returned by Orchestrator.Request. Message is suitable
// for display to the end user.
type Error struct {
	Code    Code
	Message string
	// Status is the transport status text for CodeFetchFailed.
	Status string
	Err    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrAuthorizationRequired = &Error{Code: CodeAuthorizationRequired}
	ErrInvalidCredential     = &Error{Code: CodeInvalidCredential}
	ErrEmptyResult           = &Error{Code: CodeEmptyResult}
	ErrFetchFailed           = &Error{Code: CodeFetchFailed}
	ErrUnknown               = &Error{Code: CodeUnknown}
)

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func authorizationRequired() *Error {
	return &Error{Code: CodeAuthorizationRequired, Message: msgAuthorizationRequired}
}

func invalidCredential(err error) *Error {
	return &Error{Code: CodeInvalidCredential, Message: msgInvalidCredential, Err: err}
}

func emptyResult(message string) *Error {
	return &Error{Code: CodeEmptyResult, Message: message}
}

func fetchFailed(status string, err error) *Error {
	return &Error{
		Code:    CodeFetchFailed,
		Message: "Failed to fetch video file: " + status,
		Status:  status,
		Err:     err,
	}
}

func unknown(err error) *Error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeUnknown, Message: msg, Err: err}
}

// ServiceError is a structured failure reported by the remote service.
type ServiceError struct {
	HTTPStatus int
	// Status is the canonical status name, e.g. "NOT_FOUND".
	Status string
	// Reason is the machine readable error reason, e.g. "API_KEY_INVALID".
	Reason  string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service status %d", e.HTTPStatus)
	}
	return fmt.Sprintf("remote service status %d: %s", e.HTTPStatus, e.Message)
}

// StatusText is the transport status line used in user-facing fetch errors.
func (e *ServiceError) StatusText() string {
	if text := http.StatusText(e.HTTPStatus); text != "" {
		return text
	}
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("status %d", e.HTTPStatus)
}

// CredentialRejected reports whether the service refused the credential.
func (e *ServiceError) CredentialRejected() bool {
	switch {
	case e.HTTPStatus == http.StatusUnauthorized, e.HTTPStatus == http.StatusForbidden:
		return true
	case e.Status == "UNAUTHENTICATED", e.Status == "PERMISSION_DENIED":
		return true
	case e.Reason == "API_KEY_INVALID":
		return true
	case e.HTTPStatus == http.StatusNotFound || e.Status == "NOT_FOUND":
		return strings.Contains(e.Message, entityNotFound)
	}
	return false
}

// entityNotFound is how the video API answers a key without access to the model.
const entityNotFound = "Requested entity was not found"

// credentialRejected classifies a submission or polling failure.
func credentialRejected(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.CredentialRejected()
	}
	return err != nil && strings.Contains(err.Error(), entityNotFound)
}
