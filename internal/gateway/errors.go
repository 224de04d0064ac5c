package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AuthError means there is no session or the backend rejected its token
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return "auth error: " + e.Message
}

// ValidationError means the submitted values were rejected, either by the
// backend or by the checks run before submission. Status is zero for the
// latter and Err holds the failed check.
type ValidationError struct {
	Status  int
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps a failed client-side check so it matches backend rejections
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Message: err.Error(), Err: err}
}

// NotFoundError means no record with the id exists for the current user
type NotFoundError struct {
	Table   string
	ID      string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("not found: %s %s", e.Table, e.ID)
	}
	return "not found: " + e.Message
}

// StorageError means a binary upload failed
type StorageError struct {
	Status  int
	Message string
}

func (e *StorageError) Error() string {
	return "storage error: " + e.Message
}

// ConnectionError means the backend could not be reached
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RemoteError is a failure reported by a function or an unexpected backend
// status. Message is the backend's error text, unchanged.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// errorBody covers both the table error shape and the function error shape
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func readErrorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// tableError maps a failed table response to the error taxonomy
func tableError(resp *http.Response, table, id string) error {
	message := readErrorMessage(resp)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Status: resp.StatusCode, Message: message}
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return &ValidationError{Status: resp.StatusCode, Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Table: table, ID: id, Message: message}
	}
	return &RemoteError{Status: resp.StatusCode, Message: message}
}

// storageError maps a failed upload response to the error taxonomy
func storageError(resp *http.Response) error {
	message := readErrorMessage(resp)
	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Status: resp.StatusCode, Message: message}
	}
	return &StorageError{Status: resp.StatusCode, Message: message}
}

// functionError maps a failed function response to the error taxonomy
func functionError(resp *http.Response) error {
	message := readErrorMessage(resp)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Status: resp.StatusCode, Message: message}
	}
	return &RemoteError{Status: resp.StatusCode, Message: message}
}
