// Package apierror models the backend's error envelope. Every 4xx/5xx
// response carries a {"detail": ...} body; the terminal surfaces that detail
// to the operator without ever exposing transport internals.
package apierror

import (
	"errors"
	"fmt"
)

// APIError is the canonical error envelope of the backend API.
type APIError struct {
	Status int    `json:"-"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Detail)
	}
	return e.Detail
}

func New(status int, detail string) *APIError {
	return &APIError{Status: status, Detail: detail}
}

// IsStatus reports whether err is (or wraps) an APIError with the given HTTP
// status.
func IsStatus(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.Status == status
}
