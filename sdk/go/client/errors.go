package client

import (
	"errors"
	"fmt"
)

var (
	ErrClientClosed     = errors.New("client is closed")
	ErrNotConnected     = errors.New("client is not connected")
	ErrAlreadyConnected = errors.New("client is already connected")
	ErrUnauthorized     = errors.New("unauthorized")
)

// StatusError is returned when the inspector answers with an unexpected
// status code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inspector returned %d: %s", e.Code, e.Message)
}
