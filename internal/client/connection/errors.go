package connection

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError is returned when a request could not be completed or the backend
// answered with a non-2xx status
type NetworkError struct {
	Op     string // "list rooms", "load history", "send message"
	Status int    // 0 when no response was received
	Detail string
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s: backend returned %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a 2xx body does not have the expected shape
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is, or wraps, a NetworkError
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsMalformed reports whether err is, or wraps, a MalformedResponseError
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}
