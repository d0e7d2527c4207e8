// Package errs defines the errors dummy handlers return. The Errors
// middleware renders them as failure envelopes.
package errs

import (
	"fmt"
	"net/http"
	"runtime"
)

// Error is a failed fixture call.
//
// Status is the HTTP status written; business failures use 200 and let
// the envelope carry the outcome. Code and Message become the envelope's
// resultCode and resultMsg.
type Error struct {
	Status   int
	Code     string
	Message  string
	FuncName string
	FileName string
	InnerErr bool
}

// New returns a business failure: HTTP 200 with a failed envelope.
func New(code string, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Status:   http.StatusOK,
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// NewStatus returns a failure written with a non-2xx status.
func NewStatus(status int, code string, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Status:   status,
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// NewInternal returns an error whose message is hidden from callers.
func NewInternal(err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Status:   http.StatusInternalServerError,
		Code:     "E9999",
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
		InnerErr: true,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsInternal returns true if the error is internal.
func (e *Error) IsInternal() bool {
	return e.InnerErr
}
