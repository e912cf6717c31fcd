package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyRequests    = errors.New("too many requests")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrNotFound names the missing entity, e.g. "Project not found".
type ErrNotFound struct {
	Entity string
}

func NotFound(entity string) *ErrNotFound {
	return &ErrNotFound{Entity: entity}
}

func (e *ErrNotFound) Error() string {
	if e.Entity == "" {
		return "record not found"
	}
	return e.Entity + " not found"
}
func (e *ErrNotFound) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusNotFound, Code: "common.record_not_found", Message: e.Error()}
}

type ErrConflict struct {
	Message string
	Cause   error
}

func (e *ErrConflict) Unwrap() error {
	return e.Cause
}
func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}
func (e *ErrConflict) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "common.conflict", Message: e.Error()}
}
