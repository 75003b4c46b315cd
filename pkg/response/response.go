package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// Kind classifies an AppError. Each kind maps to exactly one HTTP status.
type Kind string

const (
	KindBadRequest      Kind = "bad_request"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindRateLimited     Kind = "rate_limited"
	KindUpstreamError   Kind = "upstream_error"
	KindUpstreamTimeout Kind = "upstream_timeout"
	KindInternal        Kind = "internal_error"
)

var kindStatus = map[Kind]int{
	KindBadRequest:      http.StatusBadRequest,
	KindUnauthorized:    http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindRateLimited:     http.StatusTooManyRequests,
	KindUpstreamError:   http.StatusBadGateway,
	KindUpstreamTimeout: http.StatusGatewayTimeout,
	KindInternal:        http.StatusInternalServerError,
}

// Status returns the HTTP status for k.
func (k Kind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AppError is a classified application error. Message is safe to show to
// clients; Err, when set, is the underlying cause and is only logged.
type AppError struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause error) *AppError {
	return &AppError{Kind: kind, HTTPStatus: kind.Status(), Message: msg, Err: cause}
}

func NewBadRequest(msg string) *AppError   { return newError(KindBadRequest, msg, nil) }
func NewUnauthorized(msg string) *AppError { return newError(KindUnauthorized, msg, nil) }
func NewForbidden(msg string) *AppError    { return newError(KindForbidden, msg, nil) }
func NewNotFound(msg string) *AppError     { return newError(KindNotFound, msg, nil) }
func NewConflict(msg string) *AppError     { return newError(KindConflict, msg, nil) }
func NewRateLimited(msg string) *AppError  { return newError(KindRateLimited, msg, nil) }

func NewUpstreamError(msg string, cause error) *AppError {
	return newError(KindUpstreamError, msg, cause)
}

func NewUpstreamTimeout(msg string, cause error) *AppError {
	return newError(KindUpstreamTimeout, msg, cause)
}

func NewServerError(msg string, cause error) *AppError {
	return newError(KindInternal, msg, cause)
}

// KindOf reports the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Success writes data as the response body with 200 OK.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes data as the response body with 201 Created.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error writes err as {"error": message}. An *AppError anywhere in the chain
// selects the status; anything else becomes a 500 with a generic message so
// internal details never reach the client.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorBody{Error: appErr.Message})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, NewBadRequest(msg))
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, NewUnauthorized(msg))
}

func Forbidden(c *gin.Context, msg string) {
	Error(c, NewForbidden(msg))
}

func NotFound(c *gin.Context, msg string) {
	Error(c, NewNotFound(msg))
}

func TooManyRequests(c *gin.Context, msg string) {
	Error(c, NewRateLimited(msg))
}
