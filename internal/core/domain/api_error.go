package domain

import (
	"errors"
	"fmt"
)

type APIErrorKind int

const (
	APIErrorUnknown APIErrorKind = iota
	APIErrorInvalidURL
	APIErrorRequestFailed
	APIErrorInvalidResponse
	APIErrorDecoding
	APIErrorEncoding
	APIErrorServer
	APIErrorAuthTokenMissing
)

func (k APIErrorKind) String() string {
	switch k {
	case APIErrorInvalidURL:
		return "invalid url"
	case APIErrorRequestFailed:
		return "request failed"
	case APIErrorInvalidResponse:
		return "invalid response"
	case APIErrorDecoding:
		return "decoding error"
	case APIErrorEncoding:
		return "encoding error"
	case APIErrorServer:
		return "server error"
	case APIErrorAuthTokenMissing:
		return "auth token missing"
	default:
		return "unknown error"
	}
}

// APIError is the only error shape the upstream client returns.
type APIError struct {
	Kind        APIErrorKind
	StatusCode  int
	Description string
	Err         error
}

var (
	ErrInvalidURL       = &APIError{Kind: APIErrorInvalidURL}
	ErrRequestFailed    = &APIError{Kind: APIErrorRequestFailed}
	ErrInvalidResponse  = &APIError{Kind: APIErrorInvalidResponse}
	ErrDecoding         = &APIError{Kind: APIErrorDecoding}
	ErrEncoding         = &APIError{Kind: APIErrorEncoding}
	ErrServer           = &APIError{Kind: APIErrorServer}
	ErrAuthTokenMissing = &APIError{Kind: APIErrorAuthTokenMissing}
	ErrUnknown          = &APIError{Kind: APIErrorUnknown}
)

func NewAPIError(kind APIErrorKind, description string, cause error) *APIError {
	return &APIError{Kind: kind, Description: description, Err: cause}
}

func NewServerError(statusCode int, description string) *APIError {
	return &APIError{Kind: APIErrorServer, StatusCode: statusCode, Description: description}
}

func (e *APIError) Error() string {
	switch {
	case e.Kind == APIErrorServer:
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Description)
	case e.Description != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Description)
	default:
		return e.Kind.String()
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches on kind, and on status code when the target carries one.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// AsAPIError converts any error into the closed taxonomy.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Kind: APIErrorUnknown, Description: err.Error(), Err: err}
}
