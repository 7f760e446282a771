// Package server provides the HTTP API for the portfolio chat assistant and
// story retrieval engine.
package server

import (
	"fmt"
	"net/http"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	Slug     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Slug)
}

// ErrUnauthorized indicates a missing or invalid admin credential
type ErrUnauthorized struct{}

func (e *ErrUnauthorized) Error() string {
	return "invalid or missing API key"
}

// ErrVectorUnavailable indicates the vector store cannot serve the request
type ErrVectorUnavailable struct {
	Reason string
}

func (e *ErrVectorUnavailable) Error() string {
	return fmt.Sprintf("vector store unavailable: %s", e.Reason)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrUnauthorized:
		return http.StatusUnauthorized
	case *ErrVectorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
