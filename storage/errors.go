package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Storage error constants
var (
	// ErrAnnotationNotFound is returned when no annotation has the requested id
	ErrAnnotationNotFound = errors.New("annotation not found")

	// ErrLicenseInsufficient is returned when the cluster license is below the required level
	ErrLicenseInsufficient = errors.New("license level insufficient")

	// ErrLicenseInactive is returned when the cluster license is not active
	ErrLicenseInactive = errors.New("license is not active")

	// ErrUnexpectedResponse is returned when Elasticsearch answers with a body we cannot read
	ErrUnexpectedResponse = errors.New("unexpected Elasticsearch response")
)

// resourceAlreadyExists is the error type Elasticsearch reports for a duplicate index
const resourceAlreadyExists = "resource_already_exists_exception"

// ResponseError is an Elasticsearch error response
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

// Error implements the error interface
func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("elasticsearch returned status %d: [%s] %s", e.StatusCode, e.Type, e.Reason)
}

// newResponseError decodes an Elasticsearch error body. The error field is
// either an object or, for some endpoints, a plain string.
func newResponseError(statusCode int, body []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: statusCode}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return respErr
	}

	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		respErr.Type = detail.Type
		respErr.Reason = detail.Reason
		return respErr
	}

	var reason string
	if err := json.Unmarshal(envelope.Error, &reason); err == nil {
		respErr.Reason = reason
	}
	return respErr
}

// IsNotFound reports whether err is an Elasticsearch 404
func IsNotFound(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

// isAlreadyExists reports whether err is a duplicate index error
func isAlreadyExists(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.Type == resourceAlreadyExists
}
