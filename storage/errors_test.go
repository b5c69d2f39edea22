package storage

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewResponseError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantType   string
		wantReason string
	}{
		{
			name:       "object error",
			body:       `{"error":{"root_cause":[],"type":"resource_already_exists_exception","reason":"index [x] already exists"},"status":400}`,
			wantType:   "resource_already_exists_exception",
			wantReason: "index [x] already exists",
		},
		{
			name:       "string error",
			body:       `{"error":"Incorrect HTTP method","status":405}`,
			wantReason: "Incorrect HTTP method",
		},
		{
			name: "empty body",
			body: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newResponseError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, err.StatusCode)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantReason, err.Reason)
		})
	}
}

func TestResponseErrorHelpers(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &ResponseError{StatusCode: http.StatusNotFound})
	exists := fmt.Errorf("wrapped: %w", &ResponseError{StatusCode: http.StatusBadRequest, Type: resourceAlreadyExists})

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(exists))
	assert.True(t, isAlreadyExists(exists))
	assert.False(t, isAlreadyExists(notFound))
	assert.Contains(t, exists.Error(), "resource_already_exists_exception")
}
