package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorMessage(t *testing.T) {
	err := NewTransportError("https://example.com/m/up", stderrors.New("unexpected status 503"))
	assert.Equal(t, "TRANSPORT_FAILURE: request to https://example.com/m/up failed (caused by: unexpected status 503)", err.Error())

	assert.Equal(t, `INVALID_INPUT: invalid input: "abc"`, NewInvalidInputError("abc").Error())
}

func TestIsTypeFollowsWrapping(t *testing.T) {
	mismatch := NewLayoutMismatchError("full", "missing item 8")
	structure := NewStructureError("no detail layout matched", stderrors.Join(mismatch))
	wrapped := fmt.Errorf("failed to load film: %w", structure)

	tests := []struct {
		name      string
		err       error
		errorType string
		want      bool
	}{
		{"direct", structure, ErrorTypeStructureMissing, true},
		{"wrapped by fmt", wrapped, ErrorTypeStructureMissing, true},
		{"cause inside join", wrapped, ErrorTypeLayoutMismatch, true},
		{"other type", wrapped, ErrorTypeTransport, false},
		{"plain error", stderrors.New("boom"), ErrorTypeTransport, false},
		{"nil", nil, ErrorTypeTransport, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errorType))
		})
	}
}
