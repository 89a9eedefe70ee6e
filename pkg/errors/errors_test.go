// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "no_source_error",
			code:    errors.ErrNoSourceSelected,
			message: "no source selected",
			wantStr: "[NO_SOURCE_SELECTED] no source selected",
		},
		{
			name:    "invalid_path_error",
			code:    errors.ErrInvalidPath,
			message: "cannot derive file name",
			wantStr: "[INVALID_PATH] cannot derive file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrRecordCorrupt, "field %q missing in %s", "name", "abc123")
	assert.Equal(t, `field "name" missing in abc123`, err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrStorageUnavailable, "cannot open store")

		assert.Equal(t, errors.ErrStorageUnavailable, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[STORAGE_UNAVAILABLE] cannot open store: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrLinkCreate, "link failed").
		WithDetail("source", "/data/a.txt").
		WithDetail("kind", "File")

	assert.Equal(t, "/data/a.txt", err.Details["source"])
	assert.Equal(t, "File", err.Details["kind"])
	assert.Equal(t, err.Details, errors.GetErrorDetails(err))
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrRecordNotFound, "error 1")
	err2 := errors.New(errors.ErrRecordNotFound, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	assert.True(t, err1.Is(err2))
	assert.False(t, err1.Is(err3))
	assert.True(t, stderrors.Is(err1, err2))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrInvalidPath, "bad"), errors.ErrInvalidPath, true},
		{"different_code", errors.New(errors.ErrInvalidPath, "bad"), errors.ErrInternal, false},
		{"wrapped_error", errors.Wrap(stderrors.New("base"), errors.ErrStorageUnavailable, "locked"), errors.ErrStorageUnavailable, true},
		{"standard_error", stderrors.New("standard error"), errors.ErrInvalidPath, false},
		{"nil_error", nil, errors.ErrInvalidPath, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrRecordCorrupt, errors.GetErrorCode(errors.New(errors.ErrRecordCorrupt, "x")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	storeErr := errors.Wrap(rootCause, errors.ErrStorageUnavailable, "cannot write")
	recordErr := errors.Wrap(storeErr, errors.ErrRecordCorrupt, "cannot persist")

	assert.True(t, errors.IsErrorCode(recordErr, errors.ErrRecordCorrupt))

	var vaultErr *errors.VaultError
	if assert.True(t, stderrors.As(recordErr.Unwrap(), &vaultErr)) {
		assert.Equal(t, errors.ErrStorageUnavailable, vaultErr.Code)
	}
	assert.True(t, stderrors.Is(recordErr, rootCause))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", errors.Message(nil))
	assert.Equal(t, "[INVALID_INPUT] bad request", errors.Message(errors.New(errors.ErrInvalidInput, "bad request")))
}
