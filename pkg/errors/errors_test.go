package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndError(t *testing.T) {
	err := New(ErrConfigLoad, "could not load config")
	assert.Equal(t, "[CONFIG_LOAD] could not load config", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("open failed")
	err := Wrap(cause, ErrVDFRead, "reading libraryfolders.vdf")
	assert.Equal(t, "[VDF_READ] reading libraryfolders.vdf: open failed", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrapNilReturnsNil(t *testing.T) {
	var err *RestorerError = Wrap(nil, ErrDownload, "")
	assert.Nil(t, err)
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", New(ErrLoginDenied, "denied"), ErrLoginDenied, true},
		{"different code", New(ErrLoginDenied, "denied"), ErrDownload, false},
		{"wrapped restorer error", fmt.Errorf("outer: %w", New(ErrResolveTimeout, "slow")), ErrResolveTimeout, true},
		{"plain error", errors.New("plain"), ErrUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrManifestParse, GetErrorCode(New(ErrManifestParse, "bad acf")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrDownload, "fetch failed").WithDetail("appid", uint32(440))
	assert.Equal(t, uint32(440), err.Details["appid"])
}
