package trierr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndSet(t *testing.T) {
	Register(1, "failed")
	Set(1)
	require.Equal(t, "failed", LastString())
}

func TestUnregisteredCodeIsGeneralError(t *testing.T) {
	Clear()
	Set(Code(987654))
	require.Equal(t, "general error", LastString())
}

func TestSystemErrorCapturesUnderlying(t *testing.T) {
	SetSystemError(errors.New("no such file or directory"))
	require.Equal(t, SysError, Last())
	require.Equal(t, "no such file or directory", LastString())
}

func TestGoroutineLocalIsolation(t *testing.T) {
	Set(DuplicateKey)
	done := make(chan Code)
	go func() {
		Set(NotFound)
		done <- Last()
	}()
	other := <-done
	require.Equal(t, NotFound, other)
	require.Equal(t, DuplicateKey, Last())
}
