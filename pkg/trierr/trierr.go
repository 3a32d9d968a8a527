// Package trierr implements the engine's error registry: a
// goroutine-local last-error slot plus a process-wide table of
// registered message strings, mirroring Basics/error.c's TRI_errno /
// TRI_last_error / TRI_set_errno / TRI_set_errno_string.
package trierr

import (
	"sync"

	"github.com/latticedb/lattice/internal/gid"
)

// Code is an integer error code. Codes below 1000 are reserved for the
// core registry; component-specific codes start at 1000.
type Code int

// Reserved codes.
const (
	NoError  Code = 0
	Failed   Code = 1
	SysError Code = 2
)

// Typed failure kinds.
const (
	DuplicateKey        Code = 1200
	NotFound            Code = 1201
	TransactionInternal Code = 1202
	OutOfBounds         Code = 1203
	ShapeMismatch       Code = 1204
	Allocation          Code = 1205
	IllegalState        Code = 1206
)

var (
	registryMu sync.RWMutex
	messages   = map[Code]string{
		NoError:  "no error",
		Failed:   "failed",
		SysError: "system error",
	}
)

// Register widens the message table to include code, duplicating msg.
// Idempotent: re-registering the same code overwrites its message.
func Register(code Code, msg string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	messages[code] = msg
}

type slot struct {
	code   Code
	sysErr error
}

var slots sync.Map // goroutine id -> *slot

func currentSlot() *slot {
	key := gid.Current()
	if v, ok := slots.Load(key); ok {
		return v.(*slot)
	}
	s := &slot{}
	slots.Store(key, s)
	return s
}

// Set stores code as the calling goroutine's last error. Any other
// code clears the captured system error; Set(SysError) keeps whatever
// system error was captured before. Use SetSystemError to record a new
// OS-level failure.
func Set(code Code) Code {
	s := currentSlot()
	s.code = code
	if code != SysError {
		s.sysErr = nil
	}
	return code
}

// SetSystemError records err as the captured OS-level failure and sets
// the last error to SysError.
func SetSystemError(err error) Code {
	s := currentSlot()
	s.code = SysError
	s.sysErr = err
	return SysError
}

// Last returns the calling goroutine's most recently set error code.
func Last() Code {
	return currentSlot().code
}

// LastString returns the registered message for the last error, the
// captured system error's text for SysError, or "general error" for an
// unregistered code.
func LastString() string {
	s := currentSlot()
	if s.code == SysError {
		if s.sysErr != nil {
			return s.sysErr.Error()
		}
		return "system error"
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	if msg, ok := messages[s.code]; ok {
		return msg
	}
	return "general error"
}

// Clear resets the calling goroutine's error slot to NoError. Useful in
// tests and at the start of a new logical operation.
func Clear() {
	s := currentSlot()
	s.code = NoError
	s.sysErr = nil
}

// Error adapts a Code to the standard error interface, so callers that
// already called Set can also return a normal Go error from the same
// call site.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if msg, ok := messages[e.Code]; ok {
		return msg
	}
	return "general error"
}

// AsError wraps code as an error without touching the goroutine-local
// slot; pair it with Set(code) when a function needs both the registry
// side effect and a return value.
func AsError(code Code) error {
	return &Error{Code: code}
}
