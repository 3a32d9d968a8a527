// Package gid extracts the calling goroutine's runtime id.
//
// The transaction scope stack and the error registry both need
// thread-local-style state (the scope stack of owning transactions,
// the last error code). Go has no native TLS, so both packages key
// their per-goroutine slot off this id instead of threading a handle
// through every call.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the id of the calling goroutine.
func Current() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	// buf starts with "goroutine 123 [running]: ..."
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	idx := bytes.IndexByte(buf, ' ')
	if idx < 0 {
		return 0
	}

	id, err := strconv.ParseUint(string(buf[:idx]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
