package jsonvalue

import (
	"fmt"
	"os"

	"github.com/latticedb/lattice/pkg/trierr"
)

// SaveToFile writes v's canonical JSON text to path using the
// temp-file + fsync + atomic-rename protocol: write to
// "<path>.tmp", append a trailing newline, fsync, close, then rename
// over path. Any failure unlinks the temp file and surfaces SysError.
func SaveToFile(path string, v *Value) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		trierr.SetSystemError(err)
		return fmt.Errorf("jsonvalue: create temp file %s: %w", tmp, err)
	}

	if err := writeAndSync(f, v); err != nil {
		f.Close()
		os.Remove(tmp)
		trierr.SetSystemError(err)
		return fmt.Errorf("jsonvalue: write %s: %w", tmp, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		trierr.SetSystemError(err)
		return fmt.Errorf("jsonvalue: close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		trierr.SetSystemError(err)
		return fmt.Errorf("jsonvalue: rename %s to %s: %w", tmp, path, err)
	}

	return nil
}

func writeAndSync(f *os.File, v *Value) error {
	text := v.Stringify() + "\n"
	if _, err := f.WriteString(text); err != nil {
		return err
	}
	return f.Sync()
}
