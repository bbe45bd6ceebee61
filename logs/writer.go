package logs

import (
	"io"
	"os"
)

// Writer receives text log output. Tests fork it to capture records.
type Writer io.Writer

func (Module) Writer() Writer {
	return os.Stderr
}
