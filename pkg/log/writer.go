package log

import (
	"strings"
)

// Writer logs everything written to it at Level, one entry per line. It is used to stream the output of
// external tools through the logger of the step that runs them.
type Writer struct {
	Logger Logger
	Level  Level
}

func (w *Writer) Write(p []byte) (int, error) {
	for line := range strings.Lines(string(p)) {
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			w.Logger.Log(w.Level, line)
		}
	}

	return len(p), nil
}
