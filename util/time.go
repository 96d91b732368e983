package util

import (
	"os"
	"time"
)

var timeNow = time.Now

// ModTime returns the modification time of the file, or the zero time if it does not exist.
func ModTime(path string) time.Time {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}

	return fileInfo.ModTime()
}

// IsOutdated reports whether any of the outputs is missing or older than the newest of the inputs.
func IsOutdated(inputs, outputs []string) bool {
	if len(outputs) == 0 {
		return true
	}

	var newestInput time.Time

	for _, input := range inputs {
		if modTime := ModTime(input); modTime.After(newestInput) {
			newestInput = modTime
		}
	}

	for _, output := range outputs {
		modTime := ModTime(output)
		if modTime.IsZero() || modTime.Before(newestInput) {
			return true
		}
	}

	return false
}
