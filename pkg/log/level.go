package log

import (
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/sirupsen/logrus"
)

// Level is the severity of a log entry. Lower values are more severe.
type Level uint32

const (
	// StderrLevel and StdoutLevel carry the raw output of external tools.
	StderrLevel Level = iota
	StdoutLevel
	// ErrorLevel is used for failures that end the build.
	ErrorLevel
	// WarnLevel is used for problems that do not change the exit status.
	WarnLevel
	// InfoLevel reports each step as it runs.
	InfoLevel
	DebugLevel
	TraceLevel
)

// logrus has panic and fatal below error, which hdlbuild never uses; the two output levels take their place.
const logrusLevelOffset = 2

var levelNames = []string{"stderr", "stdout", "error", "warn", "info", "debug", "trace"}

// ParseLevel returns the level with the given name, ignoring case.
func ParseLevel(name string) (Level, error) {
	for level, levelName := range levelNames {
		if strings.EqualFold(levelName, name) {
			return Level(level), nil
		}
	}

	return 0, errors.Errorf("invalid level %q, supported levels: %s", name, strings.Join(levelNames, ", "))
}

func (level Level) String() string {
	if int(level) < len(levelNames) {
		return levelNames[level]
	}

	return ""
}

// ToLogrusLevel returns the logrus level the level is stored as.
func (level Level) ToLogrusLevel() logrus.Level {
	return logrus.Level(level + logrusLevelOffset)
}

// FromLogrusLevel is the inverse of ToLogrusLevel.
func FromLogrusLevel(lvl logrus.Level) Level {
	if lvl < logrusLevelOffset {
		return StderrLevel
	}

	return Level(lvl - logrusLevelOffset)
}
