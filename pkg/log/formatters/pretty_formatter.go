package formatters

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/pkg/log"
)

const (
	PrettyFormatterName = "pretty"

	defaultPrettyFormatterTimestampFormat = "15:04:05.000"
)

// PrettyFormatter implements log.Formatter
var _ log.Formatter = new(PrettyFormatter)

type PrettyFormatter struct {
	// Disable the conversion of the log levels to uppercase
	DisableUppercase bool

	// DisableTimestamp allows disabling automatic timestamps in output
	DisableTimestamp bool `opt:"no-timestamp"`

	// Timestamp format to use for display when a full timestamp is printed.
	TimestampFormat string

	// Force disabling colors.
	DisableColors bool `opt:"no-color"`

	// PrefixStyle is used to assign different styles (colors) to each prefix.
	PrefixStyle PrefixStyle

	// Color scheme to use.
	colorScheme compiledColorScheme

	// Reuse for printing fields in key-value format
	keyValueFormatter *KeyValueFormatter
}

// NewPrettyFormatter returns a new PrettyFormatter instance with default values.
func NewPrettyFormatter() *PrettyFormatter {
	return &PrettyFormatter{
		TimestampFormat:   defaultPrettyFormatterTimestampFormat,
		PrefixStyle:       NewPrefixStyle(),
		colorScheme:       defaultColorScheme.Compile(),
		keyValueFormatter: &KeyValueFormatter{},
	}
}

// Name implements log.Formatter
func (formatter *PrettyFormatter) Name() string {
	return PrettyFormatterName
}

// Format implements log.Formatter
func (formatter *PrettyFormatter) Format(entry *log.Entry) ([]byte, error) {
	buf := entry.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	level := fmt.Sprintf("%-6s ", entry.Level)

	if !formatter.DisableUppercase {
		level = strings.ToUpper(level)
	}

	var (
		prefix    string
		step      string
		timestamp string
	)

	if val, ok := entry.Fields[log.FieldKeyPrefix].(string); ok && val != "" {
		prefix = fmt.Sprintf("[%s] ", val)
	}

	if val, ok := entry.Fields[log.FieldKeyStep].(string); ok && val != "" {
		step = val + ": "
	}

	if !formatter.DisableTimestamp && formatter.TimestampFormat != "" {
		timestamp = entry.Time.Format(formatter.TimestampFormat) + " "
	}

	if !formatter.DisableColors {
		level = formatter.colorScheme.LevelColorFunc(entry.Level)(level)
		timestamp = formatter.colorScheme.ColorFunc(TimestampStyle)(timestamp)
		step = formatter.colorScheme.ColorFunc(StepStyle)(step)

		if prefix != "" {
			prefix = formatter.PrefixStyle.ColorFunc(prefix)(prefix)
		}
	}

	if _, err := fmt.Fprintf(buf, "%s%s%s%s%s", timestamp, level, prefix, step, entry.Message); err != nil {
		return nil, errors.New(err)
	}

	for _, key := range entry.Fields.Keys(log.FieldKeyPrefix, log.FieldKeyStep) {
		if err := formatter.keyValueFormatter.appendKeyValue(buf, key, entry.Fields[key], true); err != nil {
			return nil, err
		}
	}

	if err := buf.WriteByte('\n'); err != nil {
		return nil, errors.New(err)
	}

	return buf.Bytes(), nil
}
