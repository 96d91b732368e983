package formatters

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/pkg/log"
)

const (
	KeyValueFormatterName = "key-value"

	defaultKeyValueTimestampFormat = time.RFC3339
)

// KeyValueFormatter implements log.Formatter
var _ log.Formatter = new(KeyValueFormatter)

// KeyValueFormatter renders entries as `time=... level=... msg=...` lines, suitable for CI logs.
type KeyValueFormatter struct {
	// DisableTimestamp allows disabling automatic timestamps in output
	DisableTimestamp bool `opt:"no-timestamp"`

	// Kept for symmetry with the pretty format, this formatter never colors output.
	DisableColors bool `opt:"no-color"`

	// Timestamp format to use.
	TimestampFormat string
}

// NewKeyValueFormatter returns a new KeyValueFormatter instance with default values.
func NewKeyValueFormatter() *KeyValueFormatter {
	return &KeyValueFormatter{
		TimestampFormat: defaultKeyValueTimestampFormat,
	}
}

// Name implements log.Formatter
func (formatter *KeyValueFormatter) Name() string {
	return KeyValueFormatterName
}

// Format implements log.Formatter
func (formatter *KeyValueFormatter) Format(entry *log.Entry) ([]byte, error) {
	buf := entry.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	var firstItem = true

	if !formatter.DisableTimestamp && formatter.TimestampFormat != "" {
		if err := formatter.appendKeyValue(buf, "time", entry.Time.Format(formatter.TimestampFormat), !firstItem); err != nil {
			return nil, err
		}

		firstItem = false
	}

	if err := formatter.appendKeyValue(buf, "level", entry.Level.String(), !firstItem); err != nil {
		return nil, err
	}

	for _, key := range []string{log.FieldKeyPrefix, log.FieldKeyStep} {
		if val, ok := entry.Fields[key]; ok && val != nil && val != "" {
			if err := formatter.appendKeyValue(buf, key, val, true); err != nil {
				return nil, err
			}
		}
	}

	if err := formatter.appendKeyValue(buf, "msg", entry.Message, true); err != nil {
		return nil, err
	}

	for _, key := range entry.Fields.Keys(log.FieldKeyPrefix, log.FieldKeyStep) {
		if err := formatter.appendKeyValue(buf, key, entry.Fields[key], true); err != nil {
			return nil, err
		}
	}

	if err := buf.WriteByte('\n'); err != nil {
		return nil, errors.New(err)
	}

	return buf.Bytes(), nil
}

func (formatter *KeyValueFormatter) appendKeyValue(buf *bytes.Buffer, key string, value any, appendSpace bool) error {
	keyFmt := "%s=%s"
	if appendSpace {
		keyFmt = " " + keyFmt
	}

	if _, err := fmt.Fprintf(buf, keyFmt, key, quoteValue(value)); err != nil {
		return errors.New(err)
	}

	return nil
}

func quoteValue(value any) string {
	var str string

	switch value := value.(type) {
	case string:
		str = value
	case error:
		str = value.Error()
	default:
		str = fmt.Sprint(value)
	}

	if str == "" || strings.ContainsAny(str, " \t\"=") {
		return fmt.Sprintf("%q", str)
	}

	return str
}
