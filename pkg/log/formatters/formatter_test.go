package formatters_test

import (
	"bytes"
	"testing"

	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/pkg/log/formatters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		format       string
		expectedName string
		expectedErr  bool
	}{
		{"pretty", formatters.PrettyFormatterName, false},
		{"Pretty, no-color", formatters.PrettyFormatterName, false},
		{"key-value,no-timestamp", formatters.KeyValueFormatterName, false},
		{"json", "", true},
		{"pretty,bogus", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()

			formatter, err := formatters.ParseFormat(tc.format)
			if tc.expectedErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedName, formatter.Name())
		})
	}
}

func TestPrettyFormatterWithoutColors(t *testing.T) {
	t.Parallel()

	formatter := formatters.NewPrettyFormatter()
	formatter.DisableColors = true
	formatter.DisableTimestamp = true

	var buf bytes.Buffer

	logger := log.New(log.WithOutput(&buf), log.WithLevel(log.DebugLevel), log.WithFormatter(formatter))
	logger.WithField(log.FieldKeyPrefix, "alu").WithField(log.FieldKeyStep, "lint").WithField("out", "build/alu.lint").Infof("linting")

	assert.Equal(t, "INFO   [alu] lint: linting out=build/alu.lint\n", buf.String())
}

func TestKeyValueFormatter(t *testing.T) {
	t.Parallel()

	formatter := formatters.NewKeyValueFormatter()
	formatter.DisableTimestamp = true

	var buf bytes.Buffer

	logger := log.New(log.WithOutput(&buf), log.WithFormatter(formatter))
	logger.WithField(log.FieldKeyPrefix, "cpu").Warnf("no driver found")

	assert.Equal(t, "level=warn prefix=cpu msg=\"no driver found\"\n", buf.String())
}
