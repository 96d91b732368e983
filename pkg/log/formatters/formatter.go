// Package formatters contains the output formats selectable with --log-format.
package formatters

import (
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/pkg/log"
)

const tagName = "opt"

type Formatters []log.Formatter

func (formatters Formatters) Names() []string {
	strs := make([]string, len(formatters))

	for i, formatter := range formatters {
		strs[i] = formatter.Name()
	}

	return strs
}

func (formatters Formatters) String() string {
	return strings.Join(formatters.Names(), ", ")
}

func AllFormatters() Formatters {
	return []log.Formatter{
		NewPrettyFormatter(),
		NewKeyValueFormatter(),
	}
}

// ParseFormat takes a string like "pretty,no-color" and returns a Formatter instance with the options applied.
func ParseFormat(str string) (log.Formatter, error) {
	var (
		allFormatters = AllFormatters()
		opts          []string
		formatter     log.Formatter
	)

	formatters := make(map[string]log.Formatter, len(allFormatters))
	for _, f := range allFormatters {
		formatters[f.Name()] = f
	}

	for _, part := range strings.Split(str, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		if f, ok := formatters[part]; ok {
			formatter = f
			continue
		}

		opts = append(opts, part)
	}

	if formatter == nil {
		return nil, errors.Errorf("invalid format %q, supported formats: %s", str, allFormatters)
	}

	for _, name := range opts {
		if err := setOpt(formatter, name, true); err != nil {
			return nil, err
		}
	}

	return formatter, nil
}

func setOpt(formatter log.Formatter, optName string, value any) error {
	val := reflect.ValueOf(formatter).Elem()
	if !val.CanAddr() {
		return errors.Errorf("cannot assign to the item passed, item must be a pointer in order to assign")
	}

	optNames := map[string]int{}

	for i := range val.NumField() {
		tagVal, ok := val.Type().Field(i).Tag.Lookup(tagName)
		if !ok {
			continue
		}

		optNames[strings.Split(tagVal, ",")[0]] = i
	}

	fieldNum, ok := optNames[optName]
	if !ok {
		return errors.Errorf("invalid option %q for the format %q, supported options: %s", optName, formatter.Name(), strings.Join(slices.Sorted(maps.Keys(optNames)), ", "))
	}

	val.Field(fieldNum).Set(reflect.ValueOf(value))

	return nil
}
