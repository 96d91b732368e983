package log

import "sort"

const (
	// FieldKeyPrefix holds the name of the module or program a message belongs to.
	FieldKeyPrefix = "prefix"
	// FieldKeyStep holds the kind of build step that produced a message.
	FieldKeyStep = "step"
)

// Fields type, used to pass to `WithFields`.
type Fields map[string]any

// Keys returns the sorted field names, skipping removeKeys.
func (fields Fields) Keys(removeKeys ...string) []string {
	keys := make([]string, 0, len(fields))

	for key := range fields {
		var skip bool

		for _, removeKey := range removeKeys {
			if key == removeKey {
				skip = true
				break
			}
		}

		if !skip {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys
}
