package ninja

import (
	"strings"
)

// Expand substitutes `$name` and `${name}` references in a template with values from vars, the way ninja
// evaluates rule commands. Unknown variables expand to an empty string, `$$`, `$ ` and `$:` produce the
// escaped character.
func Expand(template string, vars map[string]string) string {
	var out strings.Builder

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 == len(template) {
			out.WriteByte(c)
			continue
		}

		next := template[i+1]

		switch {
		case next == '$' || next == ' ' || next == ':':
			out.WriteByte(next)
			i++
		case next == '{':
			end := strings.IndexByte(template[i+2:], '}')
			if end < 0 {
				out.WriteString(template[i:])
				return out.String()
			}

			out.WriteString(vars[template[i+2:i+2+end]])
			i += end + 2
		case isVarChar(next):
			end := i + 1
			for end < len(template) && isVarChar(template[end]) {
				end++
			}

			out.WriteString(vars[template[i+1:end]])
			i = end - 1
		default:
			out.WriteByte(c)
		}
	}

	return out.String()
}

func isVarChar(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
