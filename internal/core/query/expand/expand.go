// Package expand turns flat result rows back into nested objects using the
// alias map the compiler produced. Expansion is pure per-row work with no
// I/O and no knowledge of relations beyond the path each alias decodes to.
package expand

import "fmt"

// Error reports a row that cannot be expanded against its alias map.
type Error struct {
	Column  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("expand: column %q: %s", e.Column, e.Message)
}

// Row nests a flat row. Every column must appear in the alias map; a path of
// length one stays a top-level key, longer paths build nested maps. The
// input row is not modified.
func Row(flat map[string]any, aliasMap map[string][]string) (map[string]any, error) {
	out := make(map[string]any, len(flat))
	for col, val := range flat {
		path, ok := aliasMap[col]
		if !ok {
			return nil, &Error{Column: col, Message: "not present in alias map"}
		}
		if len(path) == 0 {
			return nil, &Error{Column: col, Message: "alias decodes to an empty path"}
		}

		m := out
		for _, seg := range path[:len(path)-1] {
			child, ok := m[seg]
			if !ok {
				next := make(map[string]any)
				m[seg] = next
				m = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				return nil, &Error{Column: col, Message: fmt.Sprintf("path segment %q collides with a scalar", seg)}
			}
			m = next
		}
		m[path[len(path)-1]] = val
	}
	return out, nil
}
