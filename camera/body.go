package camera

import "strings"

// Values maps parameter names to values as reported by the camera.
type Values map[string]string

var lineEndings = strings.NewReplacer("\r", "", "\n", "")

// ParseBody decodes a "key=value&key=value" payload. Line endings are removed
// before splitting, entries missing a key or a value are dropped, and the
// last occurrence of a key wins.
func ParseBody(body string) Values {
	values := Values{}
	body = lineEndings.Replace(body)
	if body == "" {
		return values
	}

	for _, pair := range strings.Split(body, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			continue
		}
		values[key] = value
	}
	return values
}
