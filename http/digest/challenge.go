package digest

import (
	"fmt"
	"net/http"
	"strings"
)

// Challenge is a parsed Digest WWW-Authenticate challenge as described in
// [RFC 2617 Section 3.2.1].
//
// [RFC 2617 Section 3.2.1]: https://www.rfc-editor.org/rfc/rfc2617#section-3.2.1
type Challenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	QOP       string
	Algorithm string
	Stale     bool

	// Params holds every directive in the challenge, keyed by lowercase name.
	Params map[string]string
}

// ParseChallenge parses a WWW-Authenticate header value such as
//
//	Digest realm="IP Camera", nonce="abc123", qop="auth", stale=FALSE
//
// The scheme token must be exactly "Digest" and the challenge must carry a
// nonce. Directives may appear in any order; when a directive is repeated the
// last occurrence wins.
func ParseChallenge(value string) (Challenge, error) {
	value = strings.TrimSpace(value)

	scheme, rest := value, ""
	if i := strings.IndexAny(value, " \t"); i >= 0 {
		scheme, rest = value[:i], value[i+1:]
	}
	if scheme != "Digest" {
		return Challenge{}, fmt.Errorf("%w: scheme %q", ErrNotDigest, scheme)
	}

	params := parseParams(rest)
	c := Challenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		Opaque:    params["opaque"],
		QOP:       params["qop"],
		Algorithm: params["algorithm"],
		Stale:     strings.EqualFold(params["stale"], "true"),
		Params:    params,
	}

	if c.Nonce == "" {
		return c, ErrMissingNonce
	}

	return c, nil
}

// FindChallenge returns the first usable Digest challenge among the
// WWW-Authenticate values in h. If none is usable, the error from the last
// candidate is returned.
func FindChallenge(h http.Header) (Challenge, error) {
	values := h.Values("WWW-Authenticate")
	if len(values) == 0 {
		return Challenge{}, ErrNoChallenge
	}

	var err error
	for _, v := range values {
		var c Challenge
		c, err = ParseChallenge(v)
		if err == nil {
			return c, nil
		}
	}
	return Challenge{}, err
}

// parseParams splits a comma separated list of auth-params. Commas inside
// quoted strings do not separate directives, and backslash escapes inside
// quoted strings are honoured.
func parseParams(s string) map[string]string {
	params := make(map[string]string)

	for {
		s = strings.TrimLeft(s, " \t,")
		if s == "" {
			return params
		}

		i := strings.IndexAny(s, "=,")
		if i < 0 {
			// trailing token with no value
			return params
		}
		if s[i] == ',' {
			s = s[i+1:]
			continue
		}

		key := strings.ToLower(strings.TrimSpace(s[:i]))
		s = strings.TrimLeft(s[i+1:], " \t")

		var val string
		if strings.HasPrefix(s, `"`) {
			val, s = readQuoted(s[1:])
		} else {
			j := strings.IndexByte(s, ',')
			if j < 0 {
				j = len(s)
			}
			val, s = strings.TrimSpace(s[:j]), s[j:]
		}

		if key != "" {
			params[key] = val
		}
	}
}

// readQuoted reads a quoted-string whose opening quote has already been
// consumed. An unterminated string runs to the end of the input.
func readQuoted(s string) (val, rest string) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), s[i+1:]
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), ""
}
