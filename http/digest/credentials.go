package digest

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Scheme selects how credentials are presented to the server.
type Scheme int

const (
	// SchemeNone sends no credentials and never answers a challenge.
	SchemeNone Scheme = iota
	// SchemeBasic sends a Basic authorization header up front, and answers a
	// Digest challenge if the server issues one anyway.
	SchemeBasic
	// SchemeDigest sends the first request without credentials and answers
	// the server's Digest challenge.
	SchemeDigest
)

func (s Scheme) String() string {
	switch s {
	case SchemeNone:
		return "none"
	case SchemeBasic:
		return "basic"
	case SchemeDigest:
		return "digest"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// ParseScheme parses the lowercase names returned by Scheme.String. The empty
// string is treated as "none".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SchemeNone, nil
	case "basic":
		return SchemeBasic, nil
	case "digest":
		return SchemeDigest, nil
	default:
		return SchemeNone, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// Credentials are the username and password presented to the camera, and the
// scheme used to present them.
type Credentials struct {
	Username string
	Password string
	Scheme   Scheme
}

func (c Credentials) usable() bool {
	return c.Scheme != SchemeNone && c.Username != ""
}

func (c Credentials) basicAuthorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

// AuthorizationScheme reports the scheme of an Authorization header value.
// Values that are neither Basic nor Digest report SchemeNone.
func AuthorizationScheme(authorization string) Scheme {
	scheme, _, _ := strings.Cut(strings.TrimSpace(authorization), " ")
	switch {
	case strings.EqualFold(scheme, "Digest"):
		return SchemeDigest
	case strings.EqualFold(scheme, "Basic"):
		return SchemeBasic
	default:
		return SchemeNone
	}
}
