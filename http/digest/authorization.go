package digest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/camerakit/go/hash/md5"
)

const (
	// Algorithm is the only digest algorithm supported.
	Algorithm = "MD5"

	// DefaultClientNonce is the cnonce sent when no generator is configured.
	DefaultClientNonce = "0a4f113b"

	// NonceCount is always 1: every logical call answers a fresh challenge.
	NonceCount = "00000001"

	qopAuth = "auth"
)

// HA1 computes MD5(username:realm:password).
func HA1(username, realm, password string) string {
	return md5.Hex(username + ":" + realm + ":" + password)
}

// HA2 computes MD5(METHOD:uri). The method is upper-cased.
func HA2(method, uri string) string {
	return md5.Hex(strings.ToUpper(method) + ":" + uri)
}

// Response computes the request-digest. With an empty qop the RFC 2069
// compatible form MD5(HA1:nonce:HA2) is used and nc and cnonce are ignored.
func Response(ha1, nonce, nc, cnonce, qop, ha2 string) string {
	if qop == "" {
		return md5.Hex(ha1 + ":" + nonce + ":" + ha2)
	}
	return md5.Hex(strings.Join([]string{ha1, nonce, nc, cnonce, qop, ha2}, ":"))
}

// RequestURI reduces target to the digest-uri form used in the Authorization
// header: scheme and host are stripped from absolute URLs, and an empty path
// becomes "/".
func RequestURI(target string) string {
	if target == "" {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme == "" && u.Host == "") {
		return target
	}
	return u.RequestURI()
}

// Authorize builds the value of an Authorization header answering c for a
// request with the given method and uri. uri may be a full URL, in which case
// it is reduced with RequestURI. An empty cnonce selects DefaultClientNonce.
func Authorize(creds Credentials, c Challenge, method, uri, cnonce string) (string, error) {
	qop, err := c.answerable()
	if err != nil {
		return "", err
	}
	if cnonce == "" {
		cnonce = DefaultClientNonce
	}

	uri = RequestURI(uri)
	ha1 := HA1(creds.Username, c.Realm, creds.Password)
	ha2 := HA2(method, uri)
	response := Response(ha1, c.Nonce, NonceCount, cnonce, qop, ha2)

	var b strings.Builder
	b.WriteString("Digest ")
	b.WriteString(`username=` + quote(creds.Username))
	b.WriteString(`, realm=` + quote(c.Realm))
	b.WriteString(`, nonce=` + quote(c.Nonce))
	b.WriteString(`, uri=` + quote(uri))
	b.WriteString(`, algorithm=` + quote(Algorithm))
	b.WriteString(`, response=` + quote(response))
	if qop != "" {
		b.WriteString(`, qop=` + qop)
		b.WriteString(`, nc=` + NonceCount)
		b.WriteString(`, cnonce=` + quote(cnonce))
	}
	if c.Opaque != "" {
		b.WriteString(`, opaque=` + quote(c.Opaque))
	}
	return b.String(), nil
}

// Supported reports whether Authorize can answer c. It returns
// ErrMissingNonce, ErrUnsupportedAlgorithm or ErrUnsupportedQOP otherwise.
func (c Challenge) Supported() error {
	_, err := c.answerable()
	return err
}

func (c Challenge) answerable() (string, error) {
	if c.Nonce == "" {
		return "", ErrMissingNonce
	}
	if c.Algorithm != "" && !strings.EqualFold(c.Algorithm, Algorithm) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	return selectQOP(c.QOP)
}

// selectQOP picks "auth" from the server's offered qop list. An empty offer
// selects the legacy computation.
func selectQOP(offered string) (string, error) {
	if offered == "" {
		return "", nil
	}
	for _, q := range strings.Split(offered, ",") {
		if strings.TrimSpace(q) == qopAuth {
			return qopAuth, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedQOP, offered)
}

func quote(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return `"` + s + `"`
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}
