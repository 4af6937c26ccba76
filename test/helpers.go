package test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
)

func Context(t testing.TB) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx
}

// DigestServerConfig describes the challenge a DigestServer issues and the
// credentials it accepts.
type DigestServerConfig struct {
	Username string
	Password string
	Realm    string
	Nonce    string
	Opaque   string
	QOP      string // empty for RFC 2069 style challenges

	// Stale marks every challenge issued after a digest attempt as stale.
	Stale bool
}

// DigestServer is an httptest.Server guarding a handler with RFC 2617 Digest
// authentication. Responses are verified independently of the code under
// test, using crypto/md5.
type DigestServer struct {
	*httptest.Server

	config   DigestServerConfig
	requests atomic.Int32
	rejected atomic.Int32
}

func NewDigestServer(t testing.TB, config DigestServerConfig, handler http.Handler) *DigestServer {
	t.Helper()

	if config.Realm == "" {
		config.Realm = "IP Camera"
	}
	if config.Nonce == "" {
		config.Nonce = "dcd98b7102dd2f0e8b11d0f600bfb0c093"
	}

	s := &DigestServer{config: config}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		authorization := r.Header.Get("Authorization")
		if !strings.HasPrefix(authorization, "Digest ") {
			s.challenge(w, false)
			return
		}
		if err := s.verify(r, authorization); err != nil {
			s.rejected.Add(1)
			s.challenge(w, s.config.Stale)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)

	return s
}

// Requests returns the number of requests the server has received.
func (s *DigestServer) Requests() int {
	return int(s.requests.Load())
}

// Rejected returns the number of digest credentials the server refused.
func (s *DigestServer) Rejected() int {
	return int(s.rejected.Load())
}

func (s *DigestServer) challenge(w http.ResponseWriter, stale bool) {
	var b strings.Builder
	fmt.Fprintf(&b, `Digest realm="%s", nonce="%s"`, s.config.Realm, s.config.Nonce)
	if s.config.QOP != "" {
		fmt.Fprintf(&b, `, qop="%s"`, s.config.QOP)
	}
	if s.config.Opaque != "" {
		fmt.Fprintf(&b, `, opaque="%s"`, s.config.Opaque)
	}
	if stale {
		b.WriteString(`, stale=TRUE`)
	} else {
		b.WriteString(`, stale=FALSE`)
	}

	w.Header().Set("WWW-Authenticate", b.String())
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte("401 Unauthorized\r\n"))
}

var pattAuthParam = regexp.MustCompile(`([a-z]+)=(?:"([^"]*)"|([^,\s]+))`)

func (s *DigestServer) verify(r *http.Request, authorization string) error {
	params := make(map[string]string)
	for _, m := range pattAuthParam.FindAllStringSubmatch(authorization, -1) {
		params[m[1]] = m[2] + m[3]
	}

	if params["username"] != s.config.Username {
		return fmt.Errorf("unknown user %q", params["username"])
	}
	if params["realm"] != s.config.Realm || params["nonce"] != s.config.Nonce {
		return fmt.Errorf("realm or nonce mismatch")
	}
	if params["uri"] != r.URL.RequestURI() {
		return fmt.Errorf("uri %q does not match request target %q", params["uri"], r.URL.RequestURI())
	}
	if s.config.Opaque != "" && params["opaque"] != s.config.Opaque {
		return fmt.Errorf("opaque mismatch")
	}

	ha1 := md5hex(s.config.Username + ":" + s.config.Realm + ":" + s.config.Password)
	ha2 := md5hex(r.Method + ":" + params["uri"])

	var expected string
	if s.config.QOP != "" {
		if params["qop"] != "auth" || params["nc"] == "" || params["cnonce"] == "" {
			return fmt.Errorf("missing qop directives")
		}
		expected = md5hex(strings.Join([]string{ha1, s.config.Nonce, params["nc"], params["cnonce"], "auth", ha2}, ":"))
	} else {
		expected = md5hex(ha1 + ":" + s.config.Nonce + ":" + ha2)
	}

	if params["response"] != expected {
		return fmt.Errorf("bad response")
	}
	return nil
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
