package camera

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// Request describes a single call to the camera. Header entries are raw
// "Key: Value" strings and are sent in order.
type Request struct {
	Method string
	Scheme string // defaults to http
	Host   string
	Path   string
	Query  string
	Header []string
	Body   []byte

	// Timeout bounds each round trip made on behalf of the request. Zero
	// selects the client default.
	Timeout time.Duration
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = slices.Clone(r.Header)
	if r.Body != nil {
		c.Body = slices.Clone(r.Body)
	}
	return &c
}

// AddHeader appends a "Key: Value" entry.
func (r *Request) AddHeader(key, value string) {
	r.Header = append(r.Header, key+": "+value)
}

// DelHeader removes every entry named key. Names are compared
// case-insensitively.
func (r *Request) DelHeader(key string) {
	r.Header = slices.DeleteFunc(r.Header, func(entry string) bool {
		k, _, ok := strings.Cut(entry, ":")
		return ok && strings.EqualFold(strings.TrimSpace(k), key)
	})
}

// headerValue returns the value of the first entry named key, or "" if there
// is none.
func (r *Request) headerValue(key string) string {
	for _, entry := range r.Header {
		k, v, ok := strings.Cut(entry, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// URL returns the absolute URL the request is sent to.
func (r *Request) URL() *url.URL {
	scheme := r.Scheme
	if scheme == "" {
		scheme = "http"
	}
	path := r.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     path,
		RawQuery: r.Query,
	}
}

func (r *Request) httpRequest(ctx context.Context) (*http.Request, error) {
	if r.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidRequest)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL().String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	for _, entry := range r.Header {
		key, value, err := parseHeader(entry)
		if err != nil {
			return nil, err
		}
		req.Header.Add(key, value)
	}

	return req, nil
}

func parseHeader(entry string) (string, string, error) {
	key, value, ok := strings.Cut(entry, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !ok || !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHeader, entry)
	}
	return key, value, nil
}

// requestFromHTTP converts an outgoing http.Request into a Request for
// dispatch when the caller's Request is not available. Headers are emitted
// in key order. The request body is consumed.
func requestFromHTTP(r *http.Request) (*Request, error) {
	req := &Request{
		Method: r.Method,
		Scheme: r.URL.Scheme,
		Host:   r.URL.Host,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	}

	keys := make([]string, 0, len(r.Header))
	for key := range r.Header {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		for _, value := range r.Header[key] {
			req.AddHeader(key, value)
		}
	}

	if r.Body != nil && r.Body != http.NoBody {
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		req.Body = body
	}

	if deadline, ok := r.Context().Deadline(); ok {
		req.Timeout = time.Until(deadline)
	}

	return req, nil
}
