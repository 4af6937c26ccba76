package camera

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"strings"
)

type Field struct {
	Key   string
	Value string
}

// Outcome is the response to a dispatched Request.
type Outcome struct {
	StatusCode int
	Header     []Field
	Body       []byte
}

// Get returns the first value of the named header, matched case-insensitively.
func (o *Outcome) Get(key string) string {
	for _, f := range o.Header {
		if strings.EqualFold(f.Key, key) {
			return f.Value
		}
	}
	return ""
}

// Values decodes the body with ParseBody.
func (o *Outcome) Values() Values {
	return ParseBody(string(o.Body))
}

func (o *Outcome) ok() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

func newOutcome(status int, h http.Header, body []byte) *Outcome {
	o := &Outcome{StatusCode: status, Body: body}

	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		for _, value := range h[key] {
			o.Header = append(o.Header, Field{Key: key, Value: value})
		}
	}
	return o
}

func (o *Outcome) response(req *http.Request) *http.Response {
	h := make(http.Header, len(o.Header))
	for _, f := range o.Header {
		h.Add(f.Key, f.Value)
	}
	return &http.Response{
		Status:        http.StatusText(o.StatusCode),
		StatusCode:    o.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(o.Body)),
		ContentLength: int64(len(o.Body)),
		Request:       req,
	}
}
