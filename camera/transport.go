package camera

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/camerakit/go/httpclient"
)

// Transport sends a single request and returns the response as received. It
// does not authenticate or retry. Failures where no status was received are
// returned as errors.
type Transport interface {
	Dispatch(ctx context.Context, req *Request) (*Outcome, error)
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a Transport sending requests through rt. A nil rt
// selects httpclient.DefaultPooledRoundTripper. Redirects are not followed.
func NewHTTPTransport(rt http.RoundTripper) *HTTPTransport {
	if rt == nil {
		rt = httpclient.DefaultPooledRoundTripper()
	}
	return &HTTPTransport{
		client: &http.Client{
			Transport: rt,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (t *HTTPTransport) Dispatch(ctx context.Context, req *Request) (*Outcome, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	r, err := req.httpRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(r)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	return newOutcome(resp.StatusCode, resp.Header, body), nil
}

type requestKey struct{}

// withRequest attaches the caller's Request to ctx so that dispatcher can
// forward it as written rather than rebuilding it from the http.Request.
func withRequest(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// dispatcher adapts a Transport to http.RoundTripper so that it can sit
// underneath digest.Transport.
type dispatcher struct {
	Transport
}

func (d dispatcher) RoundTrip(r *http.Request) (*http.Response, error) {
	req, err := dispatchRequest(r)
	if err != nil {
		return nil, err
	}

	outcome, err := d.Dispatch(r.Context(), req)
	if err != nil {
		return nil, err
	}
	return outcome.response(r), nil
}

// dispatchRequest returns the Request to dispatch for an attempt. When the
// caller's Request is known, the attempt is a copy of it, with the
// Authorization set by the digest layer appended as the last header.
func dispatchRequest(r *http.Request) (*Request, error) {
	orig, ok := r.Context().Value(requestKey{}).(*Request)
	if !ok {
		return requestFromHTTP(r)
	}
	if r.Body != nil {
		_ = r.Body.Close()
	}

	req := orig.Clone()
	if auth := r.Header.Get("Authorization"); auth != "" && auth != orig.headerValue("Authorization") {
		req.DelHeader("Authorization")
		req.AddHeader("Authorization", auth)
	}
	if deadline, ok := r.Context().Deadline(); ok {
		req.Timeout = time.Until(deadline)
	}
	return req, nil
}
