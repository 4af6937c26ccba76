// Package digest implements client-side HTTP Digest Access Authentication as
// described in [RFC 2617], using the MD5 algorithm with either no qop or
// qop=auth.
//
// The Transport type sends each request without digest credentials first. If
// the server answers 401 with a Digest challenge, the request is repeated
// exactly once with an Authorization header computed from that challenge.
// Nothing is cached between requests: every request that is challenged is
// answered from scratch.
//
// [RFC 2617]: https://www.rfc-editor.org/rfc/rfc2617.html
package digest

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/camerakit/go/logging"
)

// Upper bound on how much of a challenge response body is read so that the
// connection can be reused.
const maxDiscard = 4 << 10

var logger = logging.New("digest")

// Transport is an implementation of http.RoundTripper that answers Digest
// authentication challenges.
//
// Note: This transport buffers the request body in memory so that it can be
// replayed on the authenticated retry.
type Transport struct {
	http.RoundTripper
	Credentials Credentials

	opts options
}

func NewTransport(t http.RoundTripper, creds Credentials, opts ...Option) *Transport {
	return &Transport{
		RoundTripper: t,
		Credentials:  creds,
		opts:         makeOptions(opts...),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := logger.With(logging.GetFields(req.Context())...)

	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	authorization := req.Header.Get("Authorization")
	if authorization == "" && t.Credentials.Scheme == SchemeBasic && t.Credentials.usable() {
		authorization = t.Credentials.basicAuthorization()
	}

	resp, err := t.attempt(req, body, authorization)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	challenge, err := FindChallenge(resp.Header)
	if err != nil {
		log.Warn("ignoring unusable authentication challenge", zap.Error(err))
		return resp, nil
	}

	if AuthorizationScheme(authorization) == SchemeDigest && !challenge.Stale {
		log.Debug("digest credentials rejected", zap.String("realm", challenge.Realm))
		return resp, nil
	}

	if !t.Credentials.usable() {
		log.Debug("digest challenge received but no credentials are configured", zap.String("realm", challenge.Realm))
		return resp, nil
	}

	authorization, err = Authorize(t.Credentials, challenge, req.Method, req.URL.RequestURI(), t.opts.cnonce())
	if err != nil {
		log.Warn("cannot answer digest challenge", zap.Error(err), zap.String("realm", challenge.Realm))
		return resp, nil
	}

	discard(resp)

	log.Debug("retrying with digest credentials",
		zap.String("realm", challenge.Realm),
		zap.Bool("stale", challenge.Stale),
		zap.Bool("qop", challenge.QOP != ""),
	)
	return t.attempt(req, body, authorization)
}

// attempt sends a copy of req with the given Authorization header (if any).
// RoundTrip must not modify the original request.
func (t *Transport) attempt(req *http.Request, body []byte, authorization string) (*http.Response, error) {
	ctx, cancel := req.Context(), context.CancelFunc(func() {})
	if timeout := t.opts.timeoutFor(ctx); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	r := req.Clone(ctx)
	if body != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}

	resp, err := t.RoundTripper.RoundTrip(r)
	if err != nil {
		cancel()
		return nil, err
	}

	if resp.Request == nil {
		resp.Request = r
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

// readBody drains and closes the request body. RoundTrip must close the
// request body even in the event of an error.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDiscard))
	_ = resp.Body.Close()
}

// cancelBody releases the per-attempt timeout once the caller is done with
// the response body.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
