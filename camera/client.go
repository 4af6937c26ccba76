// Package camera is a client for the CGI control interface of network PTZ
// cameras. Requests are authenticated with HTTP Digest authentication when
// the camera challenges them.
package camera

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/camerakit/go/http/digest"
	"github.com/camerakit/go/logging"
	"github.com/camerakit/go/telemetry"
)

const DefaultTimeout = 5 * time.Second

var logger = logging.New("camera")

// Config is the connection configuration for a single camera. Host is a
// host[:port], optionally prefixed with a URL scheme.
type Config struct {
	Host        string
	Credentials digest.Credentials
	Timeout     time.Duration
}

// Parameter names a single setting exposed by a CGI endpoint.
type Parameter struct {
	CGI  string
	Name string
}

// Client issues requests to one camera. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	scheme  string
	host    string
	timeout time.Duration

	rt     http.RoundTripper
	tracer trace.Tracer
}

// New returns a Client dispatching over HTTP.
func New(config Config, opts ...digest.Option) *Client {
	return NewWithTransport(config, NewHTTPTransport(nil), opts...)
}

// NewWithTransport returns a Client dispatching through t.
func NewWithTransport(config Config, t Transport, opts ...digest.Option) *Client {
	scheme, host := splitHost(config.Host)
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		scheme:  scheme,
		host:    host,
		timeout: timeout,
		rt:      digest.NewTransport(dispatcher{t}, config.Credentials, opts...),
		tracer:  telemetry.Tracer("camctl", "camera"),
	}
}

// Endpoint returns the path of a CGI endpoint. PTZ auto framing endpoints
// live under /analytics/, everything else under /command/.
func Endpoint(cgi string) string {
	if strings.HasPrefix(cgi, "ptzautoframing") {
		return "/analytics/" + cgi
	}
	return "/command/" + cgi
}

// NewRequest returns a Request addressed to the client's camera.
func (c *Client) NewRequest(method, path, query string) *Request {
	return &Request{
		Method:  method,
		Scheme:  c.scheme,
		Host:    c.host,
		Path:    path,
		Query:   query,
		Header:  []string{"Accept: text/plain"},
		Timeout: c.timeout,
	}
}

// Do sends req, answering a Digest challenge at most once. Responses outside
// [200, 300) are returned as a *StatusError, and failures where no response
// was received wrap ErrTransport.
func (c *Client) Do(ctx context.Context, req *Request) (*Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "camera.Do",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	log := logger.With(logging.GetFields(ctx)...)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx = digest.ContextWithTimeout(ctx, timeout)
	ctx = withRequest(ctx, req.Clone())

	r, err := req.httpRequest(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp, err := c.rt.RoundTrip(r)
	if err != nil {
		err = transportError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("camera request failed", zap.String("method", r.Method), zap.String("path", req.Path), zap.Error(err))
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		err = transportError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	outcome := newOutcome(resp.StatusCode, resp.Header, body)
	span.SetAttributes(attribute.Int("http.response.status_code", outcome.StatusCode))
	log.Debug("camera request complete",
		zap.String("method", r.Method),
		zap.String("path", req.Path),
		zap.Int("status", outcome.StatusCode),
	)

	if outcome.ok() {
		return outcome, nil
	}

	err = &StatusError{Kind: classify(resp), Outcome: outcome}
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// Set assigns parameter values on a CGI endpoint. Pairs are sent in key order.
func (c *Client) Set(ctx context.Context, cgi string, params map[string]string) (*Outcome, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no parameters to set", ErrInvalidRequest)
	}

	pairs := make([]string, 0, len(params))
	for _, key := range slices.Sorted(maps.Keys(params)) {
		pairs = append(pairs, key+"="+params[key])
	}

	return c.Do(ctx, c.NewRequest(http.MethodPost, Endpoint(cgi), strings.Join(pairs, "&")))
}

// Inquire reads the named parameters from a CGI endpoint.
func (c *Client) Inquire(ctx context.Context, cgi string, names ...string) (Values, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no parameters to inquire", ErrInvalidRequest)
	}

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = "inq=" + name
	}

	outcome, err := c.Do(ctx, c.NewRequest(http.MethodGet, Endpoint(cgi), strings.Join(pairs, "&")))
	if err != nil {
		return nil, err
	}
	return outcome.Values(), nil
}

// Sync inquires every parameter, one request per CGI endpoint, and returns the
// values the camera reported. Parameters missing from a response are absent
// from the result. The first failing endpoint cancels the others.
func (c *Client) Sync(ctx context.Context, params []Parameter) (map[Parameter]string, error) {
	var order []string
	groups := make(map[string][]string)
	for _, p := range params {
		if _, ok := groups[p.CGI]; !ok {
			order = append(order, p.CGI)
		}
		groups[p.CGI] = append(groups[p.CGI], p.Name)
	}

	var mu sync.Mutex
	result := make(map[Parameter]string, len(params))

	g, ctx := errgroup.WithContext(ctx)
	for _, cgi := range order {
		names := groups[cgi]
		g.Go(func() error {
			values, err := c.Inquire(ctx, cgi, names...)
			if err != nil {
				return fmt.Errorf("%s: %w", cgi, err)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, name := range names {
				if value, ok := values[name]; ok {
					result[Parameter{CGI: cgi, Name: name}] = value
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// classify picks the Kind of a final non-success response. A 401 is a
// rejection when digest credentials were sent, when Basic credentials were
// refused without a Digest challenge, or when the challenge could have been
// answered but no credentials are configured.
func classify(resp *http.Response) Kind {
	if resp.StatusCode != http.StatusUnauthorized {
		return UnexpectedStatus
	}
	sent := digest.SchemeNone
	if resp.Request != nil {
		sent = digest.AuthorizationScheme(resp.Request.Header.Get("Authorization"))
	}
	if sent == digest.SchemeDigest {
		return AuthenticationRejected
	}
	challenge, err := digest.FindChallenge(resp.Header)
	if err != nil {
		if sent == digest.SchemeBasic {
			return AuthenticationRejected
		}
		return ChallengeUnparseable
	}
	if challenge.Supported() != nil {
		return ChallengeUnparseable
	}
	return AuthenticationRejected
}

func splitHost(host string) (string, string) {
	host = strings.TrimSuffix(host, "/")
	if scheme, rest, ok := strings.Cut(host, "://"); ok {
		return scheme, rest
	}
	return "", host
}
