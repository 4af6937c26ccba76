package httpclient

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camerakit/go/http/digest"
	"github.com/camerakit/go/test"
)

func TestDigestClient(t *testing.T) {
	srv := test.NewDigestServer(t, test.DigestServerConfig{
		Username: "admin",
		Password: "Admin_1234",
		QOP:      "auth",
	}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PtzAutoFraming=on\r\n"))
	}))

	client := DigestClient(digest.Credentials{Username: "admin", Password: "Admin_1234", Scheme: digest.SchemeDigest})

	req, err := http.NewRequestWithContext(test.Context(t), http.MethodGet, srv.URL+"/analytics/ptzautoframing.cgi?inq=PtzAutoFraming", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PtzAutoFraming=on\r\n", string(body))
	assert.Equal(t, 2, srv.Requests())
}

func TestDefaultRoundTripper(t *testing.T) {
	srv := test.NewDigestServer(t, test.DigestServerConfig{}, http.NotFoundHandler())

	for _, rt := range []http.RoundTripper{DefaultRoundTripper(), DefaultPooledRoundTripper()} {
		req, err := http.NewRequestWithContext(test.Context(t), http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("WWW-Authenticate"), `Digest realm="IP Camera"`)
	}
}
