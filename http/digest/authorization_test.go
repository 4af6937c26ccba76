package digest

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stdHex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// The worked example from RFC 2617 Section 3.5.
var rfcChallenge = Challenge{
	Realm:  "testrealm@host.com",
	Nonce:  "dcd98b7102dd2f0e8b11d0f600bfb0c093",
	Opaque: "5ccc069c403ebaf9f0171e9517f40e41",
	QOP:    "auth,auth-int",
}

var rfcCredentials = Credentials{
	Username: "Mufasa",
	Password: "Circle Of Life",
	Scheme:   SchemeDigest,
}

func TestRFC2617Example(t *testing.T) {
	ha1 := HA1("Mufasa", "testrealm@host.com", "Circle Of Life")
	ha2 := HA2("GET", "/dir/index.html")

	assert.Equal(t, "939e7578ed9e3c518a452acee763bce9", ha1)
	assert.Equal(t, "39aff3a2bab6126f332b942af96d3366", ha2)
	assert.Equal(t, "6629fae49393a05397450978507c4ef1",
		Response(ha1, rfcChallenge.Nonce, "00000001", "0a4f113b", "auth", ha2))
}

func TestAuthorize(t *testing.T) {
	testcases := []struct {
		Name        string
		Credentials Credentials
		Challenge   Challenge
		Method      string
		URI         string
		ClientNonce string
		Expected    string
		Err         error
	}{
		{
			Name:        "qop=auth",
			Credentials: rfcCredentials,
			Challenge:   rfcChallenge,
			Method:      "GET",
			URI:         "/dir/index.html",
			Expected: `Digest username="Mufasa", realm="testrealm@host.com", ` +
				`nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", uri="/dir/index.html", ` +
				`algorithm="MD5", response="6629fae49393a05397450978507c4ef1", ` +
				`qop=auth, nc=00000001, cnonce="0a4f113b", ` +
				`opaque="5ccc069c403ebaf9f0171e9517f40e41"`,
		},
		{
			Name:        "full URL is reduced to the request target",
			Credentials: rfcCredentials,
			Challenge:   rfcChallenge,
			Method:      "get",
			URI:         "http://www.nowhere.org/dir/index.html",
			Expected: `Digest username="Mufasa", realm="testrealm@host.com", ` +
				`nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", uri="/dir/index.html", ` +
				`algorithm="MD5", response="6629fae49393a05397450978507c4ef1", ` +
				`qop=auth, nc=00000001, cnonce="0a4f113b", ` +
				`opaque="5ccc069c403ebaf9f0171e9517f40e41"`,
		},
		{
			Name:        "legacy challenge without qop",
			Credentials: Credentials{Username: "admin", Password: "Admin_1234", Scheme: SchemeDigest},
			Challenge:   Challenge{Realm: "IP Camera", Nonce: "abc123"},
			Method:      "GET",
			URI:         "/command/project.cgi?inq=HdmiColor",
			Expected: `Digest username="admin", realm="IP Camera", nonce="abc123", ` +
				`uri="/command/project.cgi?inq=HdmiColor", algorithm="MD5", response="` +
				stdHex(
					stdHex("admin:IP Camera:Admin_1234")+":abc123:"+
						stdHex("GET:/command/project.cgi?inq=HdmiColor"),
				) + `"`,
		},
		{
			Name:        "custom client nonce",
			Credentials: Credentials{Username: "admin", Password: "pw", Scheme: SchemeDigest},
			Challenge:   Challenge{Realm: "r", Nonce: "n", QOP: "auth"},
			Method:      "POST",
			URI:         "/command/project.cgi?HdmiColor=rgb",
			ClientNonce: "c0ffee",
			Expected: `Digest username="admin", realm="r", nonce="n", ` +
				`uri="/command/project.cgi?HdmiColor=rgb", algorithm="MD5", response="` +
				stdHex(
					stdHex("admin:r:pw")+":n:00000001:c0ffee:auth:"+
						stdHex("POST:/command/project.cgi?HdmiColor=rgb"),
				) + `", qop=auth, nc=00000001, cnonce="c0ffee"`,
		},
		{
			Name:        "quotes in username are escaped",
			Credentials: Credentials{Username: `a"b`, Password: "pw", Scheme: SchemeDigest},
			Challenge:   Challenge{Realm: "r", Nonce: "n"},
			Method:      "GET",
			URI:         "/",
			Expected: `Digest username="a\"b", realm="r", nonce="n", uri="/", algorithm="MD5", response="` +
				stdHex(stdHex(`a"b:r:pw`)+":n:"+stdHex("GET:/")) + `"`,
		},
		{
			Name:        "algorithm MD5 in any case",
			Credentials: Credentials{Username: "u", Password: "p", Scheme: SchemeDigest},
			Challenge:   Challenge{Realm: "r", Nonce: "n", Algorithm: "md5"},
			Method:      "GET",
			URI:         "/",
			Expected: `Digest username="u", realm="r", nonce="n", uri="/", algorithm="MD5", response="` +
				stdHex(stdHex("u:r:p")+":n:"+stdHex("GET:/")) + `"`,
		},
		{
			Name:      "auth-int only",
			Challenge: Challenge{Realm: "r", Nonce: "n", QOP: "auth-int"},
			Method:    "GET",
			URI:       "/",
			Err:       ErrUnsupportedQOP,
		},
		{
			Name:      "SHA-256",
			Challenge: Challenge{Realm: "r", Nonce: "n", Algorithm: "SHA-256"},
			Method:    "GET",
			URI:       "/",
			Err:       ErrUnsupportedAlgorithm,
		},
		{
			Name:      "no nonce",
			Challenge: Challenge{Realm: "r"},
			Method:    "GET",
			URI:       "/",
			Err:       ErrMissingNonce,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			header, err := Authorize(tc.Credentials, tc.Challenge, tc.Method, tc.URI, tc.ClientNonce)
			if tc.Err != nil {
				assert.ErrorIs(t, err, tc.Err)
				assert.Empty(t, header)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.Expected, header)
			}
		})
	}
}

func TestAuthorizeIsDeterministic(t *testing.T) {
	creds := Credentials{Username: "admin", Password: "secret", Scheme: SchemeDigest}
	c := Challenge{Realm: "IP Camera", Nonce: "abc123"}

	first, err := Authorize(creds, c, "GET", "/command/inquiry.cgi?inq=system", "")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Authorize(creds, c, "GET", "/command/inquiry.cgi?inq=system", "")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHA2(t *testing.T) {
	base := HA2("GET", "/command/project.cgi")

	assert.Equal(t, base, HA2("GET", "/command/project.cgi"))
	assert.Equal(t, base, HA2("get", "/command/project.cgi"))
	assert.NotEqual(t, base, HA2("POST", "/command/project.cgi"))
	assert.NotEqual(t, base, HA2("GET", "/analytics/ptzautoframing.cgi"))
	assert.NotEqual(t, base, HA2("GET", "/command/project.cgi?inq=HdmiColor"))
	assert.Equal(t, stdHex("GET:/command/project.cgi"), base)
}

func TestRequestURI(t *testing.T) {
	testcases := []struct {
		Target   string
		Expected string
	}{
		{Target: "http://10.0.0.8/command/project.cgi?inq=HdmiColor", Expected: "/command/project.cgi?inq=HdmiColor"},
		{Target: "https://admin@camera.local:8443/analytics/ptzautoframing.cgi", Expected: "/analytics/ptzautoframing.cgi"},
		{Target: "http://10.0.0.8", Expected: "/"},
		{Target: "//10.0.0.8/dir/index.html?x=1", Expected: "/dir/index.html?x=1"},
		{Target: "/dir/index.html", Expected: "/dir/index.html"},
		{Target: "/command/inquiry.cgi?inq=system", Expected: "/command/inquiry.cgi?inq=system"},
		{Target: "", Expected: "/"},
	}

	for _, tc := range testcases {
		t.Run(tc.Target, func(t *testing.T) {
			assert.Equal(t, tc.Expected, RequestURI(tc.Target))
		})
	}
}

func TestParseScheme(t *testing.T) {
	for _, s := range []Scheme{SchemeNone, SchemeBasic, SchemeDigest} {
		parsed, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	parsed, err := ParseScheme(" Digest ")
	require.NoError(t, err)
	assert.Equal(t, SchemeDigest, parsed)

	parsed, err = ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeNone, parsed)

	_, err = ParseScheme("ntlm")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestAuthorizationScheme(t *testing.T) {
	testcases := []struct {
		Value    string
		Expected Scheme
	}{
		{Value: `Digest username="admin", response="x"`, Expected: SchemeDigest},
		{Value: `digest username="admin"`, Expected: SchemeDigest},
		{Value: "Basic YWRtaW46cHc=", Expected: SchemeBasic},
		{Value: "BASIC YWRtaW46cHc=", Expected: SchemeBasic},
		{Value: "Bearer token", Expected: SchemeNone},
		{Value: "", Expected: SchemeNone},
	}

	for _, tc := range testcases {
		t.Run(tc.Value, func(t *testing.T) {
			assert.Equal(t, tc.Expected, AuthorizationScheme(tc.Value))
		})
	}
}
