package digest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChallenge(t *testing.T) {
	testcases := []struct {
		Name      string
		Value     string
		Challenge Challenge
		Err       error
	}{
		{
			Name:  "camera challenge",
			Value: `Digest realm="IP Camera", nonce="abc123", qop="auth", stale=FALSE`,
			Challenge: Challenge{
				Realm: "IP Camera",
				Nonce: "abc123",
				QOP:   "auth",
				Stale: false,
				Params: map[string]string{
					"realm": "IP Camera",
					"nonce": "abc123",
					"qop":   "auth",
					"stale": "FALSE",
				},
			},
		},
		{
			Name:  "stale, any case",
			Value: `Digest nonce="n2", realm="r", stale=True`,
			Challenge: Challenge{
				Realm: "r",
				Nonce: "n2",
				Stale: true,
				Params: map[string]string{
					"realm": "r",
					"nonce": "n2",
					"stale": "True",
				},
			},
		},
		{
			Name:  "opaque and algorithm, bare commas",
			Value: `Digest realm="testrealm@host.com",qop="auth,auth-int",nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093",opaque="5ccc069c403ebaf9f0171e9517f40e41",algorithm=MD5`,
			Challenge: Challenge{
				Realm:     "testrealm@host.com",
				Nonce:     "dcd98b7102dd2f0e8b11d0f600bfb0c093",
				Opaque:    "5ccc069c403ebaf9f0171e9517f40e41",
				QOP:       "auth,auth-int",
				Algorithm: "MD5",
				Params: map[string]string{
					"realm":     "testrealm@host.com",
					"qop":       "auth,auth-int",
					"nonce":     "dcd98b7102dd2f0e8b11d0f600bfb0c093",
					"opaque":    "5ccc069c403ebaf9f0171e9517f40e41",
					"algorithm": "MD5",
				},
			},
		},
		{
			Name:  "quoted comma and escaped quote",
			Value: `Digest realm="Sony, \"SRG\" series", nonce="x"`,
			Challenge: Challenge{
				Realm: `Sony, "SRG" series`,
				Nonce: "x",
				Params: map[string]string{
					"realm": `Sony, "SRG" series`,
					"nonce": "x",
				},
			},
		},
		{
			Name:  "duplicate directive, last wins",
			Value: `Digest nonce="first", realm="r", nonce="second"`,
			Challenge: Challenge{
				Realm: "r",
				Nonce: "second",
				Params: map[string]string{
					"realm": "r",
					"nonce": "second",
				},
			},
		},
		{
			Name:  "unknown directives are kept",
			Value: `Digest realm="r", nonce="n", domain="/command/", charset=UTF-8`,
			Challenge: Challenge{
				Realm: "r",
				Nonce: "n",
				Params: map[string]string{
					"realm":   "r",
					"nonce":   "n",
					"domain":  "/command/",
					"charset": "UTF-8",
				},
			},
		},
		{
			Name:  "tab after scheme",
			Value: "Digest\trealm=\"r\", nonce=\"n\"",
			Challenge: Challenge{
				Realm:  "r",
				Nonce:  "n",
				Params: map[string]string{"realm": "r", "nonce": "n"},
			},
		},
		{
			Name:  "run of whitespace after scheme",
			Value: "Digest \t  nonce=\"n\"",
			Challenge: Challenge{
				Nonce:  "n",
				Params: map[string]string{"nonce": "n"},
			},
		},
		{
			Name:  "basic challenge",
			Value: `Basic realm="IP Camera"`,
			Err:   ErrNotDigest,
		},
		{
			Name:  "scheme is case sensitive",
			Value: `digest realm="r", nonce="n"`,
			Err:   ErrNotDigest,
		},
		{
			Name:  "empty",
			Value: ``,
			Err:   ErrNotDigest,
		},
		{
			Name:  "no nonce",
			Value: `Digest realm="r", qop="auth"`,
			Err:   ErrMissingNonce,
		},
		{
			Name:  "empty nonce",
			Value: `Digest realm="r", nonce=""`,
			Err:   ErrMissingNonce,
		},
		{
			Name:  "scheme only",
			Value: `Digest`,
			Err:   ErrMissingNonce,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			c, err := ParseChallenge(tc.Value)
			if tc.Err != nil {
				assert.ErrorIs(t, err, tc.Err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.Challenge, c)
			}
		})
	}
}

func TestFindChallenge(t *testing.T) {
	h := http.Header{}
	_, err := FindChallenge(h)
	assert.ErrorIs(t, err, ErrNoChallenge)

	h.Add("WWW-Authenticate", `Basic realm="IP Camera"`)
	_, err = FindChallenge(h)
	assert.ErrorIs(t, err, ErrNotDigest)

	h.Add("WWW-Authenticate", `Digest realm="IP Camera", nonce="abc123"`)
	c, err := FindChallenge(h)
	require.NoError(t, err)
	assert.Equal(t, "abc123", c.Nonce)
}

func TestParseParamsTolerance(t *testing.T) {
	testcases := []struct {
		Name     string
		Input    string
		Expected map[string]string
	}{
		{
			Name:     "empty",
			Input:    "",
			Expected: map[string]string{},
		},
		{
			Name:     "bare token",
			Input:    `token, realm="r"`,
			Expected: map[string]string{"realm": "r"},
		},
		{
			Name:     "trailing token",
			Input:    `realm="r", token`,
			Expected: map[string]string{"realm": "r"},
		},
		{
			Name:     "unterminated quote",
			Input:    `realm="r, nonce=n`,
			Expected: map[string]string{"realm": "r, nonce=n"},
		},
		{
			Name:     "upper case keys",
			Input:    `Realm="r", NONCE=n`,
			Expected: map[string]string{"realm": "r", "nonce": "n"},
		},
		{
			Name:     "spaces around equals",
			Input:    `realm = "r" , nonce = n `,
			Expected: map[string]string{"realm": "r", "nonce": "n"},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, parseParams(tc.Input))
		})
	}
}
