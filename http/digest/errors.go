package digest

import "errors"

var (
	ErrNoChallenge          = errors.New("digest: response carries no WWW-Authenticate challenge")
	ErrNotDigest            = errors.New("digest: not a Digest challenge")
	ErrMissingNonce         = errors.New("digest: challenge has no nonce")
	ErrUnsupportedQOP       = errors.New("digest: unsupported qop")
	ErrUnsupportedAlgorithm = errors.New("digest: unsupported algorithm")
	ErrUnknownScheme        = errors.New("digest: unknown credential scheme")
)
