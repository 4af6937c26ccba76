package version

import "os"

// set at build time with -ldflags "-X github.com/camerakit/go/version.commit=..."
var commit string

// Version returns the short commit the binary was built from. COMMIT_SHA
// overrides the build-time value.
func Version() string {
	version, ok := os.LookupEnv("COMMIT_SHA")
	if !ok {
		version = commit
	}
	if version == "" {
		version = "unknown"
	}
	if len(version) > 7 {
		version = version[:7]
	}
	return version
}
