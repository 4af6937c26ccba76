// Package config loads camctl configuration from defaults, an optional YAML
// file and CAMCTL_ prefixed environment variables, in increasing order of
// priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/camerakit/go/camera"
	"github.com/camerakit/go/http/digest"
)

const EnvPrefix = "CAMCTL_"

type Config struct {
	Camera     CameraConfig `koanf:"camera"`
	Parameters []Parameter  `koanf:"parameters" validate:"dive"`
	Sentry     SentryConfig `koanf:"sentry"`
}

type CameraConfig struct {
	Host     string        `koanf:"host" validate:"required"`
	Username string        `koanf:"username" validate:"required_unless=Scheme none"`
	Password string        `koanf:"password"`
	Scheme   string        `koanf:"scheme" validate:"oneof=none basic digest"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type Parameter struct {
	CGI  string `koanf:"cgi" validate:"required"`
	Name string `koanf:"name" validate:"required"`
}

type SentryConfig struct {
	DSN string `koanf:"dsn" validate:"omitempty,url"`
}

// Load reads configuration. path names an optional YAML file; when set it
// must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(envprovider.Provider(EnvPrefix, ".", func(s string) string {
		// CAMCTL_CAMERA_HOST -> camera.host
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"camera.scheme":  "digest",
		"camera.timeout": "5s",
		"parameters": []map[string]any{
			{"cgi": "ptzautoframing.cgi", "name": "PtzAutoFraming"},
			{"cgi": "ptzautoframing.cgi", "name": "PtzAutoFramingAutoStartEnable"},
			{"cgi": "project.cgi", "name": "HdmiColor"},
		},
	}
}

// CameraConfig returns the camera client configuration.
func (c *Config) CameraConfig() (camera.Config, error) {
	scheme, err := digest.ParseScheme(c.Camera.Scheme)
	if err != nil {
		return camera.Config{}, err
	}
	return camera.Config{
		Host: c.Camera.Host,
		Credentials: digest.Credentials{
			Username: c.Camera.Username,
			Password: c.Camera.Password,
			Scheme:   scheme,
		},
		Timeout: c.Camera.Timeout,
	}, nil
}

// CameraParameters returns the configured parameters in order.
func (c *Config) CameraParameters() []camera.Parameter {
	params := make([]camera.Parameter, len(c.Parameters))
	for i, p := range c.Parameters {
		params[i] = camera.Parameter{CGI: p.CGI, Name: p.Name}
	}
	return params
}
