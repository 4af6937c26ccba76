package telemetry

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/camerakit/go/version"
)

const ServiceName = "camctl"

var (
	defaultResource     *resource.Resource
	defaultResourceOnce sync.Once
)

// DefaultResource describes this process. OTEL_SERVICE_NAME and
// OTEL_RESOURCE_ATTRIBUTES take precedence over the built-in service name.
func DefaultResource() *resource.Resource {
	defaultResourceOnce.Do(func() {
		var err error
		defaultResource, err = resource.New(
			context.Background(),
			resource.WithSchemaURL(semconv.SchemaURL),
			resource.WithAttributes(
				semconv.ServiceName(ServiceName),
				semconv.ServiceVersion(version.Version()),
			),
			resource.WithFromEnv(),
			resource.WithTelemetrySDK(),
			resource.WithHost(),
		)
		switch {
		case errors.Is(err, resource.ErrPartialResource):
			// ignored
		case err != nil:
			otel.Handle(err)
		}
		if defaultResource == nil {
			defaultResource = resource.Empty()
		}
	})

	return defaultResource
}
