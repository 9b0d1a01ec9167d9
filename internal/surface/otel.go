package surface

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vivatulum/mapkit/internal/surface"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
