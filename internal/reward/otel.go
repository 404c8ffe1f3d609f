package reward

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/hokarena/reward/internal/reward"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
