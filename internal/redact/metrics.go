package redact

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const maskMeterName = "github.com/veildata/veil/internal/redact"

var (
	maskCounter           metric.Int64Counter
	maskMetricsOnce       sync.Once
	maskMetricsRegistered bool
)

func initMaskMetrics() {
	meter := otel.Meter(maskMeterName)
	var err error
	maskCounter, err = meter.Int64Counter(
		"veil.redact.masked",
		metric.WithDescription("Spans masked, by category"),
	)
	if err != nil {
		return
	}
	maskMetricsRegistered = true
}

// recordMaskCounts emits one counter increment per category after a line
// is masked. No-op when the meter provider is not configured.
func recordMaskCounts(ctx context.Context, counts map[Category]int) {
	maskMetricsOnce.Do(initMaskMetrics)
	if !maskMetricsRegistered {
		return
	}
	for c, n := range counts {
		if n == 0 {
			continue
		}
		maskCounter.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("category", string(c)),
		))
	}
}
