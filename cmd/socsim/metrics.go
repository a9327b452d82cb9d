package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const metricsExportInterval = 30 * time.Second

// setupMetrics installs a meter provider that periodically writes the
// session counters to w. The returned function flushes and shuts it down.
func setupMetrics(w io.Writer) (*simulation.Metrics, func(context.Context), error) {
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricsExportInterval))),
	)
	otel.SetMeterProvider(provider)

	metrics, err := simulation.NewMetrics(provider.Meter("socsim"))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) {
		if err := provider.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("Failed to shut down metrics provider")
		}
	}
	return metrics, shutdown, nil
}
