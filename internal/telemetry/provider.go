package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tomz197/glider/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Config holds OTel configuration
type Config struct {
	Enabled     bool
	ServiceName string
	Writer      io.Writer     // Destination for exported metrics (required when enabled)
	Interval    time.Duration // Export period, 0 for the SDK default
}

// Provider owns the meter provider. When disabled it hands out a no-op
// provider and Shutdown does nothing.
type Provider struct {
	mp     *sdkmetric.MeterProvider
	closer io.Closer
}

// New creates a provider that periodically exports metrics as JSON to
// cfg.Writer. It also becomes the global meter provider.
func New(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}
	if cfg.Writer == nil {
		return nil, errors.New("telemetry enabled but no writer configured")
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	p := &Provider{
		mp: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
			sdkmetric.WithResource(res),
		),
	}
	otel.SetMeterProvider(p.mp)
	return p, nil
}

// Open builds a provider from settings, appending exports to s.File.
func Open(s config.TelemetrySettings, serviceName string) (*Provider, error) {
	if !s.Enabled {
		return New(Config{})
	}
	f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics file: %w", err)
	}
	p, err := New(Config{
		Enabled:     true,
		ServiceName: serviceName,
		Writer:      f,
		Interval:    s.Interval,
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}

// MeterProvider returns the provider to build instruments from.
func (p *Provider) MeterProvider() metric.MeterProvider {
	if p.mp == nil {
		return noop.NewMeterProvider()
	}
	return p.mp
}

// Enabled reports whether metrics are exported.
func (p *Provider) Enabled() bool {
	return p.mp != nil
}

// Shutdown exports pending metrics and releases the destination.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.mp == nil {
		return nil
	}
	err := p.mp.Shutdown(ctx)
	if p.closer != nil {
		if cerr := p.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("metrics shutdown failed: %w", err)
	}
	return nil
}
