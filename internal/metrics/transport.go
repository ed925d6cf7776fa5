// Package metrics provides Prometheus metrics for packet transport I/O.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/transport"
)

var (
	packetsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alienfx",
		Subsystem: "transport",
		Name:      "packets_written_total",
		Help:      "Command packets successfully written to the device",
	}, []string{"transport"})

	writeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alienfx",
		Subsystem: "transport",
		Name:      "write_errors_total",
		Help:      "Failed packet writes",
	}, []string{"transport"})

	readErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alienfx",
		Subsystem: "transport",
		Name:      "read_errors_total",
		Help:      "Failed status reads, excluding unsupported read-back",
	}, []string{"transport"})

	writeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "alienfx",
		Subsystem: "transport",
		Name:      "write_duration_seconds",
		Help:      "Latency of packet writes",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"transport"})
)

// InstrumentedTransport wraps a Transport and counts its I/O. It forwards
// every call unchanged; ErrUnsupported reads are not counted as errors.
type InstrumentedTransport struct {
	inner transport.Transport
	label string
}

// Instrument wraps a transport with Prometheus counters.
func Instrument(inner transport.Transport) *InstrumentedTransport {
	return &InstrumentedTransport{inner: inner, label: string(inner.Kind())}
}

// Open forwards to the wrapped transport.
func (t *InstrumentedTransport) Open() error {
	return t.inner.Open()
}

// Write forwards the packet, recording latency and the outcome.
func (t *InstrumentedTransport) Write(pkt fxpacket.Packet) error {
	start := time.Now()
	err := t.inner.Write(pkt)
	writeDuration.WithLabelValues(t.label).Observe(time.Since(start).Seconds())
	if err != nil {
		writeErrors.WithLabelValues(t.label).Inc()
		return err
	}
	packetsWritten.WithLabelValues(t.label).Inc()
	return nil
}

// Read forwards the read, counting I/O failures.
func (t *InstrumentedTransport) Read() ([]byte, error) {
	raw, err := t.inner.Read()
	if err != nil && !errors.Is(err, transport.ErrUnsupported) {
		readErrors.WithLabelValues(t.label).Inc()
	}
	return raw, err
}

// Close forwards to the wrapped transport.
func (t *InstrumentedTransport) Close() error {
	return t.inner.Close()
}

// Kind identifies the wrapped variant.
func (t *InstrumentedTransport) Kind() transport.Kind {
	return t.inner.Kind()
}
