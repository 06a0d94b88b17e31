package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the audio bridge. Every value
// is recorded on the network goroutine or the monitor handlers; the
// real-time audio callback never touches them.
type Metrics struct {
	// Packet metrics
	PacketsSent     prometheus.Counter
	PacketsReceived prometheus.Counter
	PacketsInvalid  prometheus.Counter

	// Stream health metrics
	Overruns          prometheus.Counter
	Underruns         prometheus.Counter
	RingBufferedBytes prometheus.Gauge
	DrainBatch        prometheus.Histogram

	// HTTP monitor metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// New creates all bridge metrics and registers them with reg. The binary
// passes prometheus.DefaultRegisterer; tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Packet metrics
		PacketsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "netaudio_packets_sent_total",
			Help: "Total number of UDP packets sent",
		}),
		PacketsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "netaudio_packets_received_total",
			Help: "Total number of valid UDP packets received and buffered",
		}),
		PacketsInvalid: factory.NewCounter(prometheus.CounterOpts{
			Name: "netaudio_packets_invalid_total",
			Help: "Total number of datagrams dropped for having the wrong size",
		}),

		// Stream health metrics
		Overruns: factory.NewCounter(prometheus.CounterOpts{
			Name: "netaudio_overruns_total",
			Help: "Total number of cycles or packets dropped because the ring buffer was full",
		}),
		Underruns: factory.NewCounter(prometheus.CounterOpts{
			Name: "netaudio_underruns_total",
			Help: "Total number of playback cycles filled with silence for lack of data",
		}),
		RingBufferedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "netaudio_ring_buffered_bytes",
			Help: "Bytes currently buffered in the ring, sampled by the network loop",
		}),
		DrainBatch: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "netaudio_drain_packets",
			Help:    "Packets sent per drain sweep of the sender network loop",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128 packets
		}),

		// HTTP monitor metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netaudio_http_requests_total",
			Help: "Total number of HTTP requests to the monitor endpoint",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netaudio_http_request_duration_seconds",
			Help:    "Duration of HTTP requests to the monitor endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netaudio_http_errors_total",
			Help: "Total number of HTTP errors from the monitor endpoint",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordPacketSent increments the packets sent counter
func (m *Metrics) RecordPacketSent() {
	m.PacketsSent.Inc()
}

// RecordPacketReceived increments the packets received counter
func (m *Metrics) RecordPacketReceived() {
	m.PacketsReceived.Inc()
}

// RecordInvalidPacket increments the invalid datagram counter
func (m *Metrics) RecordInvalidPacket() {
	m.PacketsInvalid.Inc()
}

// RecordOverrun increments the overrun counter
func (m *Metrics) RecordOverrun() {
	m.Overruns.Inc()
}

// RecordUnderrun increments the underrun counter
func (m *Metrics) RecordUnderrun() {
	m.Underruns.Inc()
}

// SetRingBuffered sets the ring occupancy gauge
func (m *Metrics) SetRingBuffered(bytes int) {
	m.RingBufferedBytes.Set(float64(bytes))
}

// RecordDrainBatch records how many packets one drain sweep sent
func (m *Metrics) RecordDrainBatch(packets int) {
	m.DrainBatch.Observe(float64(packets))
}

// RecordHTTPRequest records a request to the monitor endpoint
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error from the monitor endpoint
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
