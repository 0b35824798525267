// Package metrics exposes Prometheus counters/gauges for the panel link,
// controller queues, and HTTP surface, plus a /ready endpoint gated on a
// registered readiness function. Grounded directly on the teacher's
// internal/metrics/metrics.go (promauto/promhttp wiring, SetReadinessFunc/
// IsReady pattern); the counter/gauge set itself is re-derived for this
// domain (frame rx/tx per link kind, checksum/malformed frames, queue
// depths, reconnects, HTTP requests) instead of the teacher's CAN-bus set.
//
// Of these, only HTTPRequests (by internal/httpapi) and BuildInfo (by
// InitBuildInfo) are updated anywhere in the gateway; the frame, checksum,
// malformed-frame, reconnect, queue-depth and email-failure collectors are
// registered and exported but nothing increments or sets them, so they stay
// at zero.
package metrics

import (
	"net/http"
	"sync"

	"github.com/nx584/panelgw/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesRx = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panelgw_frames_rx_total",
		Help: "Total frames decoded from the panel link, by transport.",
	}, []string{"transport"})
	FramesTx = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panelgw_frames_tx_total",
		Help: "Total frames written to the panel link, by transport.",
	}, []string{"transport"})
	ChecksumMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panelgw_checksum_mismatches_total",
		Help: "Total frames dropped due to a Fletcher-16 checksum mismatch.",
	})
	MalformedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panelgw_malformed_frames_total",
		Help: "Total frames dropped due to framing errors (unescaped flag, odd hex, short frame).",
	})
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panelgw_reconnects_total",
		Help: "Total times the link manager re-dialed the panel transport.",
	})
	OutboundQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "panelgw_outbound_queue_depth",
		Help: "Current number of commands waiting to be sent to the panel.",
	})
	EventQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "panelgw_event_queue_depth",
		Help: "Current number of events retained in the long-poll ring buffer.",
	})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panelgw_http_requests_total",
		Help: "Total HTTP API requests, by path and status class.",
	}, []string{"path", "status"})
	EmailSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panelgw_email_send_failures_total",
		Help: "Total SMTP send attempts that returned an error.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "panelgw_build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Transport label values (bounded cardinality).
const (
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

// StartHTTP serves /metrics and /ready on addr in a background goroutine
// and returns the *http.Server so the caller can Shutdown it on exit.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// InitBuildInfo sets the build info gauge once at startup.
func InitBuildInfo(version string) {
	BuildInfo.WithLabelValues(version).Set(1)
}

// SetReadinessFunc registers the function backing /ready and IsReady.
func SetReadinessFunc(fn func() bool) {
	readinessMu.Lock()
	readinessFn = fn
	readinessMu.Unlock()
}

// IsReady invokes the registered readiness function; absent a registration
// it reports ready so the endpoint doesn't flap before startup completes.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}
