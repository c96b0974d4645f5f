package upload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the upload pipeline.
//
// Metrics collected:
//   - padimg_uploads_total: Counter of uploads by backend and terminal status
//   - padimg_upload_errors_total: Counter of failed uploads by error kind
//   - padimg_upload_bytes: Histogram of streamed payload sizes
//   - padimg_upload_duration_seconds: Histogram of request duration
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "padimg",
		Name:      "uploads_total",
		Help:      "Total number of upload requests by backend and terminal status",
	}, []string{"backend", "status"})

	uploadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "padimg",
		Name:      "upload_errors_total",
		Help:      "Total number of failed uploads by error kind",
	}, []string{"kind"})

	uploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "padimg",
		Name:      "upload_bytes",
		Help:      "Streamed payload size per upload in bytes",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
	})

	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "padimg",
		Name:      "upload_duration_seconds",
		Help:      "Upload request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// observeUpload records one terminal upload outcome.
func observeUpload(backend string, out Outcome, bytes int64, d time.Duration) {
	status := "success"
	if out.Err != nil {
		status = "error"
		uploadErrors.WithLabelValues(string(out.Err.Kind)).Inc()
	}
	uploadsTotal.WithLabelValues(backend, status).Inc()
	uploadBytes.Observe(float64(bytes))
	uploadDuration.Observe(d.Seconds())
}
