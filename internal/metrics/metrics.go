// README: Prometheus collectors for HTTP traffic and parser outcomes.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tripintake/internal/modules/tripparse"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripintake_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tripintake_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	ParseTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripintake_parse_tokens_total",
			Help: "Pattern occurrences by field and outcome",
		},
		[]string{"field", "outcome"},
	)

	ResolvedFields = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tripintake_parse_resolved_fields",
			Help:    "Structured fields resolved per parse",
			Buckets: prometheus.LinearBuckets(0, 1, 9),
		},
	)

	Fallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripintake_parse_fallbacks_total",
			Help: "Parses that kept the transcript verbatim as a special request",
		},
	)

	UncoveredWords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripintake_parse_uncovered_words_total",
			Help: "Words not covered by any accepted token",
		},
	)
)

// ParseObserver counts parser events. Resolved-field totals are recorded by
// ObserveResult since the parser reports fields one at a time.
type ParseObserver struct{}

func (ParseObserver) Observe(e tripparse.Event) {
	switch e.Kind {
	case tripparse.EventToken, tripparse.EventOverlap, tripparse.EventExtractFailed, tripparse.EventLowConfidence:
		ParseTokens.WithLabelValues(string(e.Field), string(e.Kind)).Inc()
	case tripparse.EventFallback:
		Fallbacks.Inc()
	case tripparse.EventUncovered:
		UncoveredWords.Add(float64(len(e.Words)))
	}
}

// ObserveResult records how many structured fields a parse resolved.
func ObserveResult(fields tripparse.TripFields) {
	ResolvedFields.Observe(float64(len(fields.Resolved())))
}

// Middleware records request counts and latency by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
