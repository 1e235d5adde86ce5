package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry opens a span per request and counts requests by route and status.
// Best-effort: instrument setup failures are logged and the middleware
// degrades to span-only. If tracer is nil the middleware no-ops.
func Telemetry(tracer trace.Tracer, meter metric.Meter) gin.HandlerFunc {
	if tracer == nil {
		return func(c *gin.Context) { c.Next() }
	}
	var counter metric.Int64Counter
	var latency metric.Float64Histogram
	if meter != nil {
		var err error
		counter, err = meter.Int64Counter("http.server.requests")
		if err != nil {
			log.Printf("telemetry: request counter: %v", err)
		}
		latency, err = meter.Float64Histogram("http.server.duration_ms")
		if err != nil {
			log.Printf("telemetry: latency histogram: %v", err)
		}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route)
		c.Request = c.Request.WithContext(ctx)
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []attribute.KeyValue{
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
			attribute.Int("http.status_code", status),
		}
		span.SetAttributes(attrs...)
		if status >= 500 {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}
		span.End()
		if counter != nil {
			counter.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		if latency != nil {
			latency.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
		}
	}
}
