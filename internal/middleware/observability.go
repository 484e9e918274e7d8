package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// redactedQueryParams never reach the request log. Contact details count.
var redactedQueryParams = map[string]struct{}{
	"token": {}, "password": {}, "secret": {}, "key": {},
	"auth": {}, "email": {}, "phone": {},
}

// ObservabilityMiddleware records request metrics and writes one access log
// line per request.
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		active := metrics.ActiveRequests.WithLabelValues(method)
		active.Inc()
		defer active.Dec()

		c.Next()

		status := c.Writer.Status()
		duration := metrics.MeasureDuration(start)
		route := routeLabel(c)
		code := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, code).Inc()

		logger.LogHTTPRequest(method, c.Request.URL.Path, status, duration, accessLogFields(c, status)...)
	}
}

// routeLabel keeps metric cardinality bounded by using the route template.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func accessLogFields(c *gin.Context, status int) []zap.Field {
	fields := []zap.Field{
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("response_size", c.Writer.Size()),
	}
	if id := c.GetString(RequestIDContextKey); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}

	if status < 400 {
		return fields
	}
	if query := sanitizeQuery(c.Request.URL.Query()); len(query) > 0 {
		fields = append(fields, zap.Any("query_params", query))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}
	return fields
}

// sanitizeQuery keeps the first value of each non-sensitive parameter.
func sanitizeQuery(query map[string][]string) map[string]string {
	out := make(map[string]string, len(query))
	for k, v := range query {
		if _, redacted := redactedQueryParams[strings.ToLower(k)]; redacted || len(v) == 0 {
			continue
		}
		out[k] = v[0]
	}
	return out
}
