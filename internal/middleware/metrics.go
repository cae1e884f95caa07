package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by operation. redis.Nil
	// (cache miss) is excluded by the hook that feeds this counter.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogchef_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheRequests counts cache lookups by key family and outcome (hit/miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogchef_cache_requests_total",
		Help: "Total number of cache lookups by key family and outcome",
	}, []string{"key", "outcome"})

	// ModerationFlags counts posts flagged by the profanity filter.
	ModerationFlags = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogchef_moderation_flags_total",
		Help: "Total number of posts withheld by the moderation gate",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
