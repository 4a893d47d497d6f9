package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// NotificationPublishes counts realtime notification publishes by outcome.
	NotificationPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_notification_publishes_total",
		Help: "Total number of realtime notification publishes by outcome",
	}, []string{"outcome"})

	// WebSocketConnections is the gauge of active websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chirp_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketDrops counts messages dropped because a client's send buffer
	// was full.
	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_websocket_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request metrics handler for the app.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
