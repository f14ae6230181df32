package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики - количество запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - время обработки запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// WS метрики - количество активных соединений
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	// Количество открытых комнат
	roomsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duel_rooms_open",
			Help: "Количество открытых комнат",
		},
	)

	duelStartsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_starts_total",
			Help: "Количество запланированных стартов дуэлей",
		},
	)

	duelEndsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_ends_total",
			Help: "Количество завершённых дуэлей",
		},
	)

	hitsRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_hits_relayed_total",
			Help: "Количество пересланных попаданий соперникам",
		},
	)

	joinRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_join_rejections_total",
			Help: "Количество отклонённых попыток войти в комнату",
		},
		[]string{"reason"},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func IncrementRoomsOpen() {
	roomsOpen.Inc()
}

func DecrementRoomsOpen() {
	roomsOpen.Dec()
}

func RecordDuelStart() {
	duelStartsTotal.Inc()
}

func RecordDuelEnd() {
	duelEndsTotal.Inc()
}

func RecordHitRelayed() {
	hitsRelayedTotal.Inc()
}

// RecordJoinRejection считает отказы по причине (room_not_found, room_full)
func RecordJoinRejection(reason string) {
	joinRejectionsTotal.WithLabelValues(reason).Inc()
}
