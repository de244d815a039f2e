// Package metrics содержит Prometheus-метрики генерации постов.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Виды генерации
const (
	KindTopic   = "topic"
	KindWelcome = "welcome"
)

// Исходы генерации
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultBusy    = "busy"
	ResultSkipped = "skipped"
)

// Исходы генерации картинки
const (
	ImageAttached = "attached"
	ImageNone     = "none"
	ImageAuth     = "auth_error"
)

// Metrics метрики приложения. Регистрируются в собственном реестре,
// чтобы тесты могли создавать сколько угодно экземпляров.
type Metrics struct {
	registry *prometheus.Registry

	Generations        *prometheus.CounterVec
	Images             *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
}

// New создает и регистрирует метрики
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aiblog_generations_total",
			Help: "Post generations by kind (topic, welcome) and result",
		}, []string{"kind", "result"}),
		Images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aiblog_images_total",
			Help: "Image generation outcomes for topic posts",
		}, []string{"result"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aiblog_generation_duration_seconds",
			Help:    "Time from request to assembled post",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"kind"}),
	}

	m.registry.MustRegister(m.Generations, m.Images, m.GenerationDuration)
	return m
}

// Handler HTTP-обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGeneration учитывает одну попытку генерации. Безопасно для nil.
func (m *Metrics) ObserveGeneration(kind, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(kind, result).Inc()
	if result == ResultSuccess || result == ResultError {
		m.GenerationDuration.WithLabelValues(kind).Observe(took.Seconds())
	}
}

// ObserveImage учитывает исход генерации картинки. Безопасно для nil.
func (m *Metrics) ObserveImage(result string) {
	if m == nil {
		return
	}
	m.Images.WithLabelValues(result).Inc()
}
