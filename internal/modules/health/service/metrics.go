package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	Registry *prometheus.Registry

	Quotes        *prometheus.CounterVec
	LastPrice     *prometheus.GaugeVec
	StreamUp      prometheus.Gauge
	OpenPositions prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trader",
			Name:      "quotes_total",
			Help:      "Quotes received from the streaming API.",
		}, []string{"epic"}),
		LastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "trader",
			Name:      "last_price",
			Help:      "Last price seen per epic.",
		}, []string{"epic"}),
		StreamUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trader",
			Name:      "stream_connected",
			Help:      "1 while the quote stream is connected.",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trader",
			Name:      "open_positions",
			Help:      "Open positions being watched.",
		}),
	}
	reg.MustRegister(
		m.Quotes, m.LastPrice, m.StreamUp, m.OpenPositions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
