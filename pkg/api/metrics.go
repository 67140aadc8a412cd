package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Renders           *prometheus.CounterVec
	ImageLookups      *prometheus.CounterVec
	Exports           *prometheus.CounterVec
	AggregationErrors prometheus.Counter
	TableRows         prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floorplans",
			Name:      "renders_total",
			Help:      "Dashboard panels computed, by panel.",
		}, []string{"panel"}),
		ImageLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floorplans",
			Name:      "image_lookups_total",
			Help:      "Floor plan image lookups, by outcome.",
		}, []string{"status"}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floorplans",
			Name:      "exports_total",
			Help:      "Filtered table downloads, by format.",
		}, []string{"format"}),
		AggregationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "floorplans",
			Name:      "aggregation_errors_total",
			Help:      "Charts or summaries that failed on a bad area value.",
		}),
		TableRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "floorplans",
			Name:      "table_rows",
			Help:      "Rows in the loaded floor plan table.",
		}),
	}
}
