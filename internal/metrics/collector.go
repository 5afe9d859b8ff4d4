// ABOUTME: Prometheus collector exposing the latest measurements and progress gauges.
// ABOUTME: Values are read from storage on every scrape.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Source is the storage slice the collector reads.
type Source interface {
	stats.Reader
	CountMeasurements(ctx context.Context, typeName string) (int, error)
}

// Collector implements prometheus.Collector.
type Collector struct {
	src     Source
	catalog *models.Catalog
	profile stats.Profile
	log     *slog.Logger
	timeout time.Duration

	latest *prometheus.Desc
	count  *prometheus.Desc
	bmi    *prometheus.Desc
	toGoal *prometheus.Desc
	up     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector. Values are always reported in metric units.
func NewCollector(src Source, catalog *models.Catalog, profile stats.Profile, log *slog.Logger) *Collector {
	return &Collector{
		src:     src,
		catalog: catalog,
		profile: profile,
		log:     log,
		timeout: 5 * time.Second,
		latest: prometheus.NewDesc("measure_latest_value",
			"Most recent measurement in metric units.", []string{"type", "unit"}, nil),
		count: prometheus.NewDesc("measure_measurements_total",
			"Number of stored measurements.", []string{"type"}, nil),
		bmi: prometheus.NewDesc("measure_bmi",
			"Body mass index of the latest weight.", nil, nil),
		toGoal: prometheus.NewDesc("measure_to_goal_kilograms",
			"Kilograms left to the goal weight.", nil, nil),
		up: prometheus.NewDesc("measure_storage_up",
			"Whether the last scrape could read storage.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.latest
	ch <- c.count
	ch <- c.bmi
	ch <- c.toGoal
	ch <- c.up
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	up := 1.0
	for _, t := range c.catalog.Enabled(c.profile) {
		n, err := c.src.CountMeasurements(ctx, t.Name)
		if err != nil {
			c.log.Warn("count failed", "type", t.Name, "error", err)
			up = 0
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.count, prometheus.GaugeValue, float64(n), t.Name)

		m, err := c.src.LatestMeasurement(ctx, t.Name)
		if errors.Is(err, models.ErrNoData) {
			continue
		}
		if err != nil {
			c.log.Warn("latest failed", "type", t.Name, "error", err)
			up = 0
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.latest, prometheus.GaugeValue, m.Value(true), t.Name, t.Unit.Label(true))
	}

	s, err := stats.Load(ctx, c.src, c.catalog, c.profile)
	switch {
	case errors.Is(err, models.ErrNoData):
	case err != nil:
		c.log.Warn("statistics failed", "error", err)
		up = 0
	default:
		if bmi := s.CurrentBMI(); bmi > 0 {
			ch <- prometheus.MustNewConstMetric(c.bmi, prometheus.GaugeValue, bmi)
		}
		if c.profile.GoalKG() > 0 {
			ch <- prometheus.MustNewConstMetric(c.toGoal, prometheus.GaugeValue, s.ToGoal().Value(true))
		}
	}

	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
}

// Registry returns a registry holding the collector plus the Go and process collectors.
func Registry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}
