package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	datasetRowsDesc = prometheus.NewDesc(
		"engagedash_dataset_rows",
		"Posts in the loaded dataset by use",
		[]string{"use"},
		nil,
	)
	featureCountDesc = prometheus.NewDesc(
		"engagedash_model_features",
		"Width of the frozen feature schema",
		nil,
		nil,
	)
	modelInfoDesc = prometheus.NewDesc(
		"engagedash_model_info",
		"Loaded model artifact",
		[]string{"version"},
		nil,
	)
)

// Stats is the read-only view of the loaded engine the collector reports on.
type Stats interface {
	Rows() int
	ExcludedRows() int
	FeatureCount() int
	ModelVersion() string
}

// EngineCollector is a custom Prometheus collector that reads dataset and
// model figures from the engine on each scrape.
type EngineCollector struct {
	mu    sync.RWMutex
	stats Stats
}

// NewEngineCollector returns a collector over stats.
func NewEngineCollector(stats Stats) *EngineCollector {
	return &EngineCollector{stats: stats}
}

// SetStats points the collector at another engine.
func (c *EngineCollector) SetStats(stats Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
}

// Describe sends the metric descriptors to the channel.
func (c *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- datasetRowsDesc
	ch <- featureCountDesc
	ch <- modelInfoDesc
}

// Collect emits the current figures as gauges.
func (c *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	stats := c.stats
	c.mu.RUnlock()

	rows, excluded := stats.Rows(), stats.ExcludedRows()
	ch <- prometheus.MustNewConstMetric(datasetRowsDesc, prometheus.GaugeValue, float64(rows-excluded), "model")
	ch <- prometheus.MustNewConstMetric(datasetRowsDesc, prometheus.GaugeValue, float64(excluded), "excluded")
	ch <- prometheus.MustNewConstMetric(featureCountDesc, prometheus.GaugeValue, float64(stats.FeatureCount()))
	ch <- prometheus.MustNewConstMetric(modelInfoDesc, prometheus.GaugeValue, 1, stats.ModelVersion())
}

// Recorder counts single-row predictions.
type Recorder struct {
	predictions *prometheus.CounterVec
	rates       prometheus.Histogram
}

// NewRecorder creates the prediction metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagedash_predictions_total",
			Help: "Single-row predictions by channel and outcome",
		}, []string{"channel", "outcome"}),
		rates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engagedash_predicted_engagement_rate",
			Help:    "Distribution of predicted engagement rates",
			Buckets: []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1},
		}),
	}
	reg.MustRegister(r.predictions, r.rates)
	return r
}

// Observe records one prediction. err is the prediction or validation error.
func (r *Recorder) Observe(channel string, rate float64, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.predictions.WithLabelValues(channel, "error").Inc()
		return
	}
	r.predictions.WithLabelValues(channel, "ok").Inc()
	r.rates.Observe(rate)
}

var (
	collector *EngineCollector
	recorder  *Recorder
	initOnce  sync.Once
)

// Init registers the engine collector and the prediction recorder with the
// default registry on first use. Later calls only repoint the collector, so
// scrapes always report the most recently registered engine.
func Init(stats Stats) {
	initOnce.Do(func() {
		collector = NewEngineCollector(stats)
		prometheus.MustRegister(collector)
		recorder = NewRecorder(prometheus.DefaultRegisterer)
	})
	collector.SetStats(stats)
}

// RecordPrediction records a prediction on the global recorder, if any.
func RecordPrediction(channel string, rate float64, err error) {
	recorder.Observe(channel, rate, err)
}
