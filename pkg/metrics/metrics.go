package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Catalog metrics
	CollectionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lattice_collections_total",
			Help: "Total number of collections by status",
		},
		[]string{"status"},
	)

	DatabasesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lattice_databases_total",
			Help: "Total number of open vocbases",
		},
	)

	// Shape dictionary metrics
	ShapesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lattice_shapes_total",
			Help: "Total number of distinct shapes interned in the shape dictionary",
		},
	)

	AttributeNamesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lattice_attribute_names_total",
			Help: "Total number of distinct attribute names interned",
		},
	)

	AttributePathsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lattice_attribute_paths_total",
			Help: "Total number of distinct attribute paths interned",
		},
	)

	// Transaction metrics
	TransactionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lattice_transactions_active",
			Help: "Number of currently ongoing top-level transactions",
		},
	)

	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lattice_transactions_total",
			Help: "Total number of transactions by terminal status",
		},
		[]string{"status"},
	)

	TransactionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_transaction_duration_seconds",
			Help:    "Time from Begin to Commit/Rollback for a top-level transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Skiplist index metrics
	SkiplistNodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lattice_skiplist_nodes_total",
			Help: "Total number of nodes held by a skiplist index",
		},
		[]string{"collection", "index"},
	)

	SkiplistInsertDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_skiplist_insert_duration_seconds",
			Help:    "Time taken to insert one element into a skiplist index",
			Buckets: prometheus.DefBuckets,
		},
	)

	SkiplistRangeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_skiplist_range_duration_seconds",
			Help:    "Time taken to evaluate a skiplist range query",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Shaping operation metrics
	ShapeEncodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_shape_encode_duration_seconds",
			Help:    "Time taken to shape and encode a JSON value",
			Buckets: prometheus.DefBuckets,
		},
	)

	ShapeDecodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_shape_decode_duration_seconds",
			Help:    "Time taken to reconstruct a JSON value from its shape",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Collection lifecycle operation metrics
	CollectionCreateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_collection_create_duration_seconds",
			Help:    "Time taken to create a collection",
			Buckets: prometheus.DefBuckets,
		},
	)

	CollectionLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_collection_load_duration_seconds",
			Help:    "Time taken to load a collection from Unloaded to Loaded",
			Buckets: prometheus.DefBuckets,
		},
	)

	CollectionUnloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lattice_collection_unload_duration_seconds",
			Help:    "Time taken to unload a collection from Loaded to Unloaded",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(CollectionsTotal)
	prometheus.MustRegister(DatabasesTotal)
	prometheus.MustRegister(ShapesTotal)
	prometheus.MustRegister(AttributeNamesTotal)
	prometheus.MustRegister(AttributePathsTotal)
	prometheus.MustRegister(TransactionsActive)
	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(TransactionDuration)
	prometheus.MustRegister(SkiplistNodesTotal)
	prometheus.MustRegister(SkiplistInsertDuration)
	prometheus.MustRegister(SkiplistRangeDuration)
	prometheus.MustRegister(ShapeEncodeDuration)
	prometheus.MustRegister(ShapeDecodeDuration)
	prometheus.MustRegister(CollectionCreateDuration)
	prometheus.MustRegister(CollectionLoadDuration)
	prometheus.MustRegister(CollectionUnloadDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
