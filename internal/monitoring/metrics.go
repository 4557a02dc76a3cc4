package monitoring

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects and provides the floor's operational metrics.
type Metrics struct {
	operations      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	occupiedTables  prometheus.Gauge
	persistFailures prometheus.Counter
}

// New creates the floor metrics and registers them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "comandero_operations_total",
			Help: "Completed order-engine operations by name.",
		}, []string{"operation"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "comandero_rejections_total",
			Help: "Operations rejected by input validation or state guards.",
		}, []string{"operation"}),
		occupiedTables: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "comandero_occupied_tables",
			Help: "Tables currently holding an order.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "comandero_persist_failures_total",
			Help: "Best-effort snapshot saves that failed.",
		}),
	}
	reg.MustRegister(m.operations, m.rejections, m.occupiedTables, m.persistFailures)
	return m
}

// RecordOperation counts a completed engine operation.
func (m *Metrics) RecordOperation(name string) {
	m.operations.WithLabelValues(name).Inc()
}

// RecordRejection counts an operation turned away by a guard or validation.
func (m *Metrics) RecordRejection(name string) {
	m.rejections.WithLabelValues(name).Inc()
}

// SetOccupiedTables tracks how many tables hold an order.
func (m *Metrics) SetOccupiedTables(n int) {
	m.occupiedTables.Set(float64(n))
}

// RecordPersistFailure counts a failed snapshot save.
func (m *Metrics) RecordPersistFailure() {
	m.persistFailures.Inc()
}
