package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead flows.
type LeadMetrics struct {
	operationsTotal *prometheus.CounterVec
	filterClauses   prometheus.Histogram
	listResults     prometheus.Histogram
	storeLatency    *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "operations_total",
			Help:      "Total lead operations by kind and outcome",
		}, []string{"operation", "status"}),
		filterClauses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "filter_clauses",
			Help:      "Number of compiled filter clauses per list request",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		listResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "list_total_matches",
			Help:      "Total matching leads per list request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "store_latency_seconds",
			Help:      "Latency of lead store calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.filterClauses, m.listResults, m.storeLatency)
	return m
}

func (m *LeadMetrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *LeadMetrics) ObserveList(clauses, total int) {
	if m == nil {
		return
	}
	m.filterClauses.Observe(float64(clauses))
	m.listResults.Observe(float64(total))
}

func (m *LeadMetrics) ObserveStoreLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(operation).Observe(seconds)
}

// AuthMetrics counts authentication outcomes.
type AuthMetrics struct {
	attemptsTotal *prometheus.CounterVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total register/login/logout attempts by outcome",
		}, []string{"action", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal)
	return m
}

func (m *AuthMetrics) ObserveAttempt(action string, ok bool) {
	if m == nil {
		return
	}
	status := "failure"
	if ok {
		status = "success"
	}
	m.attemptsTotal.WithLabelValues(action, status).Inc()
}
