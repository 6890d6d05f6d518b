package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the analysis pipeline.
type PipelineMetrics struct {
	utterancesTotal  *prometheus.CounterVec
	postbacksTotal   *prometheus.CounterVec
	pipelineLatency  prometheus.Histogram
	llmFallbacks     prometheus.Counter
	cardFailures     prometheus.Counter
	replyCacheHits   prometheus.Counter
	replyCacheMisses prometheus.Counter
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		utterancesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "pipeline",
			Name:      "utterances_total",
			Help:      "Total analyzed utterances",
		}, []string{"module", "format"}),
		postbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "pipeline",
			Name:      "postbacks_total",
			Help:      "Total postback actions",
		}, []string{"view"}),
		pipelineLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "careline",
			Subsystem: "pipeline",
			Name:      "latency_seconds",
			Help:      "Latency of full utterance handling",
			Buckets:   prometheus.DefBuckets,
		}),
		llmFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "pipeline",
			Name:      "llm_fallbacks_total",
			Help:      "Analyses degraded to the keyword-only path",
		}),
		cardFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "cards",
			Name:      "validation_failures_total",
			Help:      "Cards replaced by the fallback error card",
		}),
		replyCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Reply cache hits",
		}),
		replyCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Reply cache misses",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.utterancesTotal, m.postbacksTotal, m.pipelineLatency,
		m.llmFallbacks, m.cardFailures, m.replyCacheHits, m.replyCacheMisses,
	)
	return m
}

func (m *PipelineMetrics) ObserveUtterance(module, format string) {
	if m == nil {
		return
	}
	m.utterancesTotal.WithLabelValues(module, format).Inc()
}

func (m *PipelineMetrics) ObservePostback(view string) {
	if m == nil {
		return
	}
	m.postbacksTotal.WithLabelValues(view).Inc()
}

func (m *PipelineMetrics) ObserveLatency(seconds float64) {
	if m == nil {
		return
	}
	m.pipelineLatency.Observe(seconds)
}

func (m *PipelineMetrics) ObserveLLMFallback() {
	if m == nil {
		return
	}
	m.llmFallbacks.Inc()
}

func (m *PipelineMetrics) ObserveCardFailure() {
	if m == nil {
		return
	}
	m.cardFailures.Inc()
}

func (m *PipelineMetrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.replyCacheHits.Inc()
		return
	}
	m.replyCacheMisses.Inc()
}
