package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/entrhq/cxvoice/pkg/scenario"
)

// Metrics holds the run gauges on a private registry so each run exports
// only its own series.
type Metrics struct {
	registry *prometheus.Registry

	suitePassed   *prometheus.GaugeVec
	suiteDuration *prometheus.GaugeVec
	steps         *prometheus.GaugeVec
	stepDuration  *prometheus.GaugeVec
	calls         *prometheus.GaugeVec
	wrapUps       *prometheus.GaugeVec
	teardownErrs  *prometheus.GaugeVec
}

// NewMetrics creates the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		suitePassed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cxvoice",
			Subsystem: "suite",
			Name:      "passed",
			Help:      "1 if the suite passed, 0 otherwise.",
		}, []string{"suite", "run_id"}),
		suiteDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cxvoice",
			Subsystem: "suite",
			Name:      "duration_seconds",
			Help:      "Wall time of the suite run including setup and teardown.",
		}, []string{"suite", "run_id"}),
		steps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cxvoice",
			Subsystem: "suite",
			Name:      "steps",
			Help:      "Number of steps per outcome.",
		}, []string{"suite", "status"}),
		stepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cxvoice",
			Subsystem: "step",
			Name:      "duration_seconds",
			Help:      "Duration of each executed step.",
		}, []string{"suite", "step", "status"}),
		calls: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cxvoice",
			Subsystem: "call",
			Name:      "ended",
			Help:      "Calls by final state and termination path.",
		}, []string{"suite", "state", "end_path"}),
		wrapUps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cxvoice",
			Subsystem: "call",
			Name:      "wrap_up_confirmations",
			Help:      "Leave-without-wrap-up confirmations across all calls.",
		}, []string{"suite"}),
		teardownErrs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cxvoice",
			Subsystem: "suite",
			Name:      "teardown_errors",
			Help:      "Errors collected while releasing sessions.",
		}, []string{"suite"}),
	}
	m.registry.MustRegister(m.suitePassed, m.suiteDuration, m.steps, m.stepDuration, m.calls, m.wrapUps, m.teardownErrs)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records result.
func (m *Metrics) Observe(result *scenario.SuiteResult) {
	suite := result.Suite

	passed := 0.0
	if result.Passed() {
		passed = 1
	}
	m.suitePassed.WithLabelValues(suite, result.RunID).Set(passed)
	m.suiteDuration.WithLabelValues(suite, result.RunID).Set(result.Duration.Seconds())

	for _, status := range []scenario.Status{
		scenario.StatusPassed, scenario.StatusFailed, scenario.StatusSkipped,
		scenario.StatusNotRun, scenario.StatusFiltered,
	} {
		m.steps.WithLabelValues(suite, string(status)).Set(0)
	}
	for status, n := range result.Counts() {
		m.steps.WithLabelValues(suite, string(status)).Set(float64(n))
	}

	for _, s := range result.Steps {
		if s.Status != scenario.StatusPassed && s.Status != scenario.StatusFailed {
			continue
		}
		m.stepDuration.WithLabelValues(suite, s.Name, string(s.Status)).Set(s.Duration.Seconds())
	}

	wrapUps := 0
	for _, c := range result.Calls {
		m.calls.WithLabelValues(suite, string(c.State), string(c.EndPath)).Inc()
		wrapUps += c.WrapUps
	}
	m.wrapUps.WithLabelValues(suite).Set(float64(wrapUps))
	m.teardownErrs.WithLabelValues(suite).Set(float64(len(result.TeardownErrors)))
}

// WriteTextfile writes the registry for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
