// Package metrics exposes prometheus instruments for the kiosk.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "frontdesk"

// KioskMetrics counts turns, token issuance and store traffic. A nil
// *KioskMetrics is valid and records nothing.
type KioskMetrics struct {
	turnsTotal     *prometheus.CounterVec
	turnLatency    *prometheus.HistogramVec
	doctorMatches  *prometheus.CounterVec
	tokensIssued   *prometheus.CounterVec
	tokenReveals   prometheus.Counter
	storeOps       *prometheus.CounterVec
	resumes        *prometheus.CounterVec
	speechFailures *prometheus.CounterVec
}

// NewKioskMetrics creates and registers the kiosk instruments. A nil reg
// registers with the default registerer.
func NewKioskMetrics(reg prometheus.Registerer) *KioskMetrics {
	m := &KioskMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Conversation turns by the stage they started in and whether the stage advanced",
		}, []string{"stage", "outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Time from user input to bot utterance, including the reply delay",
			Buckets:   []float64{.05, .1, .25, .5, 1, 1.5, 2, 5},
		}, []string{"stage"}),
		doctorMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "matches_total",
			Help:      "Doctor references by resolving matcher tier (none when unresolved)",
		}, []string{"tier"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "issued_total",
			Help:      "Visit tokens issued by specialty",
		}, []string{"specialty"}),
		tokenReveals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "reveals_total",
			Help:      "Times the token card and QR code were shown",
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Session store operations by kind and result",
		}, []string{"op", "status"}),
		resumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "resumes_total",
			Help:      "Session starts by resume outcome",
		}, []string{"outcome"}),
		speechFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "speech",
			Name:      "failures_total",
			Help:      "Speech collaborator failures by code",
		}, []string{"code"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.turnsTotal, m.turnLatency, m.doctorMatches, m.tokensIssued,
		m.tokenReveals, m.storeOps, m.resumes, m.speechFailures,
	)
	return m
}

func (m *KioskMetrics) ObserveTurn(stage string, advanced bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "reprompt"
	if advanced {
		outcome = "advanced"
	}
	m.turnsTotal.WithLabelValues(stage, outcome).Inc()
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}

func (m *KioskMetrics) ObserveMatch(tier string) {
	if m == nil {
		return
	}
	if tier == "" {
		tier = "none"
	}
	m.doctorMatches.WithLabelValues(tier).Inc()
}

func (m *KioskMetrics) ObserveTokenIssued(specialty string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(specialty).Inc()
}

func (m *KioskMetrics) ObserveReveal() {
	if m == nil {
		return
	}
	m.tokenReveals.Inc()
}

func (m *KioskMetrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.storeOps.WithLabelValues(op, status).Inc()
}

func (m *KioskMetrics) ObserveResume(outcome string) {
	if m == nil {
		return
	}
	m.resumes.WithLabelValues(outcome).Inc()
}

func (m *KioskMetrics) ObserveSpeechFailure(code string) {
	if m == nil {
		return
	}
	m.speechFailures.WithLabelValues(code).Inc()
}
