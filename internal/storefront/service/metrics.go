package service

import "github.com/prometheus/client_golang/prometheus"

// Verification outcomes recorded in passcode_verifications_total.
const (
	resultSuccess        = "success"
	resultInvalid        = "invalid"
	resultUnknownAccount = "unknown_account"
)

// Metrics counts authentication and authorization outcomes. A nil *Metrics
// records nothing.
type Metrics struct {
	passcodesIssued   prometheus.Counter
	verifications     *prometheus.CounterVec
	deliveryFailures  prometheus.Counter
	accountsCreated   prometheus.Counter
	permissionDenials *prometheus.CounterVec
	passcodesPruned   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passcodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "passcodes_issued_total",
			Help: "Passcodes persisted for delivery.",
		}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passcode_verifications_total",
			Help: "Passcode verification attempts by result.",
		}, []string{"result"}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "passcode_delivery_failures_total",
			Help: "Passcodes whose notification could not be delivered.",
		}),
		accountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Accounts provisioned on first passcode request.",
		}),
		permissionDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "permission_denials_total",
			Help: "Requests refused by the permission gate, by capability.",
		}, []string{"capability"}),
		passcodesPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "passcodes_pruned_total",
			Help: "Expired passcodes removed by housekeeping.",
		}),
	}
	reg.MustRegister(
		m.passcodesIssued,
		m.verifications,
		m.deliveryFailures,
		m.accountsCreated,
		m.permissionDenials,
		m.passcodesPruned,
	)
	return m
}

func (m *Metrics) passcodeIssued() {
	if m != nil {
		m.passcodesIssued.Inc()
	}
}

func (m *Metrics) verification(result string) {
	if m != nil {
		m.verifications.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) deliveryFailed() {
	if m != nil {
		m.deliveryFailures.Inc()
	}
}

func (m *Metrics) accountCreated() {
	if m != nil {
		m.accountsCreated.Inc()
	}
}

func (m *Metrics) denied(capability string) {
	if m != nil {
		m.permissionDenials.WithLabelValues(capability).Inc()
	}
}

func (m *Metrics) pruned(n int64) {
	if m != nil && n > 0 {
		m.passcodesPruned.Add(float64(n))
	}
}
