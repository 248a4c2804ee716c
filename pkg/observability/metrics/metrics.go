package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifelink_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})

	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifelink_guard_decisions_total",
		Help: "Access guard outcomes by decision and redirect target.",
	}, []string{"decision", "target"})

	HospitalTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifelink_hospital_transitions_total",
		Help: "Hospital application state transitions by resulting status.",
	}, []string{"status"})

	RecordTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifelink_medical_record_transitions_total",
		Help: "Medical record state transitions by resulting status.",
	}, []string{"status"})

	AppointmentsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifelink_appointments_scheduled_total",
		Help: "Appointments created through the approval workflow.",
	})

	SlotConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifelink_appointment_slot_conflicts_total",
		Help: "Scheduling attempts rejected because the slot was taken.",
	})

	DonorsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifelink_donors_verified_total",
		Help: "Secondary verification outcomes by decision.",
	}, []string{"decision"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
