package orbitronica

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "orbitronica"

// Metrics are the Prometheus collectors of the mission engine, registered on a private registry.
type Metrics struct {
	Registry            *prometheus.Registry
	Ticks               prometheus.Counter
	Outcomes            *prometheus.CounterVec
	ConvergenceFailures prometheus.Counter
	PlanningRejections  *prometheus.CounterVec
	Fuel                prometheus.Gauge
	Power               prometheus.Gauge
	Data                prometheus.Gauge
	ElapsedDays         prometheus.Gauge
}

// NewMetrics creates and registers the collectors on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks processed",
		}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mission_outcomes_total",
			Help:      "Terminal mission outcomes",
		}, []string{"target", "status"}),
		ConvergenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "kepler_convergence_failures_total",
			Help:      "Position refreshes where Kepler's equation did not converge",
		}),
		PlanningRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "planning_rejections_total",
			Help:      "Rejected mission planning requests",
		}, []string{"reason"}),
		Fuel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "fuel_percent",
			Help:      "Fuel on board",
		}),
		Power: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "power_percent",
			Help:      "Power available",
		}),
		Data: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "data_collected_megabytes",
			Help:      "Science data collected",
		}),
		ElapsedDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "elapsed_days",
			Help:      "Simulated days since launch",
		}),
	}
	m.Registry.MustRegister(m.Ticks, m.Outcomes, m.ConvergenceFailures, m.PlanningRejections, m.Fuel, m.Power, m.Data, m.ElapsedDays)
	return m
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) tick(s MissionState) {
	m.Ticks.Inc()
	m.Fuel.Set(s.Resources.Fuel)
	m.Power.Set(s.Resources.Power)
	m.Data.Set(s.Resources.Data)
	m.ElapsedDays.Set(s.ElapsedDays)
}

func (m *Metrics) outcome(target string, o Outcome) {
	m.Outcomes.WithLabelValues(target, o.Status.String()).Inc()
}

func (m *Metrics) planningRejected(err error) {
	m.PlanningRejections.WithLabelValues(rejectionReason(err)).Inc()
}

func rejectionReason(err error) string {
	var (
		unknownBody *UnknownBodyError
		window      *InvalidLaunchWindowError
		fuel        *InsufficientFuelError
	)
	switch {
	case errors.As(err, &unknownBody):
		return "unknown_body"
	case errors.As(err, &window):
		return "launch_window"
	case errors.As(err, &fuel):
		return "fuel"
	case errors.Is(err, ErrNoInstruments), errors.Is(err, ErrUnknownInstrument):
		return "instruments"
	}
	return "other"
}
