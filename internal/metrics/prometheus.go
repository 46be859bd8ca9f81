package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoSim-25-26J-441/swarm-core/internal/pso"
)

// Prometheus exports solver and run service metrics. Every instance owns its
// registry so several can coexist in one process.
type Prometheus struct {
	registry *prometheus.Registry

	solves      *prometheus.CounterVec
	rounds      *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	bestScore   *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	inFlight    prometheus.Gauge
	rejected    prometheus.Counter
}

// NewPrometheus creates the collectors and registers them
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarm_solves_total",
			Help: "Total solves by variant and outcome",
		}, []string{"variant", "status"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarm_rounds_total",
			Help: "Total full sweeps of the swarm",
		}, []string{"variant"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarm_objective_evaluations_total",
			Help: "Total objective function calls made by solves",
		}, []string{"variant"}),
		bestScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "swarm_best_score",
			Help: "Best score of the most recent solve per objective",
		}, []string{"objective"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swarm_solve_duration_seconds",
			Help:    "Wall time of solves",
			Buckets: prometheus.DefBuckets,
		}, []string{"variant"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swarm_runs_in_flight",
			Help: "Runs currently executing",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarm_runs_rejected_total",
			Help: "Runs refused by admission control",
		}),
	}
	p.registry.MustRegister(
		p.solves,
		p.rounds,
		p.evaluations,
		p.bestScore,
		p.duration,
		p.inFlight,
		p.rejected,
	)
	return p
}

// Registry returns the registry backing p
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the exposition format for p's registry
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Observer returns a pso.Observer that accounts a solve of the given variant
// and objective
func (p *Prometheus) Observer(variant, objective string) pso.Observer {
	return &promObserver{p: p, variant: variant, objective: objective}
}

// SolveFailed counts a solve that returned an error
func (p *Prometheus) SolveFailed(variant string) {
	p.solves.WithLabelValues(variant, "failed").Inc()
}

// RunStarted marks a run as executing
func (p *Prometheus) RunStarted() { p.inFlight.Inc() }

// RunFinished marks a run as no longer executing
func (p *Prometheus) RunFinished() { p.inFlight.Dec() }

// RunRejected counts a run refused by admission control
func (p *Prometheus) RunRejected() { p.rejected.Inc() }

type promObserver struct {
	p         *Prometheus
	variant   string
	objective string
}

func (o *promObserver) RoundCompleted(int, float64) {
	o.p.rounds.WithLabelValues(o.variant).Inc()
}

func (o *promObserver) SolveCompleted(res pso.Result) {
	o.p.solves.WithLabelValues(o.variant, "completed").Inc()
	o.p.evaluations.WithLabelValues(o.variant).Add(float64(res.Evaluations))
	o.p.bestScore.WithLabelValues(o.objective).Set(res.Score)
	o.p.duration.WithLabelValues(o.variant).Observe(res.Duration.Seconds())
}
