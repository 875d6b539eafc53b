package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	sgp4 "github.com/akhenakh/sdp4"
)

// Recorder collects propagation work counters on its own registry so a batch
// run can push them to a Pushgateway.
type Recorder struct {
	registry *prometheus.Registry

	propagations     *prometheus.CounterVec
	integratorSteps  *prometheus.CounterVec
	integratorResets *prometheus.CounterVec
	keplerIterations *prometheus.CounterVec
	keplerCapHits    *prometheus.CounterVec
	satellites       *prometheus.GaugeVec
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	labels := []string{"algorithm"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		propagations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgp4_propagations_total",
			Help: "Total number of state vectors computed.",
		}, labels),
		integratorSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgp4_resonance_integrator_steps_total",
			Help: "Total number of 720 minute resonance integration steps.",
		}, labels),
		integratorResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgp4_resonance_integrator_resets_total",
			Help: "Total number of resonance integrator restarts from epoch.",
		}, labels),
		keplerIterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgp4_kepler_iterations_total",
			Help: "Total number of Kepler equation Newton iterations.",
		}, labels),
		keplerCapHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgp4_kepler_iteration_cap_hits_total",
			Help: "Kepler solves stopped by the iteration cap before converging.",
		}, labels),
		satellites: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sgp4_satellites",
			Help: "Number of propagated element sets by algorithm and resonance.",
		}, []string{"algorithm", "resonance"}),
	}
	r.registry.MustRegister(
		r.propagations,
		r.integratorSteps,
		r.integratorResets,
		r.keplerIterations,
		r.keplerCapHits,
		r.satellites,
	)
	return r
}

// Observe adds the work done by one propagator.
func (r *Recorder) Observe(p *sgp4.Propagator) {
	algo := p.Algorithm().String()
	s := p.Stats()
	r.propagations.WithLabelValues(algo).Add(float64(s.Propagations))
	r.integratorSteps.WithLabelValues(algo).Add(float64(s.IntegratorSteps))
	r.integratorResets.WithLabelValues(algo).Add(float64(s.IntegratorResets))
	r.keplerIterations.WithLabelValues(algo).Add(float64(s.KeplerIterations))
	r.keplerCapHits.WithLabelValues(algo).Add(float64(s.KeplerCapHits))
	r.satellites.WithLabelValues(algo, p.Resonance().String()).Inc()
}

// Handler returns the Prometheus metrics HTTP handler for this registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes the registry on /metrics from ln until ctx is done, then
// shuts the server down.
func (r *Recorder) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return errors.Wrap(err, "serving metrics")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "metrics server shutdown")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving metrics")
	}
	return nil
}

// Push sends the collected metrics to a Pushgateway under job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	err := push.New(url, job).Gatherer(r.registry).PushContext(ctx)
	return errors.Wrapf(err, "pushing metrics to %s", url)
}
