// Package metrics counts decoded blocks, bit errors, turbo iterations and
// decode latency on a private Prometheus registry, and dumps the registry
// in text exposition format when an evaluation run ends.
package metrics

import (
	"bufio"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector implements fec.TurboObserver. It is safe for concurrent use.
type Collector struct {
	Registry *prometheus.Registry

	blocks     *prometheus.CounterVec
	bitErrors  prometheus.Counter
	bits       prometheus.Counter
	iterations prometheus.Histogram
	latency    prometheus.Histogram
}

// New registers the collector's metrics under namespace.
func New(namespace string) *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_decoded_total",
			Help:      "Decoded blocks by convergence.",
		}, []string{"converged"}),
		bitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bit_errors_total",
			Help:      "Residual bit errors after decoding.",
		}),
		bits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bits_decoded_total",
			Help:      "Information bits decoded.",
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turbo_iterations",
			Help:      "Turbo iterations run per block.",
			Buckets:   prometheus.LinearBuckets(1, 1, 16),
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_seconds",
			Help:      "Time spent decoding one block.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
	c.Registry.MustRegister(c.blocks, c.bitErrors, c.bits, c.iterations, c.latency)
	return c
}

func (c *Collector) ObserveTurboDecode(iterations int, converged bool, elapsed time.Duration) {
	label := "false"
	if converged {
		label = "true"
	}
	c.blocks.WithLabelValues(label).Inc()
	c.iterations.Observe(float64(iterations))
	c.latency.Observe(elapsed.Seconds())
}

// ObserveBlock records a block decoded outside the turbo loop.
func (c *Collector) ObserveBlock(elapsed time.Duration) {
	c.blocks.WithLabelValues("true").Inc()
	c.latency.Observe(elapsed.Seconds())
}

// AddErrors records n residual errors among nbits decoded bits.
func (c *Collector) AddErrors(n, nbits int) {
	c.bitErrors.Add(float64(n))
	c.bits.Add(float64(nbits))
}

// WriteFile writes every registered metric family to path.
func (c *Collector) WriteFile(path string) error {
	families, err := c.Registry.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
