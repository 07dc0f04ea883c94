/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics exposes the bus's runtime counters and gauges through
// github.com/prometheus/client_golang, scoped to a caller-supplied registry
// instead of the global default registry. Every collector sits under the
// "obus" namespace and carries a constant "bus" label naming its bus, so a
// process embedding multiple buses can tell their metrics apart.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/obus/errs"
)

// Collectors bundles every metric one bus endpoint updates.
type Collectors struct {
	RegistrySize       *prometheus.GaugeVec
	HandleCollisions   prometheus.Counter
	ReactorPollLatency prometheus.Histogram
	WriteQueueDepth    *prometheus.GaugeVec
	WriteTimeouts      *prometheus.CounterVec
	AckOutcomes        *prometheus.CounterVec
	Resyncs            prometheus.Counter
}

// New builds and registers a Collectors set under reg, with bus labeling
// every vector by busName so several buses can share one registry.
func New(reg prometheus.Registerer, busName string) *Collectors {
	c := &Collectors{
		RegistrySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "obus",
			Name:      "registry_size",
			Help:      "Number of live entries per registry table.",
			ConstLabels: prometheus.Labels{"bus": busName},
		}, []string{"table"}),
		HandleCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "obus",
			Name:        "handle_alloc_retries_total",
			Help:        "Retries spent on a handle collision or zero draw.",
			ConstLabels: prometheus.Labels{"bus": busName},
		}),
		ReactorPollLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "obus",
			Name:        "reactor_poll_seconds",
			Help:        "Time spent blocked in one reactor poll call.",
			ConstLabels: prometheus.Labels{"bus": busName},
			Buckets:     prometheus.DefBuckets,
		}),
		WriteQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "obus",
			Name:        "write_queue_depth",
			Help:        "Buffers queued for async write per connection.",
			ConstLabels: prometheus.Labels{"bus": busName},
		}, []string{"peer"}),
		WriteTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "obus",
			Name:        "write_timeouts_total",
			Help:        "Write-queue entries dropped for exceeding the write timeout.",
			ConstLabels: prometheus.Labels{"bus": busName},
		}, []string{"peer"}),
		AckOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "obus",
			Name:        "call_outcomes_total",
			Help:        "Method call acknowledgements by outcome.",
			ConstLabels: prometheus.Labels{"bus": busName},
		}, []string{"outcome"}),
		Resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "obus",
			Name:        "decoder_resyncs_total",
			Help:        "Times the packet decoder discarded a byte to find the next magic.",
			ConstLabels: prometheus.Labels{"bus": busName},
		}),
	}
	reg.MustRegister(
		c.RegistrySize, c.HandleCollisions, c.ReactorPollLatency,
		c.WriteQueueDepth, c.WriteTimeouts, c.AckOutcomes, c.Resyncs,
	)
	return c
}

// ObserveAck records one call outcome.
func (c *Collectors) ObserveAck(o errs.CallOutcome) {
	if c == nil {
		return
	}
	c.AckOutcomes.WithLabelValues(o.String()).Inc()
}
