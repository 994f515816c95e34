/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package metrics exposes bus.Bus health as Prometheus instruments. It is
// pulled, not pushed: Collect re-reads bus.Health() on every scrape, so
// there is no periodic goroutine to leak or fall behind.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vedarsh/usrl-core/bus"
)

// Collector implements prometheus.Collector over a bus.Bus's health
// snapshot.
type Collector struct {
	b *bus.Bus

	wHead   *prometheus.Desc
	lastSeq *prometheus.Desc
	lag     *prometheus.Desc
	skipped *prometheus.Desc
}

// NewCollector wraps b for registration with a prometheus.Registry.
func NewCollector(b *bus.Bus) *Collector {
	labels := []string{"topic", "type"}
	return &Collector{
		b: b,
		wHead: prometheus.NewDesc(
			"usrl_w_head", "Current write cursor for a topic.", labels, nil),
		lastSeq: prometheus.NewDesc(
			"usrl_subscriber_last_seq", "Last sequence consumed by the in-process subscriber, if any.", labels, nil),
		lag: prometheus.NewDesc(
			"usrl_lag_messages", "Messages published but not yet consumed by the in-process subscriber.", labels, nil),
		skipped: prometheus.NewDesc(
			"usrl_skipped_total", "Overrun and torn-read skip events observed by the in-process subscriber.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.wHead
	ch <- c.lastSeq
	ch <- c.lag
	ch <- c.skipped
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.b.Health()
	for _, t := range snap.Topics {
		labels := []string{t.Name, t.Type.String()}
		ch <- prometheus.MustNewConstMetric(c.wHead, prometheus.CounterValue, float64(t.WHead), labels...)
		if !t.HasConsumer {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.lastSeq, prometheus.CounterValue, float64(t.LastSeq), labels...)
		ch <- prometheus.MustNewConstMetric(c.lag, prometheus.GaugeValue, float64(t.LagMessages), labels...)
		ch <- prometheus.MustNewConstMetric(c.skipped, prometheus.CounterValue, float64(t.SkippedTotal), labels...)
	}
}
