// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// counterDef describes a registered counter: its vector and label schema.
// The label order here is the order prometheus expects values in.
type counterDef struct {
	vec    *prometheus.CounterVec
	labels []string
}

// registered is the fixed set of counters addressable by name through the
// Registry facade. Attempting to increment anything else is a programming
// error and panics.
var registered = map[string]counterDef{
	"gladius_cache_requests_total":    {vec: CacheRequests, labels: []string{"prefix", "result"}},
	"gladius_upstream_requests_total": {vec: UpstreamRequests, labels: []string{"region", "outcome"}},
	"gladius_token_refreshes_total":   {vec: TokenRefreshes, labels: []string{"region", "outcome"}},
	"gladius_breaker_requests_total":  {vec: BreakerRequests, labels: []string{"name", "outcome"}},
	"gladius_api_requests_total":      {vec: APIRequestsTotal, labels: []string{"method", "endpoint", "status_code"}},
}

// Registry is a name-addressed facade over the pre-declared metric vectors.
// It exists for callers that resolve metric names dynamically (e.g. the cache
// store labeling by key prefix) while keeping the full metric set declared
// statically in this package.
type Registry struct {
	gatherer prometheus.Gatherer
}

// NewRegistry returns a Registry backed by the default prometheus gatherer.
func NewRegistry() *Registry {
	return &Registry{gatherer: prometheus.DefaultGatherer}
}

// defaultRegistry backs the package-level record helpers.
var defaultRegistry = NewRegistry()

// Increment adds amount to the named counter. The name must be one of the
// pre-declared metrics; an unknown name is a fatal configuration error and
// panics rather than being silently dropped. Labels absent from the supplied
// map default to "unknown" so series cardinality stays predictable.
func (r *Registry) Increment(name string, amount float64, labels map[string]string) {
	def, ok := registered[name]
	if !ok {
		panic(fmt.Sprintf("metrics: increment of unregistered metric %q", name))
	}

	values := make([]string, len(def.labels))
	for i, label := range def.labels {
		if v, ok := labels[label]; ok && v != "" {
			values[i] = v
		} else {
			values[i] = "unknown"
		}
	}

	def.vec.WithLabelValues(values...).Add(amount)
}

// Value is a single metric sample: name, label set, and current value.
type Value struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// List returns a snapshot of all current metric values for diagnostics.
// Histograms are reported as their sample count.
func (r *Registry) List() ([]Value, error) {
	families, err := r.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var out []Value
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			v := Value{Name: fam.GetName()}
			if pairs := m.GetLabel(); len(pairs) > 0 {
				v.Labels = make(map[string]string, len(pairs))
				for _, p := range pairs {
					v.Labels[p.GetName()] = p.GetValue()
				}
			}

			switch fam.GetType() {
			case dto.MetricType_COUNTER:
				v.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				v.Value = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				v.Value = float64(m.GetHistogram().GetSampleCount())
			case dto.MetricType_SUMMARY:
				v.Value = float64(m.GetSummary().GetSampleCount())
			default:
				v.Value = m.GetUntyped().GetValue()
			}

			out = append(out, v)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
