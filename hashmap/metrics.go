package hashmap

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports table occupancy and rehash progress, following the
// concrete counter/gauge shapes used for the same purpose in the corpus's
// HydraKV reference hashmap (kv_storage_size gauge pattern).
type Metrics struct {
	used      prometheus.Gauge
	size      prometheus.Gauge
	rehashing prometheus.Gauge
}

// NewMetrics registers a Metrics instance under the given label on reg.
// Pass a dedicated registry in tests to avoid collisions with other Map
// instances sharing the process default registry.
func NewMetrics(reg prometheus.Registerer, name string) *Metrics {
	met := &Metrics{
		used: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kvcore_hashmap_used",
			Help:        "Live entries in the hash map.",
			ConstLabels: prometheus.Labels{"table": name},
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kvcore_hashmap_size",
			Help:        "Bucket array size of the primary table.",
			ConstLabels: prometheus.Labels{"table": name},
		}),
		rehashing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kvcore_hashmap_rehashing",
			Help:        "1 while an incremental rehash is in progress.",
			ConstLabels: prometheus.Labels{"table": name},
		}),
	}
	if reg != nil {
		reg.MustRegister(met.used, met.size, met.rehashing)
	}
	return met
}

func (met *Metrics) observe(m *Map) {
	met.used.Set(float64(m.Used()))
	met.size.Set(float64(m.h[0].size))
	if m.Rehashing() {
		met.rehashing.Set(1)
	} else {
		met.rehashing.Set(0)
	}
}
