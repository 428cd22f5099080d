package keyspace

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports per-database size and active-expiration activity,
// following the same gauge/counter shapes as hashmap.Metrics.
type Metrics struct {
	dbSize        *prometheus.GaugeVec
	expiredTotal  *prometheus.CounterVec
	expireSampled *prometheus.CounterVec
}

// NewMetrics registers a Metrics instance on reg. Pass a dedicated
// registry in tests to avoid collisions with other Server instances
// sharing the process default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	met := &Metrics{
		dbSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kvcore_keyspace_db_size",
			Help: "Live key count per database.",
		}, []string{"db"}),
		expiredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kvcore_keyspace_active_expired_total",
			Help: "Keys removed by the active expiration cycle.",
		}, []string{"db"}),
		expireSampled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kvcore_keyspace_active_expire_sampled_total",
			Help: "Keys sampled by the active expiration cycle.",
		}, []string{"db"}),
	}
	if reg != nil {
		reg.MustRegister(met.dbSize, met.expiredTotal, met.expireSampled)
	}
	return met
}

func (met *Metrics) observeExpireCycle(dbID int, stats ActiveExpireStats) {
	label := prometheus.Labels{"db": strconv.Itoa(dbID)}
	met.expiredTotal.With(label).Add(float64(stats.Expired))
	met.expireSampled.With(label).Add(float64(stats.Sampled))
}

// ObserveSize sets the db-size gauge. Database has no hook that calls it,
// and no code in this repository calls it; the gauge changes only when a
// caller reports a size.
func (met *Metrics) ObserveSize(dbID, size int) {
	met.dbSize.With(prometheus.Labels{"db": strconv.Itoa(dbID)}).Set(float64(size))
}
