package keyspace

import "time"

// ActiveExpireStats reports what one ActiveExpireCycle call did, for the
// eventloop's timer handler to log or feed into metrics.
type ActiveExpireStats struct {
	Sampled int
	Expired int
	Passes  int
}

// ActiveExpireCycle implements spec.md §4.E's timer-driven expiration:
// sample up to sampleSize random keys from expiries, delete those already
// due, and repeat while the expired fraction exceeds repeatPercent — until
// it drops below that threshold or budget elapses.
func (db *Database) ActiveExpireCycle(now int64, budget time.Duration, sampleSize, repeatPercent int) ActiveExpireStats {
	var stats ActiveExpireStats
	deadline := time.Now().Add(budget)
	for {
		stats.Passes++
		sampled, expired := db.expireSamplePass(now, sampleSize)
		stats.Sampled += sampled
		stats.Expired += expired
		if sampled == 0 {
			return stats
		}
		if expired*100 < sampleSize*repeatPercent {
			return stats
		}
		if time.Now().After(deadline) {
			return stats
		}
	}
}

func (db *Database) expireSamplePass(now int64, sampleSize int) (sampled, expired int) {
	if db.expiries.Used() == 0 {
		return 0, 0
	}
	out := db.sampleBuf[:0]
	out = db.expiries.SampleEntries(sampleSize, out)
	db.sampleBuf = out
	for _, e := range out {
		sampled++
		// A sample may repeat a key; only a key actually removed counts.
		if now >= e.Value.(int64) && db.deleteSync(e.Key) {
			db.propagateDel(e.Key)
			expired++
		}
	}
	return sampled, expired
}
