package stress

import (
	"os"
	"time"

	"github.com/ValentinKolb/infostress/lib/model"
	"github.com/VictoriaMetrics/metrics"
	"github.com/cockroachdb/errors"
	gometrics "github.com/rcrowley/go-metrics"
)

// runMetrics collects counters for one run. They are exported in Prometheus
// text format at the end of the run if a metrics path is configured.
type runMetrics struct {
	set     *metrics.Set
	puts    *metrics.Counter
	deletes *metrics.Counter
	checks  *metrics.Counter
	sync    *metrics.Summary
	check   *metrics.Summary
	sizes   *payloadHistogram

	// rate shown in the progress line
	meter gometrics.Meter
}

func newRunMetrics(m *model.Model) *runMetrics {
	set := metrics.NewSet()
	set.NewGauge("infostress_model_keys", func() float64 {
		return float64(m.Len())
	})
	sizes := newPayloadHistogram()
	sizes.register(set)
	return &runMetrics{
		set:     set,
		puts:    set.NewCounter(`infostress_ops_total{op="put"}`),
		deletes: set.NewCounter(`infostress_ops_total{op="del"}`),
		checks:  set.NewCounter("infostress_checks_total"),
		sync:    set.NewSummary("infostress_sync_duration_seconds"),
		check:   set.NewSummary("infostress_check_duration_seconds"),
		sizes:   sizes,
		meter:   gometrics.NewMeter(),
	}
}

// recordOp counts an applied operation; start is taken before the op was sent
func (r *runMetrics) recordOp(op Op, start time.Time) {
	if op.Kind == OpPut {
		r.puts.Inc()
		r.sizes.add(len(op.Key) + 1 + len(op.Value))
	} else {
		r.deletes.Inc()
		r.sizes.add(len(op.Key))
	}
	r.sync.UpdateDuration(start)
	r.meter.Mark(1)
}

func (r *runMetrics) recordCheck(start time.Time) {
	r.checks.Inc()
	r.check.UpdateDuration(start)
}

// opsPerSecond returns the mean rate of applied operations
func (r *runMetrics) opsPerSecond() float64 {
	return r.meter.RateMean()
}

// writeFile writes all metrics of the run to path
func (r *runMetrics) writeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating metrics file")
	}
	defer f.Close()

	r.set.WritePrometheus(f)
	return nil
}

func (r *runMetrics) stop() {
	r.meter.Stop()
}
