package stress

import (
	"fmt"
	"math"

	"github.com/VictoriaMetrics/metrics"
)

// ----------------------------------------------------------------------------
// Payload size histogram
// ----------------------------------------------------------------------------

// payloadBoundaries are the upper bounds of the histogram buckets. They
// follow the allocation granularity of the store (8 byte alignment, 4kB
// pages) up to the largest frame payload.
var payloadBoundaries = []int{
	8, 64, 512, 4096, // below one page
	8192, 16384, 32768, // multiple pages
	65535, // largest frame payload
}

// payloadHistogram tracks the sizes of the WRITE payloads sent during a run,
// so a failure can be related to the frame sizes that were exercised.
// It is used by the driver goroutine only.
type payloadHistogram struct {
	buckets []int64 // last bucket counts payloads above the largest boundary
	count   int64
	sum     int64
}

func newPayloadHistogram() *payloadHistogram {
	return &payloadHistogram{
		buckets: make([]int64, len(payloadBoundaries)+1),
	}
}

// add records a payload of size bytes
func (h *payloadHistogram) add(size int) {
	bucketIndex := len(payloadBoundaries)
	for i, boundary := range payloadBoundaries {
		if size <= boundary {
			bucketIndex = i
			break
		}
	}

	h.buckets[bucketIndex]++
	h.count++
	h.sum += int64(size)
}

// average returns the mean payload size
func (h *payloadHistogram) average() int {
	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// percentile returns the upper bound of the bucket holding the given
// percentile (0-100), or 0 if nothing was recorded
func (h *payloadHistogram) percentile(p int) int {
	if h.count == 0 || p < 0 || p > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * float64(p) / 100.0))
	cumulative := int64(0)
	for i, count := range h.buckets {
		cumulative += count
		if cumulative >= target && cumulative > 0 {
			if i < len(payloadBoundaries) {
				return payloadBoundaries[i]
			}
			break
		}
	}
	return payloadBoundaries[len(payloadBoundaries)-1]
}

// register exports the cumulative bucket counts as Prometheus style gauges
func (h *payloadHistogram) register(set *metrics.Set) {
	for i := range payloadBoundaries {
		i := i
		name := fmt.Sprintf(`infostress_write_payload_bytes_bucket{le="%d"}`, payloadBoundaries[i])
		set.NewGauge(name, func() float64 {
			var cumulative int64
			for _, c := range h.buckets[:i+1] {
				cumulative += c
			}
			return float64(cumulative)
		})
	}
	set.NewGauge(`infostress_write_payload_bytes_count`, func() float64 {
		return float64(h.count)
	})
	set.NewGauge(`infostress_write_payload_bytes_sum`, func() float64 {
		return float64(h.sum)
	})
}
