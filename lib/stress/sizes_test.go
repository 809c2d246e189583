package stress

import (
	"bytes"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/require"
)

func TestPayloadHistogram(t *testing.T) {
	h := newPayloadHistogram()
	require.Equal(t, 0, h.average())
	require.Equal(t, 0, h.percentile(50))

	h.add(1)
	h.add(8)
	h.add(9)
	h.add(65535)

	require.Equal(t, int64(4), h.count)
	require.Equal(t, (1+8+9+65535)/4, h.average())
	require.Equal(t, int64(2), h.buckets[0])
	require.Equal(t, int64(1), h.buckets[1])
	require.Equal(t, 8, h.percentile(50))
	require.Equal(t, 64, h.percentile(75))
	require.Equal(t, 65535, h.percentile(100))
}

func TestPayloadHistogramExport(t *testing.T) {
	h := newPayloadHistogram()
	set := metrics.NewSet()
	h.register(set)

	h.add(3)
	h.add(5000)

	var buf bytes.Buffer
	set.WritePrometheus(&buf)
	out := buf.String()
	require.Contains(t, out, `infostress_write_payload_bytes_bucket{le="8"} 1`)
	require.Contains(t, out, `infostress_write_payload_bytes_bucket{le="8192"} 2`)
	require.Contains(t, out, `infostress_write_payload_bytes_count 2`)
}
