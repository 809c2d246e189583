package stress

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/stretchr/testify/require"
)

func TestDefaultCorpus(t *testing.T) {
	c := DefaultCorpus()
	require.NoError(t, c.Validate())
	require.Len(t, c.Keys, 9)
	require.Len(t, c.Values, 8)

	// the largest key and value fill a frame exactly
	largest := len(c.Keys[len(c.Keys)-1]) + 1 + len(c.Values[len(c.Values)-1])
	require.Equal(t, common.MaxPayload, largest)

	puts, dels := 0, 0
	for _, k := range c.Ops {
		if k == OpPut {
			puts++
		} else {
			dels++
		}
	}
	require.Equal(t, 5, puts)
	require.Equal(t, 1, dels)
}

func TestCorpusValidate(t *testing.T) {
	c := DefaultCorpus()
	c.Keys = append(c.Keys, "bad\x00key")
	require.Error(t, c.Validate())

	c = DefaultCorpus()
	c.Values = append(c.Values, make([]byte, common.MaxPayload))
	require.Error(t, c.Validate())

	require.Error(t, Corpus{}.Validate())
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a := NewGenerator(0, DefaultCorpus())
	b := NewGenerator(0, DefaultCorpus())
	other := NewGenerator(1, DefaultCorpus())

	differs := false
	for i := 0; i < 10000; i++ {
		opA, opB, opO := a.Next(), b.Next(), other.Next()
		require.Equal(t, opA.Kind, opB.Kind, "step %d", i)
		require.Equal(t, opA.Key, opB.Key, "step %d", i)
		require.True(t, bytes.Equal(opA.Value, opB.Value), "step %d", i)

		if opA.Kind != opO.Kind || opA.Key != opO.Key || !bytes.Equal(opA.Value, opO.Value) {
			differs = true
		}
	}
	require.True(t, differs, "different seeds produced the same sequence")
}

func TestGeneratorDrawsFromCorpus(t *testing.T) {
	c := DefaultCorpus()
	g := NewGenerator(42, c)

	keys := map[string]bool{}
	puts, dels := 0, 0
	for i := 0; i < 60000; i++ {
		op := g.Next()
		keys[op.Key] = true
		switch op.Kind {
		case OpPut:
			puts++
			require.NotNil(t, op.Value)
		case OpDelete:
			dels++
			require.Nil(t, op.Value)
		}
	}

	require.Len(t, keys, len(c.Keys))
	// five puts per delete, with generous slack
	ratio := float64(puts) / float64(dels)
	require.InDelta(t, 5.0, ratio, 0.5)
}

func TestOpString(t *testing.T) {
	require.Equal(t, `op = del, key = "a"`, Op{Kind: OpDelete, Key: "a"}.String())
	require.Equal(t, `op = put, key = "a", value = "x"`, Op{Kind: OpPut, Key: "a", Value: []byte("x")}.String())
}
