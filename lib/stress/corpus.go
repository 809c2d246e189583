package stress

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// OpKind is the kind of a mutating operation
type OpKind uint8

const (
	OpPut OpKind = iota
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpPut:
		return "put"
	case OpDelete:
		return "del"
	default:
		return "unknown"
	}
}

// Op is one generated step. Value is nil for deletes.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

func (o Op) String() string {
	if o.Kind == OpDelete {
		return fmt.Sprintf("op = %s, key = %s", o.Kind, common.Abbrev([]byte(o.Key), 40))
	}
	return fmt.Sprintf("op = %s, key = %s, value = %s",
		o.Kind, common.Abbrev([]byte(o.Key), 40), common.Abbrev(o.Value, 40))
}

// --------------------------------------------------------------------------
// Corpus
// --------------------------------------------------------------------------

// Corpus is the fixed material operations are drawn from
type Corpus struct {
	Keys   []string
	Values [][]byte
	// Ops is drawn from uniformly, so repeating a kind weights it
	Ops []OpKind
}

// DefaultCorpus returns the standard corpus.
//
// Key and value sizes range from one byte to tens of kilobytes. A frame holds
// at most 64kB of key and value, so both stay below 32kB, except for the
// largest value which is sized to fill a frame together with the largest key.
// The store uses 4kB pages and 8 byte alignment; the lengths are chosen so
// their combinations straddle those boundaries.
func DefaultCorpus() Corpus {
	return Corpus{
		Keys: []string{
			"a", "b", "aa", "foo", "bar", "999999999",
			"this is a relatively short key",
			"this key is so long that you think it will never end but actually it does " +
				"but it just takes a really long time but it turns out to be much longer " +
				"than you expected, unless of course youve already looked at the key and " +
				"you know exactly how long it is, or you have an idea to expect that when " +
				"a key is describing itself as really long then it will probably will be",
			strings.Repeat("K", 30000),
		},
		Values: [][]byte{
			[]byte(""),
			[]byte("x"),
			[]byte("xx"),
			[]byte("xxx"),
			[]byte("999999999"),
			[]byte("supercalafragilisticexpialadocious"),
			[]byte("qwertyuiopasdfghjklzxcvbnm1234567890-=[];,./MNBVCXZLKJHGFDSAPOIUYTREWQ"),
			[]byte(strings.Repeat("V", 65534-30000)),
		},
		Ops: []OpKind{OpPut, OpPut, OpPut, OpPut, OpPut, OpDelete},
	}
}

// Validate checks that every key is encodable and every key/value
// combination fits into a single frame
func (c Corpus) Validate() error {
	if len(c.Keys) == 0 || len(c.Values) == 0 || len(c.Ops) == 0 {
		return errors.New("corpus needs at least one key, value and op")
	}
	maxValue := 0
	for _, v := range c.Values {
		if len(v) > maxValue {
			maxValue = len(v)
		}
	}
	for _, k := range c.Keys {
		if !common.ValidKey(k) {
			return errors.Newf("corpus key %s is not encodable", common.Abbrev([]byte(k), 32))
		}
		if size := len(k) + 1 + maxValue; size > common.MaxPayload {
			return errors.Newf("corpus key %s with largest value needs %d bytes, limit is %d",
				common.Abbrev([]byte(k), 32), size, common.MaxPayload)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Generator
// --------------------------------------------------------------------------

// Generator draws a reproducible sequence of operations from a corpus.
// The same seed and corpus always yield the same sequence.
type Generator struct {
	rng    *rand.Rand
	corpus Corpus
}

// NewGenerator creates a generator seeded with seed
func NewGenerator(seed int64, corpus Corpus) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		corpus: corpus,
	}
}

// Next draws the next operation: first the kind, then the key, then the
// value if the operation is a put
func (g *Generator) Next() Op {
	op := Op{Kind: g.corpus.Ops[g.rng.Intn(len(g.corpus.Ops))]}
	op.Key = g.corpus.Keys[g.rng.Intn(len(g.corpus.Keys))]
	if op.Kind == OpPut {
		op.Value = g.corpus.Values[g.rng.Intn(len(g.corpus.Values))]
	}
	return op
}
