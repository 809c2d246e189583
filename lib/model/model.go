// Package model holds the reference model of the stress test: the key/value
// set the store is expected to contain after every operation.
package model

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/cockroachdb/errors"
)

// ErrDivergence marks every mismatch between a store snapshot and the model
var ErrDivergence = errors.New("store diverged from model")

// Model is the expected state of the store. It is owned by a single goroutine.
type Model struct {
	data map[string][]byte
}

// New creates an empty model
func New() *Model {
	return &Model{data: make(map[string][]byte)}
}

// Put sets or replaces the value of key. The value is copied.
func (m *Model) Put(key string, value []byte) {
	m.data[key] = append(make([]byte, 0, len(value)), value...)
}

// Delete removes key. Deleting a missing key does nothing.
func (m *Model) Delete(key string) {
	delete(m.data, key)
}

// Get returns the value of key and whether it exists
func (m *Model) Get(key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Len returns the number of keys
func (m *Model) Len() int {
	return len(m.data)
}

// Keys returns all keys in sorted order
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns all keys and values sorted by key
func (m *Model) Entries() []common.KeyValue {
	keys := m.Keys()
	entries := make([]common.KeyValue, len(keys))
	for i, k := range keys {
		entries[i] = common.KeyValue{Key: k, Value: m.data[k]}
	}
	return entries
}

// Format writes one "key = value" line per entry, sorted by key
func (m *Model) Format(w io.Writer) error {
	for _, k := range m.Keys() {
		if _, err := fmt.Fprintf(w, "   %s = %s\n",
			common.Abbrev([]byte(k), 80), common.Abbrev(m.data[k], 80)); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Comparison
// --------------------------------------------------------------------------

// DivergenceError describes the first mismatch found by Compare.
// Live and Model hold the complete data sets for diagnosis.
type DivergenceError struct {
	Reason string
	Key    string
	Live   []common.KeyValue
	Model  []common.KeyValue
}

func (e *DivergenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("divergence: %s (live=%d entries, model=%d entries)",
			e.Reason, len(e.Live), len(e.Model))
	}
	return fmt.Sprintf("divergence: %s for key %s (live=%d entries, model=%d entries)",
		e.Reason, common.Abbrev([]byte(e.Key), 32), len(e.Live), len(e.Model))
}

// Is lets errors.Is match ErrDivergence
func (e *DivergenceError) Is(target error) bool {
	return target == ErrDivergence
}

// Compare checks a store snapshot against the model. It returns nil only if
// the snapshot holds exactly the keys of the model, each once, with byte-equal
// values. Otherwise a *DivergenceError is returned.
func (m *Model) Compare(snapshot []common.KeyValue) error {
	diverged := func(reason, key string) error {
		return &DivergenceError{
			Reason: reason,
			Key:    key,
			Live:   snapshot,
			Model:  m.Entries(),
		}
	}

	if len(snapshot) != len(m.data) {
		return diverged(fmt.Sprintf("store has %d keys, model has %d", len(snapshot), len(m.data)), "")
	}

	seen := make(map[string]struct{}, len(snapshot))
	for _, kv := range snapshot {
		if _, dup := seen[kv.Key]; dup {
			return diverged("key reported twice", kv.Key)
		}
		seen[kv.Key] = struct{}{}

		expected, ok := m.data[kv.Key]
		if !ok {
			return diverged("key missing in model", kv.Key)
		}
		if !bytes.Equal(expected, kv.Value) {
			return diverged(fmt.Sprintf("value mismatch: store %s, model %s",
				common.Abbrev(kv.Value, 32), common.Abbrev(expected, 32)), kv.Key)
		}
	}
	return nil
}
