// Package stress implements the differential stress test for infod.
//
// A Driver applies a long, reproducible sequence of writes and deletes to a
// live store and to an in-memory model (see lib/model) at the same time.
// Every write is followed by a PING so the store is always in step with the
// model. At a fixed interval, and once more at the end, a complete snapshot
// of the store is read and compared with the model; the first mismatch stops
// the run.
//
// Operations are drawn from a fixed Corpus by a seeded Generator. For every
// step the generator draws the kind first, then the key and, for a write,
// the value, so a seed always yields the same sequence and a failing step
// can be replayed. The default corpus mixes tiny keys and values with ones
// that fill a frame completely.
//
// Diagnostics:
//
//   - A progress line on the configured output, overwritten in place
//   - On failure the step number and both data sets, abbreviated
//   - Optionally a YAML report with the complete data sets (Config.ReportPath)
//   - Optionally the run metrics in Prometheus text format (Config.MetricsPath)
//
// The driver can pause before a chosen step, print the model and the next
// operation and wait for the operator, which allows to inspect the store
// with other tools right before a failing step.
package stress
