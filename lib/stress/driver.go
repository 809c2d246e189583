package stress

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ValentinKolb/infostress/lib/model"
	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("stress")

const (
	DefaultSeed          = 0
	DefaultSteps         = 1000000
	DefaultCheckInterval = 10000
	// NoPause disables the interactive pause
	NoPause = -1
)

// IInfoClient is the part of the protocol client the driver needs
type IInfoClient interface {
	Write(key string, value []byte) error
	Delete(key string) error
	Ping() error
	All() ([]common.KeyValue, error)
}

// Config holds the parameters of a stress run
type Config struct {
	Seed          int64
	Steps         int
	CheckInterval int
	// PauseAt is the step before which the run stops for inspection, NoPause disables it
	PauseAt int
	Corpus  Corpus

	// Out receives progress and diagnostics, In the acknowledgment after a pause
	Out io.Writer
	In  io.Reader

	// ReportPath, if set, receives a YAML report when the run fails
	ReportPath string
	// MetricsPath, if set, receives the run metrics in Prometheus text format
	MetricsPath string
}

// DefaultConfig returns the standard run: one million steps with a full
// comparison every ten thousand steps
func DefaultConfig() Config {
	return Config{
		Seed:          DefaultSeed,
		Steps:         DefaultSteps,
		CheckInterval: DefaultCheckInterval,
		PauseAt:       NoPause,
		Corpus:        DefaultCorpus(),
		Out:           os.Stdout,
		In:            os.Stdin,
	}
}

// StepError is returned for any failure during a run. Step is the index of
// the step being executed, Op the operation drawn for it (nil for the
// initial reset and the final comparison).
type StepError struct {
	Step int
	Op   *Op
	Err  error
}

func (e *StepError) Error() string {
	if e.Op == nil {
		return fmt.Sprintf("step %d: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Driver applies generated operations to the store and to the reference
// model and compares both at fixed intervals
type Driver struct {
	client    IInfoClient
	config    Config
	model     *model.Model
	generator *Generator
	metrics   *runMetrics
	in        *bufio.Reader
}

// NewDriver creates a driver for an already connected client
func NewDriver(client IInfoClient, config Config) (*Driver, error) {
	if config.Steps < 0 {
		return nil, errors.Newf("steps must not be negative, got %d", config.Steps)
	}
	if config.CheckInterval <= 0 {
		return nil, errors.Newf("check interval must be positive, got %d", config.CheckInterval)
	}
	if err := config.Corpus.Validate(); err != nil {
		return nil, err
	}
	if config.Out == nil {
		config.Out = io.Discard
	}
	if config.In == nil {
		config.In = os.Stdin
	}

	m := model.New()
	return &Driver{
		client:    client,
		config:    config,
		model:     m,
		generator: NewGenerator(config.Seed, config.Corpus),
		metrics:   newRunMetrics(m),
		in:        bufio.NewReader(config.In),
	}, nil
}

// Model returns the reference model
func (d *Driver) Model() *model.Model {
	return d.model
}

// Run empties the store, executes all steps and performs the final comparison.
// It stops at the first failure and returns it as *StepError.
// The context is checked between steps.
func (d *Driver) Run(ctx context.Context) error {
	defer d.finish()

	out := d.config.Out

	fmt.Fprintln(out, "deleting existing keys")
	if err := d.reset(); err != nil {
		return d.fail(&StepError{Step: 0, Err: errors.Wrap(err, "reset")})
	}

	fmt.Fprintln(out, "exercising")
	Logger.Infof("running %d steps with seed %d, checking every %d steps",
		d.config.Steps, d.config.Seed, d.config.CheckInterval)

	for x := 0; x < d.config.Steps; x++ {
		if err := ctx.Err(); err != nil {
			return d.fail(&StepError{Step: x, Err: err})
		}

		op := d.generator.Next()

		if x == d.config.PauseAt {
			if err := d.pause(x, op); err != nil {
				return d.fail(&StepError{Step: x, Op: &op, Err: err})
			}
		}

		if x%d.config.CheckInterval == 0 {
			fmt.Fprintf(out, "%3d%% %8.0f ops/s\r", x*100/d.config.Steps, d.metrics.opsPerSecond())
			if err := d.check(); err != nil {
				return d.fail(&StepError{Step: x, Op: &op, Err: err})
			}
		}

		if err := d.apply(op); err != nil {
			return d.fail(&StepError{Step: x, Op: &op, Err: err})
		}
	}

	// Final check that the model and the store agree
	if err := d.check(); err != nil {
		return d.fail(&StepError{Step: d.config.Steps, Err: err})
	}

	fmt.Fprintln(out, "100% no errors detected")
	Logger.Infof("completed %d steps, %d keys in store", d.config.Steps, d.model.Len())
	Logger.Infof("write payloads: average %d bytes, 90%% up to %d bytes",
		d.metrics.sizes.average(), d.metrics.sizes.percentile(90))
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// reset deletes every key in the store and verifies the store is empty
func (d *Driver) reset() error {
	entries, err := d.client.All()
	if err != nil {
		return err
	}
	for _, kv := range entries {
		if err := d.client.Delete(kv.Key); err != nil {
			return err
		}
	}
	if err := d.client.Ping(); err != nil {
		return err
	}
	Logger.Infof("deleted %d existing keys", len(entries))
	return d.check()
}

// apply performs op on the store and the model, then waits until the store
// has processed it
func (d *Driver) apply(op Op) error {
	start := time.Now()

	switch op.Kind {
	case OpPut:
		if err := d.client.Write(op.Key, op.Value); err != nil {
			return err
		}
		d.model.Put(op.Key, op.Value)
	case OpDelete:
		if err := d.client.Delete(op.Key); err != nil {
			return err
		}
		d.model.Delete(op.Key)
	default:
		return errors.AssertionFailedf("unknown op kind %d", op.Kind)
	}

	// Synchronize, otherwise the unanswered writes fill up the socket buffer
	if err := d.client.Ping(); err != nil {
		return err
	}
	d.metrics.recordOp(op, start)
	return nil
}

// check compares a full snapshot of the store with the model
func (d *Driver) check() error {
	start := time.Now()
	snapshot, err := d.client.All()
	if err != nil {
		return err
	}
	if err := d.model.Compare(snapshot); err != nil {
		return err
	}
	d.metrics.recordCheck(start)
	return nil
}

// pause prints the model and the next operation and waits for the operator
func (d *Driver) pause(x int, op Op) error {
	out := d.config.Out
	fmt.Fprintf(out, "pausing at x = %d\n", x)
	fmt.Fprintln(out, "sim:")
	if err := d.model.Format(out); err != nil {
		return err
	}
	fmt.Fprintf(out, "next %s\n", op)
	fmt.Fprintf(out, "paused at %d; press enter to continue:", x)

	if _, err := d.in.ReadString('\n'); err != nil && err != io.EOF {
		return errors.Wrap(err, "waiting for operator")
	}
	return nil
}

// fail reports a failed step and returns it
func (d *Driver) fail(stepErr *StepError) error {
	out := d.config.Out
	fmt.Fprintf(out, "\nexception at x = %d\n", stepErr.Step)
	Logger.Errorf("%v", stepErr)

	var div *model.DivergenceError
	if errors.As(stepErr.Err, &div) {
		printEntries(out, "live", div.Live)
		printEntries(out, "sim", div.Model)
	}

	if d.config.ReportPath != "" {
		if err := writeReport(d.config.ReportPath, newReport(d.config.Seed, stepErr)); err != nil {
			Logger.Errorf("failed to write report: %v", err)
		} else {
			fmt.Fprintf(out, "report written to %s\n", d.config.ReportPath)
		}
	}
	return stepErr
}

// finish releases run resources and exports the metrics
func (d *Driver) finish() {
	if d.config.MetricsPath != "" {
		if err := d.metrics.writeFile(d.config.MetricsPath); err != nil {
			Logger.Errorf("failed to write metrics: %v", err)
		}
	}
	d.metrics.stop()
}

func printEntries(out io.Writer, name string, entries []common.KeyValue) {
	fmt.Fprintf(out, "%s (%d entries):\n", name, len(entries))
	for _, kv := range entries {
		fmt.Fprintf(out, "   %s = %s\n", common.Abbrev([]byte(kv.Key), 80), common.Abbrev(kv.Value, 80))
	}
}
