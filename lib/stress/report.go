package stress

import (
	"os"

	"github.com/ValentinKolb/infostress/lib/model"
	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Report is written to the report path when a run fails. It carries the
// complete data sets, unlike the console output which abbreviates them.
type Report struct {
	Step   int           `yaml:"step"`
	Seed   int64         `yaml:"seed"`
	Op     string        `yaml:"op,omitempty"`
	Error  string        `yaml:"error"`
	Reason string        `yaml:"reason,omitempty"`
	Key    string        `yaml:"key,omitempty"`
	Live   []ReportEntry `yaml:"live,omitempty"`
	Model  []ReportEntry `yaml:"model,omitempty"`
}

// ReportEntry is one key of a data set
type ReportEntry struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
	Size  int    `yaml:"size"`
}

// newReport builds the report for a failed step
func newReport(seed int64, stepErr *StepError) Report {
	r := Report{
		Step:  stepErr.Step,
		Seed:  seed,
		Error: stepErr.Err.Error(),
	}
	if stepErr.Op != nil {
		r.Op = stepErr.Op.String()
	}

	var div *model.DivergenceError
	if errors.As(stepErr.Err, &div) {
		r.Reason = div.Reason
		r.Key = div.Key
		r.Live = toReportEntries(div.Live)
		r.Model = toReportEntries(div.Model)
	}
	return r
}

func toReportEntries(kvs []common.KeyValue) []ReportEntry {
	entries := make([]ReportEntry, len(kvs))
	for i, kv := range kvs {
		entries[i] = ReportEntry{Key: kv.Key, Value: string(kv.Value), Size: len(kv.Value)}
	}
	return entries
}

// writeReport writes the report as YAML
func writeReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "encoding report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing report")
	}
	return nil
}
