package dashboard

import (
	"time"

	"github.com/askiada/procdash/pkg/bagel"
)

// DefaultDatasetName is the name of datasets uploaded without one.
const DefaultDatasetName = "Dataset"

// Dataset is an uploaded bagel and the tables derived from it.
type Dataset struct {
	ID       string
	Name     string
	Filename string
	Schema   bagel.Schema
	// Records is the parsed bagel, one row per record and pipeline.
	Records   *bagel.Table
	Overview  *bagel.Table
	Pipelines []bagel.Pipeline
	Sessions  []string
	// UploadedAt is set by the service when the dataset is stored.
	UploadedAt time.Time
}

// HasCharts reports whether the dataset holds pipeline statuses that can be charted.
func (d *Dataset) HasCharts() bool {
	return d.Schema.HasStatuses()
}

// DisabledColumns returns the overview columns whose column filter is replaced by the dataset filter.
func (d *Dataset) DisabledColumns() []string {
	return append([]string{bagel.ColSession}, bagel.PipelineColumns(d.Overview)...)
}

// PipelineOptions maps every pipeline column to the statuses it can be filtered on. Datasets without statuses
// have no options.
func (d *Dataset) PipelineOptions() map[string][]string {
	res := map[string][]string{}
	if !d.Schema.HasStatuses() {
		return res
	}

	for _, col := range bagel.PipelineColumns(d.Overview) {
		res[col] = d.Schema.Statuses
	}

	return res
}

// Summary describes the size of the dataset.
func (d *Dataset) Summary() string {
	return bagel.SummaryString(d.Overview)
}

func renamed(name string) string {
	if name == "" {
		return DefaultDatasetName
	}

	return name
}
