package dashboard

import (
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/askiada/procdash/pkg/bagel"
	"github.com/askiada/procdash/pkg/chart"
)

// Query selects the rows of a dataset displayed by the dashboard.
type Query struct {
	Filter bagel.Filter
	// ColumnFilters are the per-column text filters of the table.
	ColumnFilters map[string]string
	Sort          []bagel.SortKey
	// Page is 1-based.
	Page int
}

// View is a page of the overview of a dataset matching a query.
type View struct {
	Dataset *Dataset
	Query   Query
	Table   *bagel.Table
	Page    bagel.PageInfo

	MatchingParticipants int
	MatchingRecords      int
	TotalParticipants    int
	TotalRecords         int
	TotalColumns         int

	Summary         string
	Legend          []bagel.StatusDescription
	DisabledColumns []string
	PipelineOptions map[string][]string
}

// Counts describes how many participants and records match the query, one line each.
func (v *View) Counts() []string {
	return []string{
		"Participants matching filter: " + strconv.Itoa(v.MatchingParticipants),
		"Records matching filter: " + strconv.Itoa(v.MatchingRecords),
	}
}

// filtered applies the session and status filter only. An empty filter keeps the overview as is.
func filtered(ds *Dataset, f bagel.Filter) (*bagel.Table, error) {
	if f.IsEmpty() {
		return ds.Overview, nil
	}

	tbl, err := bagel.FilterRecords(ds.Overview, f)
	if err != nil {
		return nil, errors.Wrap(err, "unable to filter records")
	}

	return tbl, nil
}

// matching applies the dataset filter then the column filters of q.
func matching(ds *Dataset, q Query) (*bagel.Table, error) {
	tbl, err := filtered(ds, q.Filter)
	if err != nil {
		return nil, err
	}

	return bagel.ApplyColumnFilters(tbl, q.ColumnFilters, ds.DisabledColumns()), nil
}

func sorted(ds *Dataset, q Query) (*bagel.Table, error) {
	tbl, err := matching(ds, q)
	if err != nil {
		return nil, err
	}

	if len(q.Sort) == 0 {
		return tbl, nil
	}

	tbl, err = bagel.SortBy(tbl, q.Sort)
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort records")
	}

	return tbl, nil
}

// View returns the page of dataset id selected by q.
func (s *Service) View(id string, q Query) (*View, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	tbl, err := sorted(ds, q)
	if err != nil {
		return nil, err
	}

	page, info := bagel.Page(tbl, q.Page, s.pageSize)

	v := &View{
		Dataset:              ds,
		Query:                q,
		Table:                page,
		Page:                 info,
		MatchingParticipants: bagel.CountUniqueSubjects(tbl),
		MatchingRecords:      bagel.CountUniqueRecords(tbl),
		TotalParticipants:    bagel.CountUniqueSubjects(ds.Overview),
		TotalRecords:         bagel.CountUniqueRecords(ds.Overview),
		TotalColumns:         len(ds.Overview.Columns),
		Summary:              ds.Summary(),
		DisabledColumns:      ds.DisabledColumns(),
		PipelineOptions:      ds.PipelineOptions(),
	}
	if ds.Schema.HasStatuses() {
		v.Legend = bagel.StatusDescriptions
	}

	return v, nil
}

// Export writes every row of dataset id selected by q as CSV.
func (s *Service) Export(id string, q Query, w io.Writer) error {
	ds, err := s.Get(id)
	if err != nil {
		return err
	}

	tbl, err := sorted(ds, q)
	if err != nil {
		return err
	}

	return bagel.WriteCSV(w, tbl)
}

// ChartKind names a chart of the dashboard.
type ChartKind string

const (
	// ChartRecords counts the statuses of the records matching the query filter. Column filters of the table are ignored.
	ChartRecords ChartKind = "records"
	// ChartParticipants counts the statuses of every participant per session, ignoring the query.
	ChartParticipants ChartKind = "participants"
)

// Chart builds the chart of the given kind for dataset id.
func (s *Service) Chart(id string, kind ChartKind, q Query) (*chart.Chart, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !ds.HasCharts() {
		return nil, errors.Wrap(ErrNoChart, ds.Schema.Name)
	}

	switch kind {
	case ChartRecords:
		tbl, err := filtered(ds, q.Filter)
		if err != nil {
			return nil, err
		}

		counts := bagel.StatusCountsByRecords(tbl)
		if len(counts) == 0 {
			counts = bagel.EmptyStatusCounts(bagel.PipelineColumns(ds.Overview), ds.Schema.Statuses)
		}

		return chart.RecordsChart(counts), nil
	case ChartParticipants:
		return chart.ParticipantsChart(bagel.StatusCountsBySession(ds.Overview), ds.Sessions), nil
	default:
		return nil, errors.Wrapf(ErrUnknownChart, "%q", kind)
	}
}
