package bagel

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Sessions returns the distinct sessions of t in order of first appearance.
func Sessions(t *Table) []string {
	return unique(t.Column(ColSession))
}

func unique(values []string) []string {
	res := []string{}
	seen := make(map[string]struct{}, len(values))

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}

	return res
}

// eventName joins the event cells of a row, e.g. "fmriprep-20.2.7".
func eventName(row []string, eventIdx []int) string {
	parts := make([]string, 0, len(eventIdx))
	for _, i := range eventIdx {
		if row[i] != "" {
			parts = append(parts, row[i])
		}
	}

	return strings.Join(parts, "-")
}

func compareRows(a, b []string) int {
	for i := range a {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}

	return 0
}

// Overview pivots a parsed bagel into a wide table with one row per participant-session record and one column
// per pipeline (or assessment). ID columns come first, followed by the event columns in name order. Rows are
// sorted by their ID columns. Records without a given event get the schema MissingValue.
func Overview(t *Table, schema Schema) (*Table, error) {
	if missing := schema.missingColumns(t); len(missing) > 0 {
		return nil, errors.Wrapf(ErrUnknownColumn, "missing columns %v", missing)
	}

	idCols := schema.idColumns(t)
	idIdx := t.indexes(idCols)
	eventIdx := t.indexes(schema.eventColumns(t))
	valueIdx := t.Index(schema.ValueColumn)

	type entry struct {
		ids    []string
		values map[string]string
	}

	entries := map[string]*entry{}
	order := []*entry{}
	events := map[string]struct{}{}

	for _, row := range t.Rows {
		ids := pick(row, idIdx)
		k := key(ids...)

		e, ok := entries[k]
		if !ok {
			e = &entry{ids: ids, values: map[string]string{}}
			entries[k] = e
			order = append(order, e)
		}

		name := eventName(row, eventIdx)
		e.values[name] = row[valueIdx]
		events[name] = struct{}{}
	}

	eventNames := make([]string, 0, len(events))
	for name := range events {
		eventNames = append(eventNames, name)
	}
	sort.Strings(eventNames)

	sort.SliceStable(order, func(i, j int) bool {
		return compareRows(order[i].ids, order[j].ids) < 0
	})

	columns := append(append([]string{}, idCols...), eventNames...)
	rows := make([][]string, len(order))

	for i, e := range order {
		row := make([]string, 0, len(columns))
		row = append(row, e.ids...)

		for _, name := range eventNames {
			v, ok := e.values[name]
			if !ok {
				v = schema.MissingValue
			}
			row = append(row, v)
		}

		rows[i] = row
	}

	return NewTable(columns, rows), nil
}

// Pipeline holds the records of a single pipeline (or assessment) of a bagel.
type Pipeline struct {
	Name    string
	Records *Table
}

// ExtractPipelines splits a parsed bagel by pipeline. Pipelines are sorted by name and their records lose the
// columns identifying the pipeline.
func ExtractPipelines(t *Table, schema Schema) []Pipeline {
	eventCols := schema.eventColumns(t)
	eventIdx := t.indexes(eventCols)

	groups := map[string][][]string{}
	for _, row := range t.Rows {
		name := eventName(row, eventIdx)
		groups[name] = append(groups[name], row)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]Pipeline, len(names))
	for i, name := range names {
		res[i] = Pipeline{
			Name:    name,
			Records: NewTable(t.Columns, groups[name]).Drop(eventCols...),
		}
	}

	return res
}

// PipelineNames returns the names of the pipelines.
func PipelineNames(pipelines []Pipeline) []string {
	res := make([]string, len(pipelines))
	for i, p := range pipelines {
		res[i] = p.Name
	}

	return res
}
