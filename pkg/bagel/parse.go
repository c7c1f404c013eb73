package bagel

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/procdash/pkg/pipeline"
	"github.com/askiada/procdash/pkg/pipeline/model"
)

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

type parseOptions struct {
	concurrency int
	pipeOpts    []model.PipelineOption
}

// WithConcurrency sets the number of goroutines normalizing rows.
func WithConcurrency(concurrent int) ParseOption {
	return func(o *parseOptions) {
		if concurrent > 0 {
			o.concurrency = concurrent
		}
	}
}

// WithPipelineOptions adds options, such as measure or drawer, to the ingest pipeline.
func WithPipelineOptions(opts ...model.PipelineOption) ParseOption {
	return func(o *parseOptions) {
		o.pipeOpts = append(o.pipeOpts, opts...)
	}
}

type record struct {
	line   int
	fields []string
}

// IsCSVFilename reports whether filename has a .csv extension.
func IsCSVFilename(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

// DecodeDataURL decodes the base64 payload of a "data:<mime type>;base64,<payload>" URL, the format browsers use
// to hand over the content of a selected file.
func DecodeDataURL(contents string) ([]byte, error) {
	header, payload, ok := strings.Cut(contents, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidDataURL, err.Error())
	}

	return data, nil
}

// Parse reads a bagel from r and validates it against schema. Every cell is kept as a trimmed string, fully empty
// lines are skipped and rows keep their order in the file.
//
// Problems with the content of the file are reported as *ValidationError.
func Parse(ctx context.Context, r io.Reader, filename string, schema Schema, opts ...ParseOption) (*Table, error) {
	if !IsCSVFilename(filename) {
		return nil, invalid("Input file must be a CSV.")
	}

	options := parseOptions{concurrency: 1}
	for _, opt := range opts {
		opt(&options)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("The selected .csv is empty.")
	}
	if err != nil {
		return nil, readError(err)
	}

	columns, err := normalizeHeader(header)
	if err != nil {
		return nil, err
	}

	if missing := schema.missingColumns(NewTable(columns, nil)); len(missing) > 0 {
		return nil, invalid("The selected .csv is missing the following required metadata columns: %v.", missing)
	}

	rows, err := readRows(ctx, reader, len(columns), options)
	if err != nil {
		return nil, err
	}

	tbl := NewTable(columns, rows)

	err = schema.validate(tbl)
	if err != nil {
		return nil, err
	}

	return tbl, nil
}

func readError(err error) error {
	var pErr *csv.ParseError
	if errors.As(err, &pErr) {
		return invalid("The selected .csv could not be read: %s.", pErr.Error())
	}

	return errors.Wrap(err, "unable to read csv")
}

func normalizeHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	duplicates := []string{}

	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}

		col = cleanCell(col)
		if col == "" {
			return nil, invalid("The selected .csv has an empty column name in position %d.", i+1)
		}

		if _, ok := seen[col]; ok {
			duplicates = append(duplicates, col)
		}

		seen[col] = struct{}{}
		columns[i] = col
	}

	if len(duplicates) > 0 {
		return nil, invalid("The selected .csv has duplicate column names: %v.", duplicates)
	}

	return columns, nil
}

func cleanCell(cell string) string {
	return strings.TrimSpace(strings.ReplaceAll(cell, "\x1f", ""))
}

// normalize trims the cells of rec and pads it to width.
func normalize(rec record, width int) (record, error) {
	if len(rec.fields) > width {
		return record{}, invalid("Line %d of the selected .csv has %d fields but the header has %d columns.",
			rec.line, len(rec.fields), width)
	}

	fields := make([]string, width)
	for i, cell := range rec.fields {
		fields[i] = cleanCell(cell)
	}

	return record{line: rec.line, fields: fields}, nil
}

// dropEmpty returns the zero record when every cell of rec is empty.
func dropEmpty(rec record) record {
	for _, cell := range rec.fields {
		if cell != "" {
			return rec
		}
	}

	return record{}
}

// readRows runs the ingest pipeline. Records are normalized concurrently, blank ones dropped, and the rest collected
// in file order.
func readRows(ctx context.Context, reader *csv.Reader, width int, options parseOptions) ([][]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipe, err := pipeline.New(ctx, options.pipeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create ingest pipeline")
	}

	records, err := pipeline.AddRootStep(pipe, "read records", func(ctx context.Context, out chan<- record) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			fields, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return readError(err)
			}

			line, _ := reader.FieldPos(0)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- record{line: line, fields: fields}:
			}
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to add read step")
	}

	normalized, err := pipeline.AddStepOneToOne(pipe, "normalize", records, func(_ context.Context, rec record) (record, error) {
		return normalize(rec, width)
	}, pipeline.StepConcurrency[record](options.concurrency))
	if err != nil {
		return nil, errors.Wrap(err, "unable to add normalize step")
	}

	kept, err := pipeline.AddStepOneToOneOrZero(pipe, "drop empty", normalized, func(_ context.Context, rec record) (record, error) {
		return dropEmpty(rec), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to add drop empty step")
	}

	collected := []record{}

	err = pipeline.AddSink(pipe, "collect", kept, func(_ context.Context, rec record) error {
		collected = append(collected, rec)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to add collect step")
	}

	err = pipe.Run()
	if err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].line < collected[j].line
	})

	rows := make([][]string, len(collected))
	for i, rec := range collected {
		rows[i] = rec.fields
	}

	return rows, nil
}

// validate checks the rows of a parsed bagel: every row has a participant and a session, values follow the
// schema statuses and no record is duplicated.
func (s Schema) validate(t *Table) error {
	participant, session := t.Index(ColParticipantID), t.Index(ColSession)
	missingIDs := 0

	for _, row := range t.Rows {
		if row[participant] == "" || row[session] == "" {
			missingIDs++
		}
	}

	if missingIDs > 0 {
		return invalid("The selected .csv has %d row(s) without a %s or %s.", missingIDs, ColParticipantID, ColSession)
	}

	if s.HasStatuses() {
		if bad := invalidValues(t.Column(s.ValueColumn), s.Statuses); len(bad) > 0 {
			return invalid("Pipeline status value(s) %v are invalid. Permissible values are: %v.", bad, s.Statuses)
		}
	}

	keyCols := append(s.idColumns(t), s.eventColumns(t)...)
	idx := t.indexes(keyCols)
	seen := make(map[string]struct{}, t.Len())

	for _, row := range t.Rows {
		k := key(pick(row, idx)...)
		if _, ok := seen[k]; ok {
			return invalid("The selected .csv contains duplicate entries in the combination of: %v.", keyCols)
		}
		seen[k] = struct{}{}
	}

	return nil
}

// invalidValues returns the distinct values not in allowed, in order of appearance.
func invalidValues(values, allowed []string) []string {
	ok := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		ok[v] = struct{}{}
	}

	bad := []string{}
	seen := map[string]struct{}{}

	for _, v := range values {
		if _, found := ok[v]; found {
			continue
		}
		if _, found := seen[v]; found {
			continue
		}
		seen[v] = struct{}{}

		if v == "" {
			v = "<empty>"
		}
		bad = append(bad, v)
	}

	return bad
}
