package bagel_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/bagel"
)

func participantSessions(t *bagel.Table) []string {
	res := make([]string, t.Len())
	for i := range t.Rows {
		res[i] = t.Value(i, bagel.ColParticipantID) + "/" + t.Value(i, bagel.ColSession)
	}

	return res
}

func TestFilterRecords(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		filter bagel.Filter
		want   []string
	}{
		"no filter": {
			want: []string{"sub-01/ses-01", "sub-01/ses-02", "sub-02/ses-01", "sub-03/ses-02"},
		},
		"or single session": {
			filter: bagel.Filter{Sessions: []string{"ses-01"}, Operator: bagel.OperatorOR},
			want:   []string{"sub-01/ses-01", "sub-02/ses-01"},
		},
		"or session and status": {
			filter: bagel.Filter{
				Sessions: []string{"ses-01"},
				Operator: bagel.OperatorOR,
				Statuses: map[string]string{fmriprep: bagel.StatusSuccess},
			},
			want: []string{"sub-01/ses-01"},
		},
		"and every session": {
			filter: bagel.Filter{Sessions: []string{"ses-01", "ses-02"}, Operator: bagel.OperatorAND},
			want:   []string{"sub-01/ses-01", "sub-01/ses-02"},
		},
		"and with failing status in one session": {
			filter: bagel.Filter{
				Sessions: []string{"ses-01", "ses-02"},
				Operator: bagel.OperatorAND,
				Statuses: map[string]string{freesurfer: bagel.StatusSuccess},
			},
			want: []string{},
		},
		"and single session": {
			filter: bagel.Filter{
				Sessions: []string{"ses-02"},
				Operator: bagel.OperatorAND,
				Statuses: map[string]string{fmriprep: bagel.StatusSuccess},
			},
			want: []string{"sub-01/ses-02", "sub-03/ses-02"},
		},
		"statuses without sessions": {
			filter: bagel.Filter{
				Operator: bagel.OperatorAND,
				Statuses: map[string]string{fmriprep: bagel.StatusSuccess, freesurfer: ""},
			},
			want: []string{"sub-01/ses-01", "sub-01/ses-02", "sub-03/ses-02"},
		},
		"several statuses": {
			filter: bagel.Filter{
				Statuses: map[string]string{fmriprep: bagel.StatusSuccess, freesurfer: bagel.StatusUnavailable},
			},
			want: []string{"sub-03/ses-02"},
		},
		"unknown session": {
			filter: bagel.Filter{Sessions: []string{"ses-09"}, Operator: bagel.OperatorOR},
			want:   []string{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			overview := imagingOverview(t)
			before := participantSessions(overview)

			got, err := bagel.FilterRecords(overview, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, participantSessions(got))
			assert.Equal(t, overview.Columns, got.Columns)
			assert.Equal(t, before, participantSessions(overview))
		})
	}
}

func TestFilterRecordsErrors(t *testing.T) {
	t.Parallel()

	overview := imagingOverview(t)

	_, err := bagel.FilterRecords(overview, bagel.Filter{Statuses: map[string]string{"mriqc-1.0": bagel.StatusFail}})
	assert.ErrorIs(t, err, bagel.ErrUnknownColumn)

	_, err = bagel.FilterRecords(overview, bagel.Filter{Sessions: []string{"ses-01"}, Operator: "XOR"})
	assert.ErrorIs(t, err, bagel.ErrUnknownOperator)

	_, err = bagel.FilterRecords(bagel.NewTable([]string{"session"}, nil), bagel.Filter{})
	assert.ErrorIs(t, err, bagel.ErrUnknownColumn)
}

func TestFilterIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, bagel.Filter{}.IsEmpty())
	assert.True(t, bagel.Filter{Operator: bagel.OperatorOR, Statuses: map[string]string{fmriprep: ""}}.IsEmpty())
	assert.False(t, bagel.Filter{Sessions: []string{"ses-01"}}.IsEmpty())
	assert.False(t, bagel.Filter{Statuses: map[string]string{fmriprep: bagel.StatusFail}}.IsEmpty())
}

func TestParseOperator(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in      string
		want    bagel.Operator
		wantErr error
	}{
		"empty":      {in: "", want: bagel.OperatorAND},
		"and":        {in: "AND", want: bagel.OperatorAND},
		"lower or":   {in: " or ", want: bagel.OperatorOR},
		"unknown op": {in: "xor", wantErr: bagel.ErrUnknownOperator},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := bagel.ParseOperator(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyColumnFilters(t *testing.T) {
	t.Parallel()

	overview := imagingOverview(t)
	disabled := append([]string{bagel.ColSession}, bagel.PipelineColumns(overview)...)

	got := bagel.ApplyColumnFilters(overview, map[string]string{bagel.ColParticipantID: "01"}, disabled)
	assert.Equal(t, []string{"sub-01/ses-01", "sub-01/ses-02"}, participantSessions(got))

	got = bagel.ApplyColumnFilters(overview, map[string]string{
		bagel.ColSession:       "ses-02",
		fmriprep:               "INCOMPLETE",
		"unknown":              "x",
		bagel.ColParticipantID: " ",
	}, disabled)
	assert.Equal(t, 4, got.Len())

	got = bagel.ApplyColumnFilters(overview, map[string]string{fmriprep: "INCOMPLETE"}, nil)
	assert.Equal(t, []string{"sub-02/ses-01"}, participantSessions(got))
}

func cloneTable(t *bagel.Table) *bagel.Table {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}

	return bagel.NewTable(append([]string(nil), t.Columns...), rows)
}

func TestTableOperationsKeepInput(t *testing.T) {
	t.Parallel()

	overview := imagingOverview(t)
	want := cloneTable(overview)

	filtered, err := bagel.FilterRecords(overview, bagel.Filter{
		Sessions: []string{"ses-01", "ses-02"},
		Operator: bagel.OperatorAND,
		Statuses: map[string]string{fmriprep: bagel.StatusSuccess},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"sub-01/ses-01", "sub-01/ses-02"}, participantSessions(filtered))

	_ = bagel.ApplyColumnFilters(overview, map[string]string{bagel.ColParticipantID: "02"}, nil)

	sorted, err := bagel.SortBy(overview, bagel.ParseSortKeys("-participant_id,session"))
	require.NoError(t, err)
	require.Equal(t, "sub-03", sorted.Value(0, bagel.ColParticipantID))

	page, _ := bagel.Page(overview, 2, 3)
	require.Equal(t, 1, page.Len())

	assert.Empty(t, cmp.Diff(want, overview))
}
