package bagel_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/bagel"
)

func TestParseSortKeys(t *testing.T) {
	t.Parallel()

	got := bagel.ParseSortKeys("session, -participant_id,,")
	assert.Equal(t, []bagel.SortKey{
		{Column: "session"},
		{Column: "participant_id", Descending: true},
	}, got)
	assert.Equal(t, "-participant_id", got[1].String())
	assert.Empty(t, bagel.ParseSortKeys(""))
}

func TestSortBy(t *testing.T) {
	t.Parallel()

	overview := imagingOverview(t)

	got, err := bagel.SortBy(overview, bagel.ParseSortKeys("session,-participant_id"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-02/ses-01", "sub-01/ses-01", "sub-03/ses-02", "sub-01/ses-02"}, participantSessions(got))
	assert.Equal(t, "sub-01", overview.Rows[0][0])

	_, err = bagel.SortBy(overview, []bagel.SortKey{{Column: "unknown"}})
	assert.ErrorIs(t, err, bagel.ErrUnknownColumn)
}

func TestSortByNumbers(t *testing.T) {
	t.Parallel()

	tbl := bagel.NewTable([]string{"score"}, [][]string{{"9"}, {"10"}, {"n/a"}, {"2.5"}})

	got, err := bagel.SortBy(tbl, bagel.ParseSortKeys("score"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2.5", "9", "10", "n/a"}, got.Column("score"))
}

func TestSortByNonFiniteAsText(t *testing.T) {
	t.Parallel()

	tbl := bagel.NewTable([]string{"score"}, [][]string{{"inf"}, {"10"}, {"NaN"}, {"-Inf"}, {"2"}, {"Infinity"}})

	got, err := bagel.SortBy(tbl, bagel.ParseSortKeys("score"))
	require.NoError(t, err)
	assert.Equal(t, []string{"-Inf", "2", "10", "Infinity", "NaN", "inf"}, got.Column("score"))
}

func TestPage(t *testing.T) {
	t.Parallel()

	overview := imagingOverview(t)

	tests := map[string]struct {
		page, size int
		wantRows   int
		wantInfo   bagel.PageInfo
	}{
		"first page": {
			page: 1, size: 3,
			wantRows: 3,
			wantInfo: bagel.PageInfo{Page: 1, Size: 3, Pages: 2, Total: 4},
		},
		"last page": {
			page: 2, size: 3,
			wantRows: 1,
			wantInfo: bagel.PageInfo{Page: 2, Size: 3, Pages: 2, Total: 4},
		},
		"page out of range": {
			page: 7, size: 3,
			wantRows: 1,
			wantInfo: bagel.PageInfo{Page: 2, Size: 3, Pages: 2, Total: 4},
		},
		"default size": {
			page: 0, size: 0,
			wantRows: 4,
			wantInfo: bagel.PageInfo{Page: 1, Size: bagel.DefaultPageSize, Pages: 1, Total: 4},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, info := bagel.Page(overview, tc.page, tc.size)
			assert.Equal(t, tc.wantRows, got.Len())
			assert.Equal(t, tc.wantInfo, info)
		})
	}
}

func TestPageEmptyTable(t *testing.T) {
	t.Parallel()

	got, info := bagel.Page(bagel.NewTable([]string{"a"}, nil), 3, 10)
	assert.Zero(t, got.Len())
	assert.Equal(t, bagel.PageInfo{Page: 1, Size: 10, Pages: 1, Total: 0}, info)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tbl := bagel.NewTable([]string{"participant_id", "note"}, [][]string{{"sub-01", "a,b"}})

	require.NoError(t, bagel.WriteCSV(&buf, tbl))
	assert.Equal(t, "participant_id,note\nsub-01,\"a,b\"\n", buf.String())
}
