package web

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/internal/dashboard"
	"github.com/askiada/procdash/pkg/bagel"
)

func TestParseQuery(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("session=ses-01&session=+&operator=or&status.fmriprep-20.2.7=FAIL&status.freesurfer-7.3.2=" +
		"&filter.participant_id=sub&sort=-session,participant_id&page=3")
	require.NoError(t, err)

	got, err := parseQuery(values)
	require.NoError(t, err)

	assert.Equal(t, dashboard.Query{
		Filter: bagel.Filter{
			Sessions: []string{"ses-01"},
			Operator: bagel.OperatorOR,
			Statuses: map[string]string{"fmriprep-20.2.7": "FAIL"},
		},
		ColumnFilters: map[string]string{"participant_id": "sub"},
		Sort:          []bagel.SortKey{{Column: "session", Descending: true}, {Column: "participant_id"}},
		Page:          3,
	}, got)
}

func TestParseQueryDefaults(t *testing.T) {
	t.Parallel()

	got, err := parseQuery(url.Values{"page": {"two"}})
	require.NoError(t, err)
	assert.Equal(t, bagel.OperatorAND, got.Filter.Operator)
	assert.Equal(t, 1, got.Page)
	assert.True(t, got.Filter.IsEmpty())

	_, err = parseQuery(url.Values{"operator": {"NOR"}})
	assert.ErrorIs(t, err, bagel.ErrUnknownOperator)
}

func TestEncodeQueryRoundTrip(t *testing.T) {
	t.Parallel()

	q := dashboard.Query{
		Filter: bagel.Filter{
			Sessions: []string{"ses-01", "ses-02"},
			Operator: bagel.OperatorAND,
			Statuses: map[string]string{"fmriprep-20.2.7": "SUCCESS"},
		},
		ColumnFilters: map[string]string{"participant_id": "01"},
		Sort:          []bagel.SortKey{{Column: "session", Descending: true}},
		Page:          2,
	}

	got, err := parseQuery(encodeQuery(q))
	require.NoError(t, err)
	assert.Equal(t, q, got)

	assert.Equal(t, "/datasets/x", queryURL("/datasets/x", dashboard.Query{}))
}

func TestToggleSort(t *testing.T) {
	t.Parallel()

	keys := toggleSort(nil, "session")
	assert.Equal(t, []bagel.SortKey{{Column: "session"}}, keys)

	keys = toggleSort(keys, "session")
	assert.Equal(t, []bagel.SortKey{{Column: "session", Descending: true}}, keys)

	keys = toggleSort(keys, "participant_id")
	assert.Equal(t, []bagel.SortKey{{Column: "participant_id"}, {Column: "session", Descending: true}}, keys)
}
