package chart_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/bagel"
	"github.com/askiada/procdash/pkg/chart"
)

var counts = []bagel.StatusCount{
	{Pipeline: "fmriprep-20.2.7", Status: bagel.StatusSuccess, Session: "ses-01", Count: 1},
	{Pipeline: "fmriprep-20.2.7", Status: bagel.StatusSuccess, Session: "ses-02", Count: 2},
	{Pipeline: "fmriprep-20.2.7", Status: bagel.StatusIncomplete, Session: "ses-01", Count: 1},
	{Pipeline: "freesurfer-7.3.2", Status: bagel.StatusFail, Session: "ses-01", Count: 1},
	{Pipeline: "freesurfer-7.3.2", Status: bagel.StatusUnavailable, Session: "ses-02", Count: 1},
}

func TestStatusColor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		status string
		want   string
	}{
		"success":     {status: bagel.StatusSuccess, want: "#24de8a"},
		"fail":        {status: bagel.StatusFail, want: "#d90202"},
		"incomplete":  {status: bagel.StatusIncomplete, want: "#f58f4c"},
		"unavailable": {status: bagel.StatusUnavailable, want: "#e3e3e3"},
		"unknown":     {status: "DONE", want: "#7f7f7f"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := chart.StatusColor(tc.status)
			require.NoError(t, err)
			assert.Equal(t, tc.want, strings.ToLower(got))
		})
	}
}

func TestRecordsChart(t *testing.T) {
	t.Parallel()

	c := chart.RecordsChart(counts)

	assert.Equal(t, chart.RecordsTitle, c.Title)
	require.Len(t, c.Groups, 1)
	require.Len(t, c.Groups[0].Bars, 2)
	assert.Equal(t, "fmriprep-20.2.7", c.Groups[0].Bars[0].Label)
	assert.Equal(t, []chart.Segment{
		{Status: bagel.StatusSuccess, Count: 3},
		{Status: bagel.StatusIncomplete, Count: 1},
	}, c.Groups[0].Bars[0].Segments)
	assert.Equal(t, 4, c.Groups[0].Bars[0].Total())
	assert.Equal(t, 4, c.MaxTotal())
}

func TestParticipantsChart(t *testing.T) {
	t.Parallel()

	c := chart.ParticipantsChart(counts, []string{"ses-01", "ses-02", "ses-03"})

	assert.Equal(t, chart.ParticipantsTitle, c.Title)
	require.Len(t, c.Groups, 3)
	assert.Equal(t, "ses-01", c.Groups[0].Label)
	assert.Len(t, c.Groups[0].Bars, 2)
	assert.Equal(t, []chart.Segment{{Status: bagel.StatusSuccess, Count: 2}}, c.Groups[1].Bars[0].Segments)
	assert.Empty(t, c.Groups[2].Bars)
	assert.Equal(t, 2, c.MaxTotal())
}

func TestWriteSVG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, chart.RecordsChart(counts).WriteSVG(&buf))

	got := strings.ToLower(buf.String())
	assert.True(t, strings.HasPrefix(got, "<svg "))
	assert.True(t, strings.HasSuffix(got, "</svg>\n"))
	assert.Contains(t, got, strings.ToLower(chart.RecordsTitle))
	assert.Contains(t, got, `fill="#24de8a"`)
	assert.Contains(t, got, `fill="#d90202"`)
	assert.Equal(t, 4, strings.Count(got, "<title>"))
	assert.Contains(t, got, "fmriprep-20.2.7 success: 3")
}

func TestWriteSVGEscapesLabels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := chart.RecordsChart([]bagel.StatusCount{{Pipeline: "a<b>&c", Status: bagel.StatusSuccess, Count: 1}})
	require.NoError(t, c.WriteSVG(&buf))

	assert.NotContains(t, buf.String(), "a<b>")
	assert.Contains(t, buf.String(), "a&lt;b&gt;&amp;c")
}

func TestWriteSVGEmptyCounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := chart.RecordsChart(bagel.EmptyStatusCounts([]string{"fmriprep-20.2.7"}, bagel.Statuses()))
	require.NoError(t, c.WriteSVG(&buf))

	assert.Equal(t, 0, c.MaxTotal())
	assert.NotContains(t, buf.String(), "<title>")
	assert.Contains(t, buf.String(), "fmriprep-20.2.7")
}
