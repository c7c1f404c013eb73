package bagel_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/bagel"
	"github.com/askiada/procdash/pkg/pipeline/measure"
)

func TestParseImaging(t *testing.T) {
	t.Parallel()

	tbl := mustParse(t, imagingCSV, bagel.Imaging)

	assert.Equal(t, []string{"participant_id", "session", "pipeline_name", "pipeline_version", "pipeline_complete"}, tbl.Columns)
	require.Equal(t, 7, tbl.Len())
	assert.Equal(t, []string{"sub-03", "ses-02", "fmriprep", "20.2.7", "SUCCESS"}, tbl.Rows[6])
}

func TestParseNormalizesCells(t *testing.T) {
	t.Parallel()

	content := "\ufeff participant_id , session,pipeline_name,pipeline_version,pipeline_complete\n" +
		" sub-01 ,ses-01,fmriprep, 20.2.7 ,SUCCESS\n" +
		"\n" +
		",,,,\n" +
		"sub-02,ses-01,fmriprep,20.2.7,INCOMPLETE\n"

	tbl, err := bagel.Parse(context.Background(), strings.NewReader(content), "bagel.CSV", bagel.Imaging)
	require.NoError(t, err)

	want := [][]string{
		{"sub-01", "ses-01", "fmriprep", "20.2.7", "SUCCESS"},
		{"sub-02", "ses-01", "fmriprep", "20.2.7", "INCOMPLETE"},
	}
	assert.Equal(t, "participant_id", tbl.Columns[0])
	assert.Empty(t, cmp.Diff(want, tbl.Rows))
}

func TestParsePadsShortRows(t *testing.T) {
	t.Parallel()

	content := "participant_id,session,assessment_name,assessment_score,bids_id\n" +
		"sub-01,ses-01,moca,27\n"

	tbl := mustParse(t, content, bagel.Phenotypic)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"sub-01", "ses-01", "moca", "27", ""}, tbl.Rows[0])
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	header := "participant_id,session,pipeline_name,pipeline_version,pipeline_complete\n"

	tests := map[string]struct {
		filename string
		content  string
		want     string
	}{
		"not a csv": {
			filename: "bagel.tsv",
			content:  imagingCSV,
			want:     "Input file must be a CSV.",
		},
		"empty file": {
			filename: "bagel.csv",
			content:  "",
			want:     "The selected .csv is empty.",
		},
		"missing columns": {
			filename: "bagel.csv",
			content:  "participant_id,session,pipeline_name\nsub-01,ses-01,fmriprep\n",
			want:     "The selected .csv is missing the following required metadata columns: [pipeline_version pipeline_complete].",
		},
		"invalid statuses": {
			filename: "bagel.csv",
			content:  header + "sub-01,ses-01,fmriprep,20.2.7,DONE\nsub-01,ses-02,fmriprep,20.2.7,DONE\nsub-02,ses-01,fmriprep,20.2.7,\n",
			want:     "Pipeline status value(s) [DONE <empty>] are invalid. Permissible values are: [SUCCESS FAIL INCOMPLETE UNAVAILABLE].",
		},
		"duplicate records": {
			filename: "bagel.csv",
			content:  header + "sub-01,ses-01,fmriprep,20.2.7,SUCCESS\nsub-01,ses-01,fmriprep,20.2.7,FAIL\n",
			want:     "The selected .csv contains duplicate entries in the combination of: [participant_id session pipeline_name pipeline_version].",
		},
		"missing ids": {
			filename: "bagel.csv",
			content:  header + "sub-01,,fmriprep,20.2.7,SUCCESS\n",
			want:     "The selected .csv has 1 row(s) without a participant_id or session.",
		},
		"too many fields": {
			filename: "bagel.csv",
			content:  header + "sub-01,ses-01,fmriprep,20.2.7,SUCCESS\nsub-01,ses-02,fmriprep,20.2.7,SUCCESS,extra\n",
			want:     "Line 3 of the selected .csv has 6 fields but the header has 5 columns.",
		},
		"duplicate column": {
			filename: "bagel.csv",
			content:  "participant_id,session,session,pipeline_name,pipeline_version,pipeline_complete\n",
			want:     "The selected .csv has duplicate column names: [session].",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := bagel.Parse(context.Background(), strings.NewReader(tc.content), tc.filename, bagel.Imaging, bagel.WithConcurrency(2))
			require.Error(t, err)

			var vErr *bagel.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.want, vErr.Message)
		})
	}
}

func TestParseConcurrentKeepsOrder(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString("participant_id,session,pipeline_name,pipeline_version,pipeline_complete\n")

	for i := range 500 {
		fmt.Fprintf(&sb, "sub-%03d,ses-%02d,fmriprep,20.2.7,%s\n", i, i%3, bagel.Statuses()[i%4])
	}

	sequential, err := bagel.Parse(context.Background(), strings.NewReader(sb.String()), "bagel.csv", bagel.Imaging)
	require.NoError(t, err)

	rec := measure.NewRecorder()
	concurrent, err := bagel.Parse(context.Background(), strings.NewReader(sb.String()), "bagel.csv", bagel.Imaging,
		bagel.WithConcurrency(8), bagel.WithPipelineOptions(rec))
	require.NoError(t, err)

	assert.Equal(t, 500, concurrent.Len())
	assert.Empty(t, cmp.Diff(sequential, concurrent))
	normalize, ok := rec.Step("normalize")
	require.True(t, ok)
	assert.Equal(t, int64(500), normalize.Items)
	assert.Equal(t, 8, normalize.Workers)

	dropped, ok := rec.Step("drop empty")
	require.True(t, ok)
	assert.Equal(t, int64(500), dropped.Items)
	assert.Equal(t, 1, dropped.Workers)

	collect, _ := rec.Step("collect")
	assert.Equal(t, int64(500), collect.Items)
}

func TestParseCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bagel.Parse(ctx, strings.NewReader(imagingCSV), "bagel.csv", bagel.Imaging)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeDataURL(t *testing.T) {
	t.Parallel()

	encoded := "data:text/csv;base64," + base64.StdEncoding.EncodeToString([]byte(imagingCSV))

	got, err := bagel.DecodeDataURL(encoded)
	require.NoError(t, err)
	assert.Equal(t, imagingCSV, string(got))

	for _, bad := range []string{"", "text/csv;base64,abc", "data:text/csv,abc", "data:text/csv;base64,%%%"} {
		_, err = bagel.DecodeDataURL(bad)
		assert.ErrorIs(t, err, bagel.ErrInvalidDataURL, bad)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	_, err := bagel.Parse(context.Background(), strings.NewReader(imagingCSV), "bagel.txt", bagel.Imaging)
	assert.Equal(t, "Error: Input file must be a CSV. Please try again.", bagel.UserMessage(err))
	assert.Equal(t, "Error: Something went wrong while processing this file. Please try again.",
		bagel.UserMessage(errors.New("boom")))
	assert.Empty(t, bagel.UserMessage(nil))
}
