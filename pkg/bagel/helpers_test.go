package bagel_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/bagel"
)

const imagingCSV = `participant_id,session,pipeline_name,pipeline_version,pipeline_complete
sub-01,ses-01,fmriprep,20.2.7,SUCCESS
sub-01,ses-01,freesurfer,7.3.2,FAIL
sub-01,ses-02,fmriprep,20.2.7,SUCCESS
sub-01,ses-02,freesurfer,7.3.2,SUCCESS
sub-02,ses-01,fmriprep,20.2.7,INCOMPLETE
sub-02,ses-01,freesurfer,7.3.2,SUCCESS
sub-03,ses-02,fmriprep,20.2.7,SUCCESS
`

const phenotypicCSV = `participant_id,session,assessment_name,assessment_score
sub-01,ses-01,moca,27
sub-01,ses-01,updrs,12
sub-02,ses-01,moca,30
`

const (
	fmriprep   = "fmriprep-20.2.7"
	freesurfer = "freesurfer-7.3.2"
)

func mustParse(t *testing.T, content string, schema bagel.Schema) *bagel.Table {
	t.Helper()

	tbl, err := bagel.Parse(context.Background(), strings.NewReader(content), "bagel.csv", schema)
	require.NoError(t, err)

	return tbl
}

func imagingOverview(t *testing.T) *bagel.Table {
	t.Helper()

	overview, err := bagel.Overview(mustParse(t, imagingCSV, bagel.Imaging), bagel.Imaging)
	require.NoError(t, err)

	return overview
}
