package bagel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/bagel"
)

func TestSchemaByName(t *testing.T) {
	t.Parallel()

	schema, err := bagel.SchemaByName(" Imaging ")
	require.NoError(t, err)
	assert.Equal(t, bagel.SchemaImaging, schema.Name)
	assert.True(t, schema.HasStatuses())

	schema, err = bagel.SchemaByName("phenotypic")
	require.NoError(t, err)
	assert.False(t, schema.HasStatuses())

	_, err = bagel.SchemaByName("genomic")
	assert.ErrorIs(t, err, bagel.ErrUnknownSchema)
}

func TestStatuses(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"SUCCESS", "FAIL", "INCOMPLETE", "UNAVAILABLE"}, bagel.Statuses())
}

func TestLegendString(t *testing.T) {
	t.Parallel()

	got := bagel.LegendString(bagel.StatusDescriptions[:2])
	assert.Equal(t, "SUCCESS: All expected output files of pipeline are present.\n"+
		"FAIL: At least one expected output of pipeline is not present.", got)
	assert.Empty(t, bagel.LegendString(nil))
}
