package bagel

import (
	"strings"

	"github.com/pkg/errors"
)

// Column names used by the bagel schemas.
const (
	ColParticipantID     = "participant_id"
	ColBIDSID            = "bids_id"
	ColSession           = "session"
	ColHasMRIData        = "has_mri_data"
	ColPipelineName      = "pipeline_name"
	ColPipelineVersion   = "pipeline_version"
	ColPipelineStartTime = "pipeline_starttime"
	ColPipelineComplete  = "pipeline_complete"
	ColAssessmentName    = "assessment_name"
	ColAssessmentVersion = "assessment_version"
	ColAssessmentScore   = "assessment_score"
)

// Pipeline processing statuses of the imaging schema.
const (
	StatusSuccess     = "SUCCESS"
	StatusFail        = "FAIL"
	StatusIncomplete  = "INCOMPLETE"
	StatusUnavailable = "UNAVAILABLE"
)

// StatusDescription is a status and its short description, as displayed in the legend.
type StatusDescription struct {
	Status      string
	Description string
}

// StatusDescriptions lists the pipeline statuses in legend order.
var StatusDescriptions = []StatusDescription{
	{Status: StatusSuccess, Description: "All expected output files of pipeline are present."},
	{Status: StatusFail, Description: "At least one expected output of pipeline is not present."},
	{Status: StatusIncomplete, Description: "Pipeline has not yet been run (output directory not available)."},
	{Status: StatusUnavailable, Description: "Relevant MRI modality for pipeline not available."},
}

// Statuses returns the permissible pipeline statuses in legend order.
func Statuses() []string {
	res := make([]string, len(StatusDescriptions))
	for i, desc := range StatusDescriptions {
		res[i] = desc.Status
	}

	return res
}

// Schema names accepted by SchemaByName.
const (
	SchemaImaging    = "imaging"
	SchemaPhenotypic = "phenotypic"
)

// Schema describes the columns of a bagel and how it pivots into an overview.
type Schema struct {
	Name     string
	Required []string
	Optional []string
	// IDColumns identify a participant-session record, in overview order.
	IDColumns []string
	// EventColumns identify a pipeline or an assessment. The overview column name joins them with "-".
	EventColumns []string
	// ValueColumn holds the overview cell values.
	ValueColumn string
	// Statuses are the permissible values of ValueColumn. Nil means free-form values.
	Statuses []string
	// MissingValue fills the overview cells of records without the event.
	MissingValue string
}

var (
	// Imaging is the schema of bagels describing pipeline processing statuses.
	Imaging = Schema{
		Name:         SchemaImaging,
		Required:     []string{ColParticipantID, ColSession, ColPipelineName, ColPipelineVersion, ColPipelineComplete},
		Optional:     []string{ColBIDSID, ColHasMRIData, ColPipelineStartTime},
		IDColumns:    []string{ColParticipantID, ColBIDSID, ColSession, ColHasMRIData},
		EventColumns: []string{ColPipelineName, ColPipelineVersion},
		ValueColumn:  ColPipelineComplete,
		Statuses:     Statuses(),
		MissingValue: StatusUnavailable,
	}

	// Phenotypic is the schema of bagels describing assessment scores.
	Phenotypic = Schema{
		Name:         SchemaPhenotypic,
		Required:     []string{ColParticipantID, ColSession, ColAssessmentName, ColAssessmentScore},
		Optional:     []string{ColBIDSID, ColAssessmentVersion},
		IDColumns:    []string{ColParticipantID, ColBIDSID, ColSession},
		EventColumns: []string{ColAssessmentName, ColAssessmentVersion},
		ValueColumn:  ColAssessmentScore,
	}
)

// SchemaByName returns the schema called name, ignoring case.
func SchemaByName(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SchemaImaging:
		return Imaging, nil
	case SchemaPhenotypic:
		return Phenotypic, nil
	default:
		return Schema{}, errors.Wrapf(ErrUnknownSchema, "%q", name)
	}
}

// HasStatuses reports whether the schema restricts its values to pipeline statuses.
func (s Schema) HasStatuses() bool {
	return len(s.Statuses) > 0
}

func (s Schema) missingColumns(t *Table) []string {
	missing := []string{}

	for _, col := range s.Required {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}

	return missing
}

func present(t *Table, cols []string) []string {
	res := make([]string, 0, len(cols))

	for _, col := range cols {
		if t.Has(col) {
			res = append(res, col)
		}
	}

	return res
}

// idColumns returns the ID columns of the schema found in t.
func (s Schema) idColumns(t *Table) []string {
	return present(t, s.IDColumns)
}

// eventColumns returns the event columns of the schema found in t.
func (s Schema) eventColumns(t *Table) []string {
	return present(t, s.EventColumns)
}

// LegendString formats one "STATUS: description" line per status.
func LegendString(descs []StatusDescription) string {
	lines := make([]string, len(descs))
	for i, desc := range descs {
		lines[i] = desc.Status + ": " + desc.Description
	}

	return strings.Join(lines, "\n")
}
