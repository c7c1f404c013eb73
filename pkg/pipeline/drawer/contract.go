package drawer

import (
	"time"

	"github.com/askiada/procdash/pkg/pipeline/measure"
)

// Drawer draws the graph of a pipeline.
type Drawer interface {
	AddStep(stepname string) error
	// AddLink adds a link from a step to the step reading its output.
	AddLink(parentStepName, childrenStepName string) error
	Draw() error
	// SetTotalTime labels a step with the time elapsed since startTime.
	SetTotalTime(stepName string, startTime time.Time) error
	// AddMeasure labels the steps and links with their recorded timings.
	AddMeasure(steps []measure.StepStats) error
}
