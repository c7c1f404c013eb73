package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/procdash/pkg/pipeline/measure"
	"github.com/askiada/procdash/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	rec       *measure.Recorder
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	pd.startTime = time.Now()

	for _, step := range []*model.StepInfo{model.Start, model.End} {
		err := pd.AddStep(step.Name)
		if err != nil {
			return errors.Wrapf(err, "unable to add %s step to drawer", step.Name)
		}
	}

	return nil
}

func (pd *pipelineDrawer) Register(parent, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}

	err = pd.AddLink(parent.Name, step.Name)
	if err != nil {
		return err
	}

	if step.Kind == model.KindSink {
		return pd.AddLink(step.Name, model.End.Name)
	}

	return nil
}

func (pd *pipelineDrawer) Observe(_, _ *model.StepInfo, _ model.Timing) error {
	return nil
}

func (pd *pipelineDrawer) Drained(_ *model.StepInfo, _ time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.SetTotalTime(model.End.Name, pd.startTime)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.rec != nil {
		err = pd.AddMeasure(pd.rec.Steps())
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	return errors.Wrap(pd.Draw(), "unable to draw pipeline")
}

// PipelineDrawer returns a pipeline option drawing the pipeline with drawer once it is finished.
// When rec is not nil, steps and links are labelled with its timings. Options run in order, so rec must be
// given to the pipeline before this option.
func PipelineDrawer(drawer Drawer, rec *measure.Recorder) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, rec: rec}
}
