package pipeline

import (
	"context"

	"github.com/askiada/procdash/pkg/pipeline/model"
)

// AddRootStep adds the step producing the elements of the pipeline.
// stepFn must stop sending when ctx is done.
func AddRootStep[O any](p *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error, opts ...StepOption[O]) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := &model.Step[O]{
		Info:   &model.StepInfo{Kind: model.KindRoot, Name: name, Workers: 1},
		Output: make(chan O),
	}
	for _, opt := range opts {
		opt(step)
	}

	err := p.register(model.Start, step.Info)
	if err != nil {
		return nil, err
	}

	p.spawn(step.Info, func() error {
		return stepFn(p.ctx, step.Output)
	}, func() {
		close(step.Output)
	})

	return step, nil
}
