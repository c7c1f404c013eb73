package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/procdash/pkg/pipeline/model"
)

// Pipeline is a pipeline of steps.
type Pipeline struct {
	ctx       context.Context
	cancel    context.CancelFunc
	failures  *failures
	opts      []model.PipelineOption
	startTime time.Time
}

// New creates a new pipeline. Steps added to the pipeline stop when ctx is done.
func New(ctx context.Context, opts ...model.PipelineOption) (*Pipeline, error) {
	dCtx, cancel := context.WithCancel(ctx)
	pipe := &Pipeline{
		ctx:       dCtx,
		cancel:    cancel,
		failures:  newFailures(),
		startTime: time.Now(),
		opts:      opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			cancel()

			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

func (p *Pipeline) register(parent, step *model.StepInfo) error {
	for _, opt := range p.opts {
		err := opt.Register(parent, step)
		if err != nil {
			return errors.Wrapf(err, "unable to register step %s", step.Name)
		}
	}

	return nil
}

func (p *Pipeline) observe(parent, step *model.StepInfo, timing model.Timing) error {
	if p == nil {
		return nil
	}
	for _, opt := range p.opts {
		err := opt.Observe(parent, step, timing)
		if err != nil {
			return errors.Wrap(err, "unable to observe step")
		}
	}

	return nil
}

func (p *Pipeline) drained(sink *model.StepInfo) error {
	elapsed := time.Since(p.startTime)
	for _, opt := range p.opts {
		err := opt.Drained(sink, elapsed)
		if err != nil {
			return errors.Wrapf(err, "unable to drain sink %s", sink.Name)
		}
	}

	return nil
}

// spawn runs fn in its own goroutine and reports its error to Run. done runs once fn returned.
func (p *Pipeline) spawn(step *model.StepInfo, fn func() error, done func()) {
	p.failures.start()

	go func() {
		var err error
		defer func() { p.failures.stop(step, err) }()
		if done != nil {
			defer done()
		}

		err = fn()
	}()
}

// Run waits for every step of the pipeline to finish.
// It returns the first error encountered as a *StepError and cancels the remaining steps.
func (p *Pipeline) Run() error {
	defer p.cancel()

	err := p.failures.wait()
	if err != nil {
		return err
	}

	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
