package pipeline

import (
	"context"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/procdash/pkg/pipeline/model"
)

type stepRunner[I, O any] struct {
	pipe   *Pipeline
	input  *model.Step[I]
	output *model.Step[O]
	fn     func(context.Context, I) (O, error)
	// skipZero drops the outputs equal to the zero value of O.
	skipZero bool
}

func isZero[O any](out O) bool {
	return reflect.ValueOf(&out).Elem().IsZero()
}

func (r *stepRunner[I, O]) work(ctx context.Context, worker int) error {
	for {
		waitStart := time.Now()

		var in I
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "worker %d", worker)
		case item, ok := <-r.input.Output:
			if !ok {
				return nil
			}
			in = item
		}

		workStart := time.Now()
		out, err := r.fn(ctx, in)
		if err != nil {
			return errors.Wrapf(err, "worker %d", worker)
		}
		elapsed := time.Since(workStart)

		if r.skipZero && isZero(out) {
			continue
		}

		// a cancelled step must not hand more items to the next one
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "worker %d", worker)
		case r.output.Output <- out:
		}

		err = r.pipe.observe(r.input.Info, r.output.Info, model.Timing{
			Wait: time.Since(waitStart) - elapsed,
			Work: elapsed,
		})
		if err != nil {
			return err
		}
	}
}

func (r *stepRunner[I, O]) run(ctx context.Context) error {
	workers := 1
	if r.output.Info != nil {
		workers = max(workers, r.output.Info.Workers)
	}
	if workers == 1 {
		return r.work(ctx, 0)
	}

	// every worker stops on the first error
	errGrp, dCtx := errgroup.WithContext(ctx)
	for worker := range workers {
		errGrp.Go(func() error {
			return r.work(dCtx, worker)
		})
	}

	return errGrp.Wait()
}

func runOneToOne[I, O any](ctx context.Context, input *model.Step[I], output *model.Step[O], fn func(context.Context, I) (O, error), skipZero bool) error {
	r := &stepRunner[I, O]{input: input, output: output, fn: fn, skipZero: skipZero}

	return r.run(ctx)
}

func checkInput[I any](pipe *Pipeline, input *model.Step[I]) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}
	if input.Info == nil {
		input.Info = model.Start
	}

	return nil
}

func addStep[I, O any](pipe *Pipeline, name string, input *model.Step[I], fn func(context.Context, I) (O, error), skipZero bool, opts ...StepOption[O]) (*model.Step[O], error) {
	err := checkInput(pipe, input)
	if err != nil {
		return nil, err
	}

	step := &model.Step[O]{
		Info:   &model.StepInfo{Kind: model.KindStep, Name: name, Workers: 1},
		Output: make(chan O),
	}
	for _, opt := range opts {
		opt(step)
	}

	err = pipe.register(input.Info, step.Info)
	if err != nil {
		return nil, err
	}

	runner := &stepRunner[I, O]{pipe: pipe, input: input, output: step, fn: fn, skipZero: skipZero}
	pipe.spawn(step.Info, func() error {
		return runner.run(pipe.ctx)
	}, func() {
		close(step.Output)
	})

	return step, nil
}

// AddStepOneToOne adds a step sending one output for every input.
func AddStepOneToOne[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addStep(pipe, name, input, oneToOneFn, false, opts...)
}

// AddStepOneToOneOrZero adds a step sending one output for every input, except when the output is the zero value of O.
func AddStepOneToOneOrZero[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addStep(pipe, name, input, oneToOneFn, true, opts...)
}
