package pipeline

import (
	"context"
	"time"

	"github.com/askiada/procdash/pkg/pipeline/model"
)

// AddSink adds the last step of the pipeline. sinkFn is called sequentially for every element of input.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	err := checkInput(pipe, input)
	if err != nil {
		return err
	}

	sink := &model.StepInfo{Kind: model.KindSink, Name: name, Workers: 1}

	err = pipe.register(input.Info, sink)
	if err != nil {
		return err
	}

	pipe.spawn(sink, func() error {
		err := consume(pipe, input, sink, sinkFn)
		if err != nil {
			return err
		}

		return pipe.drained(sink)
	}, nil)

	return nil
}

func consume[I any](pipe *Pipeline, input *model.Step[I], sink *model.StepInfo, sinkFn func(ctx context.Context, input I) error) error {
	for {
		waitStart := time.Now()
		select {
		case <-pipe.ctx.Done():
			return pipe.ctx.Err()
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}
			wait := time.Since(waitStart)

			workStart := time.Now()
			err := sinkFn(pipe.ctx, in)
			if err != nil {
				return err
			}

			err = pipe.observe(input.Info, sink, model.Timing{Wait: wait, Work: time.Since(workStart)})
			if err != nil {
				return err
			}
		}
	}
}
