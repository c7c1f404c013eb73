package pipeline

import "github.com/askiada/procdash/pkg/pipeline/model"

// StepOption configures a step when it is added to a pipeline.
type StepOption[O any] func(s *model.Step[O])

// StepConcurrency runs a step with workers goroutines reading its input. Output order is then not preserved.
func StepConcurrency[O any](workers int) StepOption[O] {
	return func(s *model.Step[O]) {
		if workers > 1 {
			s.Info.Workers = workers
		}
	}
}
