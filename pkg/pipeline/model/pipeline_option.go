package model

import "time"

// Timing is the time spent by a step on a single item.
type Timing struct {
	// Wait is the time spent waiting for the item and for the next step to accept the result.
	Wait time.Duration
	// Work is the time spent in the step function.
	Work time.Duration
}

// PipelineOption observes a pipeline. Hooks are called in the order the options were given to the pipeline.
type PipelineOption interface {
	// New runs when the pipeline is created.
	New() error
	// Register runs when step is added to the pipeline, reading from parent.
	Register(parent, step *StepInfo) error
	// Observe runs every time step is done with an item read from parent. It is called concurrently by the
	// workers of a step.
	Observe(parent, step *StepInfo, timing Timing) error
	// Drained runs when a sink has consumed its whole input, elapsed after the pipeline was created.
	Drained(sink *StepInfo, elapsed time.Duration) error
	// Finish runs once every step succeeded.
	Finish() error
}
