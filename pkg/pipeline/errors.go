package pipeline

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/procdash/pkg/pipeline/model"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrInputMustBeSet    = errors.New("input must be set")
)

// StepError is the error a step of the pipeline stopped with.
type StepError struct {
	Step *model.StepInfo
	Err  error
}

func (e *StepError) Error() string {
	return e.Step.Name + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// failures tracks the running steps of a pipeline and keeps the first error one of them returned.
type failures struct {
	running sync.WaitGroup
	first   chan *StepError
}

func newFailures() *failures {
	return &failures{first: make(chan *StepError, 1)}
}

func (f *failures) start() {
	f.running.Add(1)
}

// stop marks a step as returned. Errors after the first one are dropped.
func (f *failures) stop(step *model.StepInfo, err error) {
	defer f.running.Done()

	if err == nil {
		return
	}

	select {
	case f.first <- &StepError{Step: step, Err: err}:
	default:
	}
}

// wait blocks until a step fails or every step returned.
func (f *failures) wait() error {
	done := make(chan struct{})
	go func() {
		f.running.Wait()
		close(done)
	}()

	select {
	case err := <-f.first:
		return err
	case <-done:
	}

	// a step can fail right before the last one returns
	select {
	case err := <-f.first:
		return err
	default:
		return nil
	}
}
