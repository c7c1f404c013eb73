package pipeline

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/pipeline/model"
)

func TestFailuresKeepsFirstError(t *testing.T) {
	t.Parallel()

	errRead := errors.New("read failed")
	errCollect := errors.New("collect failed")

	read := &model.StepInfo{Kind: model.KindRoot, Name: "read", Workers: 1}
	collect := &model.StepInfo{Kind: model.KindSink, Name: "collect", Workers: 1}

	tcs := map[string]struct {
		errs []error
		want []error
	}{
		"no step": {},
		"every step succeeding": {
			errs: []error{nil, nil},
		},
		"one failing step": {
			errs: []error{errRead, nil},
			want: []error{errRead},
		},
		"every step failing": {
			errs: []error{errRead, errCollect},
			want: []error{errRead, errCollect},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFailures()
			steps := []*model.StepInfo{read, collect}

			var wg sync.WaitGroup
			for i, err := range tc.errs {
				f.start()
				wg.Add(1)

				go func() {
					defer wg.Done()
					f.stop(steps[i], err)
				}()
			}

			got := f.wait()
			wg.Wait()

			if len(tc.want) == 0 {
				assert.NoError(t, got)

				return
			}

			require.Error(t, got)
			found := false
			for _, want := range tc.want {
				found = found || errors.Is(got, want)
			}
			assert.True(t, found, "unexpected error %v", got)
		})
	}
}

func TestStepErrorNamesStep(t *testing.T) {
	t.Parallel()

	normalize := &model.StepInfo{Kind: model.KindStep, Name: "normalize", Workers: 4}

	f := newFailures()
	f.start()
	f.stop(normalize, errors.New("boom"))

	err := f.wait()
	assert.EqualError(t, err, "normalize: boom")

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Same(t, normalize, stepErr.Step)
	assert.Equal(t, 4, stepErr.Step.Workers)
}

func TestFailuresWaitReturnsBeforeOtherSteps(t *testing.T) {
	t.Parallel()

	f := newFailures()
	f.start()
	f.start()

	f.stop(&model.StepInfo{Name: "failing"}, assert.AnError)
	assert.ErrorIs(t, f.wait(), assert.AnError)

	f.stop(&model.StepInfo{Name: "ok"}, nil)
}
