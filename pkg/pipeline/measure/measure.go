// Package measure records how long the steps of a pipeline spend on their items.
package measure

import (
	"sort"
	"sync"
	"time"

	"github.com/askiada/procdash/pkg/pipeline/model"
)

// Link is the time a step spent waiting on one of its inputs.
type Link struct {
	Items int64
	Wait  time.Duration
}

// MeanWait is the mean wait per item and per worker of the reading step.
func (l Link) MeanWait(workers int) time.Duration {
	if l.Items == 0 {
		return 0
	}

	return round(l.Wait / time.Duration(l.Items) / time.Duration(max(workers, 1)))
}

// StepStats are the timings recorded for a single step.
type StepStats struct {
	Name    string
	Workers int
	Items   int64
	Work    time.Duration
	// Elapsed is the time between the creation of the pipeline and the end of a sink. It is zero for other steps.
	Elapsed time.Duration
	Inputs  map[string]Link
}

// MeanWork is the mean time spent in the step function per item.
func (s StepStats) MeanWork() time.Duration {
	if s.Items == 0 {
		return 0
	}

	return round(s.Work / time.Duration(s.Items))
}

// Recorder records the timings of every step of a pipeline. It is safe for concurrent use.
type Recorder struct {
	mu    sync.RWMutex
	steps map[string]*StepStats
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{steps: make(map[string]*StepStats)}
}

func (r *Recorder) add(name string, workers int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[name] = &StepStats{Name: name, Workers: max(workers, 1), Inputs: make(map[string]Link)}
}

// Step returns a copy of the timings of the named step.
func (r *Recorder) Step(name string) (StepStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.steps[name]
	if !ok {
		return StepStats{}, false
	}

	return stats.clone(), true
}

// Steps returns a copy of the timings of every step, sorted by name.
func (r *Recorder) Steps() []StepStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]StepStats, 0, len(r.steps))
	for _, stats := range r.steps {
		res = append(res, stats.clone())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })

	return res
}

func (s *StepStats) clone() StepStats {
	res := *s
	res.Inputs = make(map[string]Link, len(s.Inputs))
	for name, link := range s.Inputs {
		res.Inputs[name] = link
	}

	return res
}

func (r *Recorder) New() error {
	r.add(model.Start.Name, 1)
	r.add(model.End.Name, 1)

	return nil
}

func (r *Recorder) Register(_, step *model.StepInfo) error {
	r.add(step.Name, step.Workers)

	return nil
}

func (r *Recorder) Observe(parent, step *model.StepInfo, timing model.Timing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.steps[step.Name]
	if !ok {
		return nil
	}
	stats.Items++
	stats.Work += timing.Work

	link := stats.Inputs[parent.Name]
	link.Items++
	link.Wait += timing.Wait
	stats.Inputs[parent.Name] = link

	return nil
}

func (r *Recorder) Drained(sink *model.StepInfo, elapsed time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.steps[sink.Name]; ok {
		stats.Elapsed = elapsed
	}

	return nil
}

func (r *Recorder) Finish() error {
	return nil
}

var _ model.PipelineOption = (*Recorder)(nil)

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
