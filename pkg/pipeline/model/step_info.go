package model

// StepKind tells where a step sits in a pipeline.
type StepKind string

const (
	KindRoot StepKind = "root"
	KindStep StepKind = "step"
	KindSink StepKind = "sink"
)

// StepInfo describes a step to the pipeline options.
type StepInfo struct {
	Kind    StepKind
	Name    string
	Workers int
}

// Start and End are the virtual steps before the root step and after the sinks.
var (
	Start = &StepInfo{Name: "start"}
	End   = &StepInfo{Name: "end"}
)

// Step is a stage of a pipeline, read by the steps it feeds.
type Step[O any] struct {
	Output chan O
	Info   *StepInfo
}
