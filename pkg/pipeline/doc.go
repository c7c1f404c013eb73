// Package pipeline provides a channel based pipeline for processing data.
//
// A pipeline is made of a root step producing elements, any number of intermediate steps transforming them and
// a sink consuming the result. Every step runs in its own goroutines and elements flow between steps through
// unbuffered channels, so an intermediate step can be given more workers with StepConcurrency without any
// extra synchronisation in the caller.
//
// The pipeline stops on the first error returned by any step. The context shared by all the steps is cancelled
// when Run returns, which unblocks every step still waiting on a channel.
//
// Options implementing model.PipelineOption can observe the pipeline while it runs. The measure package records
// the timings of every step and the drawer package renders the pipeline as a DOT graph.
package pipeline
