// Package model holds the types shared by the pipeline package and its options: the description of a step and
// the hooks an option is called with while the pipeline runs.
package model
