// Package bagel reads and summarises bagel files: CSV exports describing, for every participant and session of a
// neuroimaging dataset, the processing status of each pipeline (imaging schema) or the score of each assessment
// (phenotypic schema).
//
// A bagel is parsed and validated into a long format Table with one row per participant-session-pipeline. Overview
// pivots it into the wide table shown by the dashboard, with one row per participant-session and one column per
// pipeline. FilterRecords, the counting helpers and the long format helpers then work on that overview.
//
// Every function returns a new Table and never mutates its input.
package bagel
