// Package chart renders pipeline status counts as stacked bar charts in SVG.
package chart
