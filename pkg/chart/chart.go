package chart

import (
	"github.com/askiada/procdash/pkg/bagel"
)

// Chart titles displayed by the dashboard.
const (
	RecordsTitle      = "Pipeline statuses of records matching filter (default: all)"
	ParticipantsTitle = "All participants: Pipeline statuses of each session"
)

// Segment is the part of a bar counting one status.
type Segment struct {
	Status string
	Count  int
}

// Bar stacks the status counts of one pipeline.
type Bar struct {
	Label    string
	Segments []Segment
}

// Total returns the height of the bar.
func (b Bar) Total() int {
	total := 0
	for _, s := range b.Segments {
		total += s.Count
	}

	return total
}

// Group is a set of bars sharing a label, such as the pipelines of a session.
type Group struct {
	Label string
	Bars  []Bar
}

// Chart is a stacked bar chart of pipeline statuses.
type Chart struct {
	Title  string
	YLabel string
	// Statuses lists the legend entries in order.
	Statuses []string
	Groups   []Group
}

// MaxTotal returns the height of the tallest bar.
func (c *Chart) MaxTotal() int {
	res := 0
	for _, g := range c.Groups {
		for _, b := range g.Bars {
			res = max(res, b.Total())
		}
	}

	return res
}

// RecordsChart stacks, for every pipeline, the number of records per status.
func RecordsChart(counts []bagel.StatusCount) *Chart {
	return &Chart{
		Title:    RecordsTitle,
		YLabel:   "Records",
		Statuses: bagel.Statuses(),
		Groups:   []Group{{Bars: bars(counts)}},
	}
}

// ParticipantsChart stacks, for every session and pipeline, the number of participants per status. Sessions are
// displayed in the given order.
func ParticipantsChart(counts []bagel.StatusCount, sessions []string) *Chart {
	bySession := map[string][]bagel.StatusCount{}
	for _, c := range counts {
		bySession[c.Session] = append(bySession[c.Session], c)
	}

	groups := make([]Group, 0, len(sessions))
	for _, s := range sessions {
		groups = append(groups, Group{Label: s, Bars: bars(bySession[s])})
	}

	return &Chart{
		Title:    ParticipantsTitle,
		YLabel:   "Participants",
		Statuses: bagel.Statuses(),
		Groups:   groups,
	}
}

// bars turns counts into one bar per pipeline, in order of appearance. Counts of the same status add up.
func bars(counts []bagel.StatusCount) []Bar {
	res := []Bar{}
	index := map[string]int{}

	for _, c := range counts {
		i, ok := index[c.Pipeline]
		if !ok {
			i = len(res)
			index[c.Pipeline] = i
			res = append(res, Bar{Label: c.Pipeline})
		}

		res[i].Segments = addSegment(res[i].Segments, c)
	}

	return res
}

func addSegment(segments []Segment, c bagel.StatusCount) []Segment {
	for i := range segments {
		if segments[i].Status == c.Status {
			segments[i].Count += c.Count

			return segments
		}
	}

	return append(segments, Segment{Status: c.Status, Count: c.Count})
}
