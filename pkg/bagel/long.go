package bagel

import "sort"

// Columns of the long format produced by ToLong.
const (
	LongPipelineColumn = ColPipelineName
	LongStatusColumn   = ColPipelineComplete
)

// overviewIDColumns returns the ID columns of an imaging overview, in table order.
func overviewIDColumns(t *Table) []string {
	return present(t, Imaging.IDColumns)
}

// PipelineColumns returns the columns of an overview that are not ID columns.
func PipelineColumns(t *Table) []string {
	ids := map[string]struct{}{}
	for _, col := range overviewIDColumns(t) {
		ids[col] = struct{}{}
	}

	res := []string{}
	for _, col := range t.Columns {
		if _, ok := ids[col]; !ok {
			res = append(res, col)
		}
	}

	return res
}

// ToLong melts an overview table back into one row per record and pipeline. The ID columns are kept and followed
// by the pipeline name and status columns.
func ToLong(t *Table) *Table {
	idCols := overviewIDColumns(t)
	idIdx := t.indexes(idCols)
	pipelines := PipelineColumns(t)
	pipelineIdx := t.indexes(pipelines)

	columns := append(append([]string{}, idCols...), LongPipelineColumn, LongStatusColumn)
	rows := make([][]string, 0, t.Len()*len(pipelines))

	for _, row := range t.Rows {
		ids := pick(row, idIdx)

		for i, idx := range pipelineIdx {
			long := make([]string, 0, len(columns))
			long = append(long, ids...)
			long = append(long, pipelines[i], row[idx])
			rows = append(rows, long)
		}
	}

	return NewTable(columns, rows)
}

// StatusCount is the number of records of a pipeline having a given status, optionally within a session.
type StatusCount struct {
	Pipeline string
	Status   string
	Session  string
	Count    int
}

// StatusCountsByRecords counts the records of an overview per pipeline and status.
func StatusCountsByRecords(t *Table) []StatusCount {
	return countStatuses(ToLong(t), false)
}

// StatusCountsBySession counts the records of an overview per pipeline, status and session.
func StatusCountsBySession(t *Table) []StatusCount {
	return countStatuses(ToLong(t), true)
}

func countStatuses(long *Table, bySession bool) []StatusCount {
	pipelineIdx, statusIdx, sessionIdx := long.Index(LongPipelineColumn), long.Index(LongStatusColumn), long.Index(ColSession)
	bySession = bySession && sessionIdx >= 0

	counts := map[string]*StatusCount{}
	res := []*StatusCount{}

	for _, row := range long.Rows {
		c := StatusCount{Pipeline: row[pipelineIdx], Status: row[statusIdx]}
		if bySession {
			c.Session = row[sessionIdx]
		}

		k := key(c.Pipeline, c.Status, c.Session)
		if existing, ok := counts[k]; ok {
			existing.Count++

			continue
		}

		c.Count = 1
		counts[k] = &c
		res = append(res, &c)
	}

	out := make([]StatusCount, len(res))
	for i, c := range res {
		out[i] = *c
	}

	sortStatusCounts(out, Sessions(long))

	return out
}

// EmptyStatusCounts returns a zero count for every pipeline and status, so that empty selections still chart
// every pipeline.
func EmptyStatusCounts(pipelines, statuses []string) []StatusCount {
	res := make([]StatusCount, 0, len(pipelines)*len(statuses))

	for _, p := range pipelines {
		for _, s := range statuses {
			res = append(res, StatusCount{Pipeline: p, Status: s})
		}
	}

	return res
}

// sortStatusCounts orders counts by pipeline, then status in legend order, then session in the given order.
func sortStatusCounts(counts []StatusCount, sessions []string) {
	statusRank := map[string]int{}
	for i, s := range Statuses() {
		statusRank[s] = i
	}

	sessionRank := map[string]int{}
	for i, s := range sessions {
		sessionRank[s] = i
	}

	rank := func(ranks map[string]int, v string) int {
		if r, ok := ranks[v]; ok {
			return r
		}

		return len(ranks)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		a, b := counts[i], counts[j]
		if a.Pipeline != b.Pipeline {
			return a.Pipeline < b.Pipeline
		}
		if ra, rb := rank(statusRank, a.Status), rank(statusRank, b.Status); ra != rb {
			return ra < rb
		}
		if a.Status != b.Status {
			return a.Status < b.Status
		}

		return rank(sessionRank, a.Session) < rank(sessionRank, b.Session)
	})
}
