package bagel

import "fmt"

// CountUniqueSubjects returns the number of distinct participants of t, or 0 when t has no participant column.
func CountUniqueSubjects(t *Table) int {
	if !t.Has(ColParticipantID) {
		return 0
	}

	return len(unique(t.Column(ColParticipantID)))
}

// CountUniqueRecords returns the number of distinct participant-session pairs of t, or 0 when t lacks either
// column.
func CountUniqueRecords(t *Table) int {
	if !t.Has(ColParticipantID, ColSession) {
		return 0
	}

	idx := t.indexes([]string{ColParticipantID, ColSession})
	seen := make(map[string]struct{}, t.Len())

	for _, row := range t.Rows {
		seen[key(pick(row, idx)...)] = struct{}{}
	}

	return len(seen)
}

// CountUniqueSessions returns the number of distinct sessions of t.
func CountUniqueSessions(t *Table) int {
	if !t.Has(ColSession) {
		return 0
	}

	return len(Sessions(t))
}

// SummaryString describes the size of a dataset, one figure per line.
func SummaryString(t *Table) string {
	return fmt.Sprintf(
		"Total number of participants: %d\n"+
			"Total number of unique records (participant-session pairs): %d\n"+
			"Total number of unique sessions: %d",
		CountUniqueSubjects(t), CountUniqueRecords(t), CountUniqueSessions(t))
}
