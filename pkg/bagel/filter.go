package bagel

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Operator combines the selected sessions of a Filter.
type Operator string

const (
	// OperatorAND keeps participants having every selected session, each matching the status filters.
	OperatorAND Operator = "AND"
	// OperatorOR keeps records in any selected session matching the status filters.
	OperatorOR Operator = "OR"
)

// ParseOperator parses "AND" or "OR", ignoring case. An empty string is AND, the dashboard default.
func ParseOperator(s string) (Operator, error) {
	switch Operator(strings.ToUpper(strings.TrimSpace(s))) {
	case "", OperatorAND:
		return OperatorAND, nil
	case OperatorOR:
		return OperatorOR, nil
	default:
		return "", errors.Wrapf(ErrUnknownOperator, "%q", s)
	}
}

// Filter selects records of an overview table.
type Filter struct {
	// Sessions to keep. No session means every session of the table, combined with OR.
	Sessions []string
	Operator Operator
	// Statuses maps pipeline columns to the status they must have. Empty statuses are ignored.
	Statuses map[string]string
}

// IsEmpty reports whether the filter keeps every record.
func (f Filter) IsEmpty() bool {
	if len(f.Sessions) > 0 {
		return false
	}

	for _, status := range f.Statuses {
		if status != "" {
			return false
		}
	}

	return true
}

type statusPredicate struct {
	idx    int
	status string
}

func statusPredicates(t *Table, statuses map[string]string) ([]statusPredicate, error) {
	cols := make([]string, 0, len(statuses))
	for col, status := range statuses {
		if status != "" {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	res := make([]statusPredicate, len(cols))
	for i, col := range cols {
		idx := t.Index(col)
		if idx < 0 {
			return nil, errors.Wrapf(ErrUnknownColumn, "%q", col)
		}
		res[i] = statusPredicate{idx: idx, status: statuses[col]}
	}

	return res, nil
}

func matchStatuses(row []string, preds []statusPredicate) bool {
	for _, p := range preds {
		if row[p.idx] != p.status {
			return false
		}
	}

	return true
}

// FilterRecords returns the records of an overview table matching the selected sessions and pipeline statuses.
//
// With OperatorOR, a record is kept when its session is selected and it matches every status. With OperatorAND,
// a participant is kept when, in every selected session, it has a record matching every status; all of its
// records in the selected sessions are then kept. Records keep their order.
func FilterRecords(t *Table, f Filter) (*Table, error) {
	if !t.Has(ColParticipantID, ColSession) {
		return nil, errors.Wrapf(ErrUnknownColumn, "filtering needs %s and %s", ColParticipantID, ColSession)
	}

	preds, err := statusPredicates(t, f.Statuses)
	if err != nil {
		return nil, err
	}

	sessions, operator := f.Sessions, f.Operator
	if len(sessions) == 0 {
		sessions, operator = Sessions(t), OperatorOR
	}

	selected := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		selected[s] = struct{}{}
	}

	participantIdx, sessionIdx := t.Index(ColParticipantID), t.Index(ColSession)
	inSessions := func(row []string) bool {
		_, ok := selected[row[sessionIdx]]

		return ok
	}

	switch operator {
	case OperatorOR:
		return t.where(func(row []string) bool {
			return inSessions(row) && matchStatuses(row, preds)
		}), nil
	case OperatorAND:
		// sessions in which each participant has a matching record
		matched := map[string]map[string]struct{}{}

		for _, row := range t.Rows {
			if !inSessions(row) || !matchStatuses(row, preds) {
				continue
			}

			sub := row[participantIdx]
			if matched[sub] == nil {
				matched[sub] = map[string]struct{}{}
			}
			matched[sub][row[sessionIdx]] = struct{}{}
		}

		return t.where(func(row []string) bool {
			return inSessions(row) && len(matched[row[participantIdx]]) == len(selected)
		}), nil
	default:
		return nil, errors.Wrapf(ErrUnknownOperator, "%q", operator)
	}
}

// ApplyColumnFilters keeps the rows whose cells contain the text queried for their column. Queries on unknown
// or disabled columns, and empty queries, are ignored.
func ApplyColumnFilters(t *Table, queries map[string]string, disabled []string) *Table {
	off := make(map[string]struct{}, len(disabled))
	for _, col := range disabled {
		off[col] = struct{}{}
	}

	type query struct {
		idx  int
		text string
	}

	active := []query{}

	for col, text := range queries {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if _, ok := off[col]; ok {
			continue
		}
		if idx := t.Index(col); idx >= 0 {
			active = append(active, query{idx: idx, text: text})
		}
	}

	return t.where(func(row []string) bool {
		for _, q := range active {
			if !strings.Contains(row[q.idx], q.text) {
				return false
			}
		}

		return true
	})
}
