package web

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/askiada/procdash/internal/dashboard"
	"github.com/askiada/procdash/pkg/bagel"
)

// Query string parameters of the dataset pages.
const (
	paramSession  = "session"
	paramOperator = "operator"
	paramSort     = "sort"
	paramPage     = "page"
	// prefixStatus selects a status per pipeline, e.g. status.fmriprep-20.2.7=SUCCESS.
	prefixStatus = "status."
	// prefixFilter sets a column filter, e.g. filter.participant_id=sub-01.
	prefixFilter = "filter."
)

func parseQuery(values url.Values) (dashboard.Query, error) {
	operator, err := bagel.ParseOperator(values.Get(paramOperator))
	if err != nil {
		return dashboard.Query{}, err
	}

	q := dashboard.Query{
		Filter: bagel.Filter{
			Operator: operator,
			Statuses: map[string]string{},
		},
		ColumnFilters: map[string]string{},
		Sort:          bagel.ParseSortKeys(values.Get(paramSort)),
	}

	for _, s := range values[paramSession] {
		if s = strings.TrimSpace(s); s != "" {
			q.Filter.Sessions = append(q.Filter.Sessions, s)
		}
	}

	for name, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		switch {
		case strings.HasPrefix(name, prefixStatus):
			q.Filter.Statuses[strings.TrimPrefix(name, prefixStatus)] = vals[0]
		case strings.HasPrefix(name, prefixFilter):
			q.ColumnFilters[strings.TrimPrefix(name, prefixFilter)] = vals[0]
		}
	}

	if page := values.Get(paramPage); page != "" {
		q.Page, err = strconv.Atoi(page)
		if err != nil {
			q.Page = 1
		}
	}

	return q, nil
}

func encodeQuery(q dashboard.Query) url.Values {
	values := url.Values{}

	for _, s := range q.Filter.Sessions {
		values.Add(paramSession, s)
	}
	if len(q.Filter.Sessions) > 0 && q.Filter.Operator != "" {
		values.Set(paramOperator, string(q.Filter.Operator))
	}

	for col, status := range q.Filter.Statuses {
		if status != "" {
			values.Set(prefixStatus+col, status)
		}
	}

	for col, text := range q.ColumnFilters {
		if text != "" {
			values.Set(prefixFilter+col, text)
		}
	}

	if len(q.Sort) > 0 {
		keys := make([]string, len(q.Sort))
		for i, k := range q.Sort {
			keys[i] = k.String()
		}
		values.Set(paramSort, strings.Join(keys, ","))
	}

	if q.Page > 1 {
		values.Set(paramPage, strconv.Itoa(q.Page))
	}

	return values
}

// queryURL returns path with the query string of q.
func queryURL(path string, q dashboard.Query) string {
	if enc := encodeQuery(q).Encode(); enc != "" {
		return path + "?" + enc
	}

	return path
}

// toggleSort moves col to the front of the sort keys, reversing its order if it already led.
func toggleSort(keys []bagel.SortKey, col string) []bagel.SortKey {
	next := bagel.SortKey{Column: col}
	if len(keys) > 0 && keys[0].Column == col {
		next.Descending = !keys[0].Descending
	}

	res := []bagel.SortKey{next}
	for _, k := range keys {
		if k.Column != col {
			res = append(res, k)
		}
	}

	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
