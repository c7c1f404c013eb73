package bagel

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPageSize is the number of rows displayed per page of the dashboard table.
const DefaultPageSize = 50

// SortKey orders a table by one column.
type SortKey struct {
	Column     string
	Descending bool
}

// ParseSortKeys parses comma separated columns, a leading "-" sorting the column in descending order.
func ParseSortKeys(s string) []SortKey {
	keys := []SortKey{}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		k := SortKey{Column: part}
		if strings.HasPrefix(part, "-") {
			k = SortKey{Column: strings.TrimPrefix(part, "-"), Descending: true}
		}
		keys = append(keys, k)
	}

	return keys
}

// String formats the key the way ParseSortKeys reads it.
func (k SortKey) String() string {
	if k.Descending {
		return "-" + k.Column
	}

	return k.Column
}

// number parses a finite number. NaN and Inf spellings stay text.
func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func compareCells(a, b string) int {
	fa, okA := number(a)
	fb, okB := number(b)

	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(a, b)
}

// SortBy returns a copy of t stably sorted by the given keys. Cells that both hold numbers compare numerically.
func SortBy(t *Table, keys []SortKey) (*Table, error) {
	idx := make([]int, len(keys))
	for i, k := range keys {
		idx[i] = t.Index(k.Column)
		if idx[i] < 0 {
			return nil, errors.Wrapf(ErrUnknownColumn, "sort by %q", k.Column)
		}
	}

	res := t.where(func([]string) bool { return true })

	sort.SliceStable(res.Rows, func(i, j int) bool {
		for n, k := range keys {
			c := compareCells(res.Rows[i][idx[n]], res.Rows[j][idx[n]])
			if c == 0 {
				continue
			}
			if k.Descending {
				return c > 0
			}

			return c < 0
		}

		return false
	})

	return res, nil
}

// PageInfo locates a page within a table.
type PageInfo struct {
	// Page is 1-based.
	Page  int
	Size  int
	Pages int
	Total int
}

// Page returns the rows of the given 1-based page. Out of range pages are clamped and a non-positive size uses
// DefaultPageSize.
func Page(t *Table, page, size int) (*Table, PageInfo) {
	if size <= 0 {
		size = DefaultPageSize
	}

	info := PageInfo{Size: size, Total: t.Len(), Pages: (t.Len() + size - 1) / size}
	if info.Pages == 0 {
		info.Pages = 1
	}

	info.Page = min(max(page, 1), info.Pages)

	start := min((info.Page-1)*size, t.Len())
	end := min(start+size, t.Len())

	return NewTable(append([]string(nil), t.Columns...), t.Rows[start:end:end]), info
}

// WriteCSV writes t with its header row.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return errors.Wrap(err, "unable to write header")
	}

	if err := writer.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "unable to write rows")
	}

	return nil
}
