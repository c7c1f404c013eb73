package bagel

// Table is an in-memory table of string cells. Every row has one cell per column.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates a table with the given columns and rows.
func NewTable(columns []string, rows [][]string) *Table {
	if rows == nil {
		rows = [][]string{}
	}

	return &Table{Columns: columns, Rows: rows}
}

// Index returns the position of col, or -1 when the table has no such column.
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}

	return -1
}

// Has reports whether the table has all of the given columns.
func (t *Table) Has(cols ...string) bool {
	for _, col := range cols {
		if t.Index(col) < 0 {
			return false
		}
	}

	return true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell of row i in column col, or "" when the column does not exist.
func (t *Table) Value(i int, col string) string {
	idx := t.Index(col)
	if idx < 0 {
		return ""
	}

	return t.Rows[i][idx]
}

// Column returns a copy of the cells of col.
func (t *Table) Column(col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}

	res := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		res[i] = row[idx]
	}

	return res
}

// Records returns one map per row keyed by column name.
func (t *Table) Records() []map[string]string {
	res := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for j, col := range t.Columns {
			rec[col] = row[j]
		}
		res[i] = rec
	}

	return res
}

// Select returns a table with only the given columns, in the given order. Unknown columns are skipped.
func (t *Table) Select(cols ...string) *Table {
	idx := make([]int, 0, len(cols))
	names := make([]string, 0, len(cols))

	for _, col := range cols {
		if i := t.Index(col); i >= 0 {
			idx = append(idx, i)
			names = append(names, col)
		}
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		rows[r] = pick(row, idx)
	}

	return NewTable(names, rows)
}

// Drop returns a table without the given columns.
func (t *Table) Drop(cols ...string) *Table {
	dropped := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		dropped[col] = struct{}{}
	}

	keep := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if _, ok := dropped[col]; !ok {
			keep = append(keep, col)
		}
	}

	return t.Select(keep...)
}

// where returns the rows for which keep returns true. Rows are shared with t.
func (t *Table) where(keep func(row []string) bool) *Table {
	rows := [][]string{}

	for _, row := range t.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}

	return NewTable(append([]string(nil), t.Columns...), rows)
}

func (t *Table) indexes(cols []string) []int {
	res := make([]int, len(cols))
	for i, col := range cols {
		res[i] = t.Index(col)
	}

	return res
}

func pick(row []string, idx []int) []string {
	res := make([]string, len(idx))
	for i, j := range idx {
		res[i] = row[j]
	}

	return res
}

// key joins cells into a map key using the ASCII unit separator, which normalize strips from parsed cells.
func key(cells ...string) string {
	n := 0
	for _, c := range cells {
		n += len(c) + 1
	}

	buf := make([]byte, 0, n)
	for i, c := range cells {
		if i > 0 {
			buf = append(buf, '\x1f')
		}
		buf = append(buf, c...)
	}

	return string(buf)
}
