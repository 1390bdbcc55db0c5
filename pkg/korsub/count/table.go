package count

import "sort"

// Table is a two-level sparse count table: row label -> column label -> count.
//
// Rows are kept as separate Counters so that pruning one row never touches
// another, and a row whose counters are all evicted is removed.
type Table struct {
	rows map[string]Counter
	nnz  int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{rows: make(map[string]Counter)}
}

// Inc increments the (row, col) cell by one
func (t *Table) Inc(row, col string) {
	t.Add(row, col, 1)
}

// Add increments the (row, col) cell by n
func (t *Table) Add(row, col string, n int64) {
	r, ok := t.rows[row]
	if !ok {
		r = NewCounter()
		t.rows[row] = r
	}
	if _, ok := r[col]; !ok {
		t.nnz++
	}
	r[col] += n
}

// Get returns the (row, col) count, zero when absent
func (t *Table) Get(row, col string) int64 {
	r, ok := t.rows[row]
	if !ok {
		return 0
	}
	return r[col]
}

// Row returns the counter for row, or nil. The returned counter must not be modified.
func (t *Table) Row(row string) Counter {
	return t.rows[row]
}

// Prune drops every cell below threshold, then every row left empty.
// It returns the number of evicted cells.
func (t *Table) Prune(threshold int64) int {
	evicted := 0
	for label, r := range t.rows {
		evicted += r.Prune(threshold)
		if len(r) == 0 {
			delete(t.rows, label)
		}
	}
	t.nnz -= evicted
	return evicted
}

// Len returns the number of non-empty rows
func (t *Table) Len() int {
	return len(t.rows)
}

// NNZ returns the number of stored cells
func (t *Table) NNZ() int {
	return t.nnz
}

// RowLabels returns the row labels in ascending byte order
func (t *Table) RowLabels() []string {
	labels := make([]string, 0, len(t.rows))
	for label := range t.rows {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Each calls fn for every stored cell. Iteration order is unspecified.
func (t *Table) Each(fn func(row, col string, n int64)) {
	for label, r := range t.rows {
		for col, n := range r {
			fn(label, col, n)
		}
	}
}
