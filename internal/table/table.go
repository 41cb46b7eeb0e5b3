// Package table holds the tabular form of a simulated time series.
package table

// Table is an ordered sequence of rows sharing one column layout.
type Table struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

func New(columns []string, capacity int) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Columns: cols,
		Rows:    make([][]float64, 0, capacity),
	}
}

// Append adds a copy of row.
func (t *Table) Append(row []float64) {
	r := make([]float64, len(row))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Column returns the values of one column, or nil if it does not exist.
func (t *Table) Column(name string) []float64 {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Row returns row i as a mapping from column name to value.
func (t *Table) Row(i int) map[string]float64 {
	m := make(map[string]float64, len(t.Columns))
	for j, c := range t.Columns {
		m[c] = t.Rows[i][j]
	}
	return m
}

func (t *Table) Records() []map[string]float64 {
	out := make([]map[string]float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Row(i)
	}
	return out
}

func (t *Table) Clone() *Table {
	c := New(t.Columns, len(t.Rows))
	for _, row := range t.Rows {
		c.Append(row)
	}
	return c
}
