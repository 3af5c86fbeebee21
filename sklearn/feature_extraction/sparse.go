package feature_extraction

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// CSR is a read-only compressed sparse row matrix. It satisfies mat.Matrix as
// well as mat.NonZeroDoer and mat.RowNonZeroDoer, so consumers that know about
// sparsity can skip the zero entries.
type CSR struct {
	rows, cols int
	indptr     []int // len rows+1
	indices    []int // column index of each stored value, ascending within a row
	data       []float64
}

var (
	_ mat.Matrix         = (*CSR)(nil)
	_ mat.NonZeroDoer    = (*CSR)(nil)
	_ mat.RowNonZeroDoer = (*CSR)(nil)
)

// Dims returns the matrix shape.
func (m *CSR) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns the element at row i, column j.
func (m *CSR) At(i, j int) float64 {
	if uint(i) >= uint(m.rows) {
		panic(mat.ErrRowAccess)
	}
	if uint(j) >= uint(m.cols) {
		panic(mat.ErrColAccess)
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	cols := m.indices[lo:hi]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return m.data[lo+k]
	}
	return 0
}

// T returns an implicit transpose.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// DoNonZero calls fn for every stored element in row-major order.
func (m *CSR) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		m.DoRowNonZero(i, fn)
	}
}

// DoRowNonZero calls fn for every stored element of row i.
func (m *CSR) DoRowNonZero(i int, fn func(i, j int, v float64)) {
	if uint(i) >= uint(m.rows) {
		panic(mat.ErrRowAccess)
	}
	for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
		fn(i, m.indices[k], m.data[k])
	}
}

// NNZ returns the number of stored elements.
func (m *CSR) NNZ() int {
	return len(m.data)
}

// ToDense copies the matrix into a new dense matrix. It returns nil for a
// matrix with a zero dimension.
func (m *CSR) ToDense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return nil
	}
	d := mat.NewDense(m.rows, m.cols, nil)
	m.DoNonZero(func(i, j int, v float64) {
		d.Set(i, j, v)
	})
	return d
}

// csrBuilder appends rows one at a time.
type csrBuilder struct {
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

func newCSRBuilder(rows, cols int) *csrBuilder {
	b := &csrBuilder{cols: cols, indptr: make([]int, 1, rows+1)}
	return b
}

// addRow appends a row given as column→value pairs. Columns need not be sorted.
func (b *csrBuilder) addRow(row map[int]float64) {
	start := len(b.indices)
	for j, v := range row {
		if v == 0 {
			continue
		}
		b.indices = append(b.indices, j)
		b.data = append(b.data, v)
	}
	sort.Sort(rowSorter{b.indices[start:], b.data[start:]})
	b.indptr = append(b.indptr, len(b.indices))
}

func (b *csrBuilder) build() *CSR {
	return &CSR{
		rows:    len(b.indptr) - 1,
		cols:    b.cols,
		indptr:  b.indptr,
		indices: b.indices,
		data:    b.data,
	}
}

type rowSorter struct {
	idx  []int
	vals []float64
}

func (s rowSorter) Len() int           { return len(s.idx) }
func (s rowSorter) Less(a, b int) bool { return s.idx[a] < s.idx[b] }
func (s rowSorter) Swap(a, b int) {
	s.idx[a], s.idx[b] = s.idx[b], s.idx[a]
	s.vals[a], s.vals[b] = s.vals[b], s.vals[a]
}
