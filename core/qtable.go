package core

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// QTable holds one value per (row, col, action), zero-initialized. Accessors
// panic on out-of-range positions or actions.
type QTable struct {
	rows   int
	cols   int
	values []float64
}

func NewQTable(rows, cols int) *QTable {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("invalid q-table shape %dx%d", rows, cols))
	}
	return &QTable{
		rows:   rows,
		cols:   cols,
		values: make([]float64, rows*cols*NumActions),
	}
}

// NewQTableFor creates a table shaped like the grid.
func NewQTableFor(g *GridWorld) *QTable {
	return NewQTable(g.Rows(), g.Cols())
}

func (q *QTable) Rows() int { return q.rows }
func (q *QTable) Cols() int { return q.cols }

// Fits reports whether the table has the same shape as the grid.
func (q *QTable) Fits(g *GridWorld) bool {
	return q.rows == g.Rows() && q.cols == g.Cols()
}

func (q *QTable) cell(pos Position) int {
	if pos.Row < 0 || pos.Row >= q.rows || pos.Col < 0 || pos.Col >= q.cols {
		panic(fmt.Sprintf("position (%d,%d) outside %dx%d q-table", pos.Row, pos.Col, q.rows, q.cols))
	}
	return (pos.Row*q.cols + pos.Col) * NumActions
}

func (q *QTable) index(pos Position, action Action) int {
	if !action.Valid() {
		panic(fmt.Sprintf("invalid action %d", int(action)))
	}
	return q.cell(pos) + int(action)
}

func (q *QTable) Get(pos Position, action Action) float64 {
	return q.values[q.index(pos, action)]
}

func (q *QTable) Set(pos Position, action Action, value float64) {
	q.values[q.index(pos, action)] = value
}

// Values returns the four action values at pos in action order.
func (q *QTable) Values(pos Position) [NumActions]float64 {
	var out [NumActions]float64
	i := q.cell(pos)
	copy(out[:], q.values[i:i+NumActions])
	return out
}

// Best returns the highest valued action at pos. Ties go to the action listed
// first in Actions().
func (q *QTable) Best(pos Position) (Action, float64) {
	i := q.cell(pos)
	best, bestVal := Up, q.values[i]
	for a := 1; a < NumActions; a++ {
		if val := q.values[i+a]; val > bestVal {
			best, bestVal = Action(a), val
		}
	}
	return best, bestVal
}

// AverageOver is the mean of the action values at pos. Diagnostics only.
func (q *QTable) AverageOver(pos Position) float64 {
	i := q.cell(pos)
	return stat.Mean(q.values[i:i+NumActions], nil)
}

// Averages returns AverageOver for every cell.
func (q *QTable) Averages() [][]float64 {
	out := make([][]float64, q.rows)
	for r := 0; r < q.rows; r++ {
		out[r] = make([]float64, q.cols)
		for c := 0; c < q.cols; c++ {
			out[r][c] = q.AverageOver(Position{Row: r, Col: c})
		}
	}
	return out
}

func (q *QTable) Clone() *QTable {
	values := make([]float64, len(q.values))
	copy(values, q.values)
	return &QTable{rows: q.rows, cols: q.cols, values: values}
}

// Equal reports whether both tables have the same shape and bitwise equal values.
func (q *QTable) Equal(other *QTable) bool {
	if other == nil || q.rows != other.rows || q.cols != other.cols {
		return false
	}
	for i, v := range q.values {
		if other.values[i] != v {
			return false
		}
	}
	return true
}
