package util

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/zeu5/qgrid/core"
)

const (
	rewardFormat = "%5d "
	valueFormat  = "%8.2f "
)

// GridPrinter dumps reward and Q-value tables with a fixed per-cell width.
type GridPrinter struct {
	grid  *core.GridWorld
	color aurora.Aurora
}

func NewGridPrinter(grid *core.GridWorld, colors bool) *GridPrinter {
	return &GridPrinter{
		grid:  grid,
		color: aurora.NewAurora(colors),
	}
}

func (p *GridPrinter) paint(pos core.Position, s string) aurora.Value {
	switch p.grid.Kind(pos) {
	case core.Goal:
		return p.color.Green(s)
	case core.Obstacle:
		return p.color.Red(s)
	default:
		return p.color.Reset(s)
	}
}

func (p *GridPrinter) PrintRewards(w io.Writer) error {
	buf := new(bytes.Buffer)
	for r := 0; r < p.grid.Rows(); r++ {
		for c := 0; c < p.grid.Cols(); c++ {
			pos := core.Position{Row: r, Col: c}
			fmt.Fprint(buf, p.paint(pos, fmt.Sprintf(rewardFormat, p.grid.Reward(pos))))
		}
		buf.WriteString("\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// PrintValues prints a grid-shaped table such as QTable.Averages().
func (p *GridPrinter) PrintValues(w io.Writer, values [][]float64) error {
	buf := new(bytes.Buffer)
	for r, row := range values {
		for c, v := range row {
			fmt.Fprint(buf, p.paint(core.Position{Row: r, Col: c}, fmt.Sprintf(valueFormat, v)))
		}
		buf.WriteString("\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// PrintPolicy shows the greedy action of every non-terminal cell as an arrow.
func (p *GridPrinter) PrintPolicy(w io.Writer, q *core.QTable) error {
	buf := new(bytes.Buffer)
	for r := 0; r < p.grid.Rows(); r++ {
		for c := 0; c < p.grid.Cols(); c++ {
			pos := core.Position{Row: r, Col: c}
			symbol := cellSymbol(p.grid.Kind(pos))
			if !p.grid.IsTerminal(pos) {
				action, _ := q.Best(pos)
				symbol = arrows[action]
			}
			fmt.Fprint(buf, p.paint(pos, symbol+" "))
		}
		buf.WriteString("\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Render draws the grid with the agent at pos.
func (p *GridPrinter) Render(pos core.Position) string {
	var sb strings.Builder
	for r := 0; r < p.grid.Rows(); r++ {
		for c := 0; c < p.grid.Cols(); c++ {
			cell := core.Position{Row: r, Col: c}
			if cell == pos {
				sb.WriteString(p.color.Bold(p.color.Cyan("A")).String())
				continue
			}
			sb.WriteString(p.paint(cell, cellSymbol(p.grid.Kind(cell))).String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// PrintPath draws the grid with every non-terminal cell of path marked "*".
func (p *GridPrinter) PrintPath(w io.Writer, path []core.Position) error {
	onPath := make(map[core.Position]bool, len(path))
	for _, pos := range path {
		onPath[pos] = true
	}
	buf := new(bytes.Buffer)
	for r := 0; r < p.grid.Rows(); r++ {
		for c := 0; c < p.grid.Cols(); c++ {
			pos := core.Position{Row: r, Col: c}
			if onPath[pos] && !p.grid.IsTerminal(pos) {
				buf.WriteString(p.color.Bold(p.color.Cyan("*")).String())
				continue
			}
			buf.WriteString(p.paint(pos, cellSymbol(p.grid.Kind(pos))).String())
		}
		buf.WriteString("\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var arrows = map[core.Action]string{
	core.Up:    "^",
	core.Down:  "v",
	core.Left:  "<",
	core.Right: ">",
}

func cellSymbol(kind core.CellKind) string {
	switch kind {
	case core.Goal:
		return "g"
	case core.Obstacle:
		return "#"
	default:
		return "."
	}
}
