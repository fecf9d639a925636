package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxPathSteps bounds a greedy rollout on g.
func MaxPathSteps(g *GridWorld) int {
	return g.Rows() * g.Cols() * NumActions
}

// ShortestPath follows the greedy action from start until it lands on a
// terminal cell. The path includes start and the terminal cell. A terminal
// start yields a nil path and no error; a rollout that does not terminate
// within MaxPathSteps moves fails with ErrNoConvergingPath.
func ShortestPath(g *GridWorld, q *QTable, start Position) ([]Position, error) {
	if !q.Fits(g) {
		return nil, fmt.Errorf("%w: table is %dx%d, grid is %dx%d", ErrShapeMismatch, q.Rows(), q.Cols(), g.Rows(), g.Cols())
	}
	if g.IsTerminal(start) {
		return nil, nil
	}
	bound := MaxPathSteps(g)
	path := []Position{start}
	pos := start
	for moves := 0; !g.IsTerminal(pos); moves++ {
		if moves >= bound {
			return nil, fmt.Errorf("%w: no terminal cell within %d moves from %s", ErrNoConvergingPath, bound, start)
		}
		action, _ := q.Best(pos)
		pos = g.Step(pos, action)
		path = append(path, pos)
	}
	return path, nil
}

// WritePath writes one "row col" line per position.
func WritePath(w io.Writer, path []Position) error {
	bw := bufio.NewWriter(w)
	for _, p := range path {
		if _, err := fmt.Fprintf(bw, "%d %d\n", p.Row, p.Col); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadPath parses the output of WritePath. Blank lines are skipped.
func ReadPath(r io.Reader) ([]Position, error) {
	scanner := bufio.NewScanner(r)
	path := make([]Position, 0)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("path line %d: want \"row col\", got %q", line, text)
		}
		row, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("path line %d: %w", line, err)
		}
		col, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("path line %d: %w", line, err)
		}
		path = append(path, Position{Row: row, Col: col})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return path, nil
}

// ParsePosition reads "row,col" or "row col".
func ParsePosition(s string) (Position, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 2 {
		return Position{}, fmt.Errorf("position %q: want row,col", s)
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	return Position{Row: row, Col: col}, nil
}
