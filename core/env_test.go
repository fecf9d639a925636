package core_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-vfs/vfst"

	"github.com/zeu5/qgrid/core"
)

func mustGrid(t *testing.T, desc string) (*core.Description, *core.GridWorld) {
	t.Helper()
	d, err := core.ParseGrid(strings.NewReader(desc))
	require.NoError(t, err)
	g, err := d.GridWorld()
	require.NoError(t, err)
	return d, g
}

func TestParseSmallGrid(t *testing.T) {
	d, g := mustGrid(t, "100\n.g\n.#\n")

	assert.Equal(t, 100, d.Episodes)
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 2, g.Cols())
	assert.Equal(t, [][]int{{-1, 100}, {-1, -100}}, g.Rewards())
	assert.Equal(t, []core.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}}, g.NonTerminalStates())
	assert.Equal(t, core.Goal, g.Kind(core.Position{Row: 0, Col: 1}))
	assert.Equal(t, core.Obstacle, g.Kind(core.Position{Row: 1, Col: 1}))
}

func TestParseIgnoresTrailingBlankLinesAndCarriageReturns(t *testing.T) {
	d, g := mustGrid(t, "5\r\n.g\r\n\r\n\n")

	assert.Equal(t, 5, d.Episodes)
	assert.Equal(t, 1, g.Rows())
	assert.Equal(t, 2, g.Cols())
}

func TestParseMismatchedRows(t *testing.T) {
	_, err := core.ParseGrid(strings.NewReader("10\n..\n...\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrGridParse))

	var parseErr *core.GridParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 3, parseErr.Line)
}

func TestParseReportsEveryProblem(t *testing.T) {
	_, err := core.ParseGrid(strings.NewReader("x\n.q\n...\n"))
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	for _, e := range merr.Errors {
		assert.True(t, errors.Is(e, core.ErrGridParse))
	}
	assert.Contains(t, err.Error(), "line 1")
	assert.Contains(t, err.Error(), "unknown symbol 'q'")
}

func TestParseRejectsEmptyInput(t *testing.T) {
	for _, desc := range []string{"", "\n\n", "10\n", "0\n.g\n"} {
		_, err := core.ParseGrid(strings.NewReader(desc))
		assert.ErrorIs(t, err, core.ErrGridParse, "description %q", desc)
	}
}

func TestGridWithoutPathCells(t *testing.T) {
	d, err := core.ParseGrid(strings.NewReader("10\ng#\n"))
	require.NoError(t, err)
	_, err = d.GridWorld()
	assert.ErrorIs(t, err, core.ErrEmptyStateSpace)
}

func TestNewGridWorldRejectsRaggedInput(t *testing.T) {
	_, err := core.NewGridWorld([][]core.CellKind{{core.Path, core.Goal}, {core.Path}})
	assert.ErrorIs(t, err, core.ErrGridParse)

	_, err = core.NewGridWorld(nil)
	assert.ErrorIs(t, err, core.ErrGridParse)
}

func TestReadGridFile(t *testing.T) {
	fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
		"/grids/small.txt": "100\n.g\n.#\n",
	})
	require.NoError(t, err)
	defer cleanup()

	d, err := core.ReadGridFile(fs, "/grids/small.txt")
	require.NoError(t, err)
	assert.Equal(t, 100, d.Episodes)
	assert.Len(t, d.Cells, 2)

	_, err = core.ReadGridFile(fs, "/grids/missing.txt")
	assert.ErrorIs(t, err, core.ErrGridParse)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStep(t *testing.T) {
	_, g := mustGrid(t, "1\n...\n...\n..g\n")

	tests := []struct {
		from   core.Position
		action core.Action
		want   core.Position
	}{
		{core.Position{Row: 0, Col: 0}, core.Up, core.Position{Row: 0, Col: 0}},
		{core.Position{Row: 0, Col: 0}, core.Left, core.Position{Row: 0, Col: 0}},
		{core.Position{Row: 0, Col: 0}, core.Down, core.Position{Row: 1, Col: 0}},
		{core.Position{Row: 0, Col: 0}, core.Right, core.Position{Row: 0, Col: 1}},
		{core.Position{Row: 1, Col: 1}, core.Up, core.Position{Row: 0, Col: 1}},
		{core.Position{Row: 1, Col: 1}, core.Left, core.Position{Row: 1, Col: 0}},
		{core.Position{Row: 2, Col: 1}, core.Down, core.Position{Row: 2, Col: 1}},
		{core.Position{Row: 1, Col: 2}, core.Right, core.Position{Row: 1, Col: 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Step(tt.from, tt.action), "%s from (%s)", tt.action, tt.from)
	}

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			pos := core.Position{Row: r, Col: c}
			for _, a := range core.Actions() {
				assert.True(t, g.Contains(g.Step(pos, a)), "%s from (%s)", a, pos)
			}
		}
	}
}

func TestTerminalCells(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n.#\n")

	assert.False(t, g.IsTerminal(core.Position{Row: 0, Col: 0}))
	assert.True(t, g.IsTerminal(core.Position{Row: 0, Col: 1}))
	assert.True(t, g.IsTerminal(core.Position{Row: 1, Col: 1}))
}

func TestOutOfRangePanics(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")

	assert.Panics(t, func() { g.Reward(core.Position{Row: 1, Col: 0}) })
	assert.Panics(t, func() { g.IsTerminal(core.Position{Row: 0, Col: -1}) })
	assert.Panics(t, func() { g.Step(core.Position{Row: 0, Col: 0}, core.Action(4)) })
}

func TestRandomStartOnlyPicksNonTerminalCells(t *testing.T) {
	_, g := mustGrid(t, "1\n.g.\n#..\n")
	r := core.NewRand(7)

	seen := make(map[core.Position]int)
	for i := 0; i < 500; i++ {
		pos, err := g.RandomStart(r)
		require.NoError(t, err)
		require.False(t, g.IsTerminal(pos))
		seen[pos]++
	}
	assert.Len(t, seen, len(g.NonTerminalStates()))
}
