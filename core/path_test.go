package core_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/qgrid/core"
)

func TestShortestPathFromTerminalStart(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n.#\n")
	q := core.NewQTableFor(g)

	path, err := core.ShortestPath(g, q, core.Position{Row: 0, Col: 1})
	assert.NoError(t, err)
	assert.Nil(t, path)

	path, err = core.ShortestPath(g, q, core.Position{Row: 1, Col: 1})
	assert.NoError(t, err)
	assert.Nil(t, path)
}

func TestShortestPathFollowsGreedyActions(t *testing.T) {
	_, g := mustGrid(t, "1\n..g\n")
	q := core.NewQTableFor(g)
	q.Set(core.Position{Row: 0, Col: 0}, core.Right, 1)
	q.Set(core.Position{Row: 0, Col: 1}, core.Right, 1)

	path, err := core.ShortestPath(g, q, core.Position{Row: 0, Col: 0})
	require.NoError(t, err)
	assert.Equal(t, []core.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}, path)
}

func TestShortestPathDetectsCycles(t *testing.T) {
	_, g := mustGrid(t, "1\n..g\n")
	q := core.NewQTableFor(g)
	q.Set(core.Position{Row: 0, Col: 0}, core.Right, 1)
	q.Set(core.Position{Row: 0, Col: 1}, core.Left, 1)

	path, err := core.ShortestPath(g, q, core.Position{Row: 0, Col: 0})
	assert.ErrorIs(t, err, core.ErrNoConvergingPath)
	assert.Nil(t, path)
	assert.Equal(t, 12, core.MaxPathSteps(g))
}

func TestShortestPathRejectsForeignTable(t *testing.T) {
	_, g := mustGrid(t, "1\n..g\n")

	_, err := core.ShortestPath(g, core.NewQTable(2, 3), core.Position{})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestWriteAndReadPath(t *testing.T) {
	path := []core.Position{{Row: 1, Col: 0}, {Row: 0, Col: 0}, {Row: 0, Col: 1}}
	buf := new(bytes.Buffer)
	require.NoError(t, core.WritePath(buf, path))
	assert.Equal(t, "1 0\n0 0\n0 1\n", buf.String())

	read, err := core.ReadPath(strings.NewReader(buf.String() + "\n"))
	require.NoError(t, err)
	assert.Equal(t, path, read)

	_, err = core.ReadPath(strings.NewReader("1 x\n"))
	assert.Error(t, err)
	_, err = core.ReadPath(strings.NewReader("1 2 3\n"))
	assert.Error(t, err)
}

func TestParsePosition(t *testing.T) {
	for _, s := range []string{"2,3", "2 3", " 2, 3 "} {
		pos, err := core.ParsePosition(s)
		require.NoError(t, err, s)
		assert.Equal(t, core.Position{Row: 2, Col: 3}, pos)
	}
	for _, s := range []string{"", "2", "a,b", "1,2,3"} {
		_, err := core.ParsePosition(s)
		assert.Error(t, err, s)
	}
}
