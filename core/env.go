package core

import (
	"fmt"

	"golang.org/x/exp/rand"
)

const (
	GoalReward     = 100
	ObstacleReward = -100
	PathReward     = -1
)

type CellKind int

const (
	Path CellKind = iota
	Goal
	Obstacle
)

func (k CellKind) String() string {
	switch k {
	case Goal:
		return "goal"
	case Obstacle:
		return "obstacle"
	default:
		return "path"
	}
}

func (k CellKind) reward() int {
	switch k {
	case Goal:
		return GoalReward
	case Obstacle:
		return ObstacleReward
	default:
		return PathReward
	}
}

// Action indexes the third dimension of the QTable. The numbering is part of
// the contract: Up=0, Down=1, Left=2, Right=3, and ties between equal
// Q-values go to the lowest index.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

const NumActions = 4

func Actions() []Action {
	return []Action{Up, Down, Left, Right}
}

func (a Action) Valid() bool {
	return a >= Up && a <= Right
}

func (a Action) String() string {
	switch a {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%d %d", p.Row, p.Col)
}

// GridWorld is the immutable reward model. A cell is terminal exactly when its
// reward differs from PathReward.
type GridWorld struct {
	rows    int
	cols    int
	kinds   []CellKind
	rewards []int

	nonTerminal []Position
}

func NewGridWorld(cells [][]CellKind) (*GridWorld, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, &GridParseError{Reason: "grid has no cells"}
	}
	rows, cols := len(cells), len(cells[0])
	g := &GridWorld{
		rows:        rows,
		cols:        cols,
		kinds:       make([]CellKind, 0, rows*cols),
		rewards:     make([]int, 0, rows*cols),
		nonTerminal: make([]Position, 0),
	}
	for r, row := range cells {
		if len(row) != cols {
			return nil, &GridParseError{
				Reason: fmt.Sprintf("row %d has %d cells, want %d", r, len(row), cols),
			}
		}
		for c, kind := range row {
			g.kinds = append(g.kinds, kind)
			g.rewards = append(g.rewards, kind.reward())
			if kind == Path {
				g.nonTerminal = append(g.nonTerminal, Position{Row: r, Col: c})
			}
		}
	}
	if len(g.nonTerminal) == 0 {
		return nil, ErrEmptyStateSpace
	}
	return g, nil
}

func (g *GridWorld) Rows() int { return g.rows }
func (g *GridWorld) Cols() int { return g.cols }

func (g *GridWorld) Contains(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.rows && pos.Col >= 0 && pos.Col < g.cols
}

func (g *GridWorld) index(pos Position) int {
	if !g.Contains(pos) {
		panic(fmt.Sprintf("position (%d,%d) outside %dx%d grid", pos.Row, pos.Col, g.rows, g.cols))
	}
	return pos.Row*g.cols + pos.Col
}

func (g *GridWorld) Kind(pos Position) CellKind {
	return g.kinds[g.index(pos)]
}

func (g *GridWorld) Reward(pos Position) int {
	return g.rewards[g.index(pos)]
}

func (g *GridWorld) IsTerminal(pos Position) bool {
	return g.Reward(pos) != PathReward
}

// NonTerminalStates returns the episode start cells in row-major order.
func (g *GridWorld) NonTerminalStates() []Position {
	out := make([]Position, len(g.nonTerminal))
	copy(out, g.nonTerminal)
	return out
}

// RandomStart samples uniformly from the non-terminal states.
func (g *GridWorld) RandomStart(r *rand.Rand) (Position, error) {
	if len(g.nonTerminal) == 0 {
		return Position{}, ErrEmptyStateSpace
	}
	return g.nonTerminal[r.Intn(len(g.nonTerminal))], nil
}

// Step applies a move, clamping at the grid border.
func (g *GridWorld) Step(pos Position, action Action) Position {
	g.index(pos)
	switch action {
	case Up:
		pos.Row = max(pos.Row-1, 0)
	case Down:
		pos.Row = min(pos.Row+1, g.rows-1)
	case Left:
		pos.Col = max(pos.Col-1, 0)
	case Right:
		pos.Col = min(pos.Col+1, g.cols-1)
	default:
		panic(fmt.Sprintf("invalid action %d", int(action)))
	}
	return pos
}

// Rewards returns a copy of the reward grid.
func (g *GridWorld) Rewards() [][]int {
	out := make([][]int, g.rows)
	for r := 0; r < g.rows; r++ {
		out[r] = make([]int, g.cols)
		copy(out[r], g.rewards[r*g.cols:(r+1)*g.cols])
	}
	return out
}
