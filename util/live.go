package util

import (
	"fmt"
	"time"

	"github.com/zeu5/qgrid/core"
)

// LiveRenderer redraws the grid with the agent's position after every step.
// It only reads the grid, so training results do not depend on it.
type LiveRenderer struct {
	printer *GridPrinter
	output  *ParallelOutput
	delay   time.Duration
}

var _ core.Observer = &LiveRenderer{}

func NewLiveRenderer(printer *GridPrinter, terminal *TerminalPrinter, delay time.Duration) *LiveRenderer {
	return &LiveRenderer{
		printer: printer,
		output:  terminal.NewOutput(),
		delay:   delay,
	}
}

func (l *LiveRenderer) OnStep(episode int, pos core.Position) {
	l.output.TrySet(fmt.Sprintf("Episode %d, Position (%s)\n%s", episode+1, pos, l.printer.Render(pos)))
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
}
