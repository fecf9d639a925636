package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/twpayne/go-vfs"
)

const (
	goalSymbol     = 'g'
	obstacleSymbol = '#'
	pathSymbol     = '.'
)

// Description is a parsed grid description: the episode count from the
// header line followed by one row of cells per line.
type Description struct {
	Episodes int
	Cells    [][]CellKind
}

func (d *Description) GridWorld() (*GridWorld, error) {
	return NewGridWorld(d.Cells)
}

// ParseGrid reads a grid description. Every malformed line is reported; the
// returned error then wraps one *GridParseError per problem.
func ParseGrid(r io.Reader) (*Description, error) {
	scanner := bufio.NewScanner(r)
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, &GridParseError{Reason: "reading description", Err: err}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, &GridParseError{Reason: "description is empty"}
	}

	var errs *multierror.Error
	episodes, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || episodes <= 0 {
		errs = multierror.Append(errs, &GridParseError{
			Line:   1,
			Reason: fmt.Sprintf("episode count %q is not a positive integer", lines[0]),
		})
	}
	if len(lines) == 1 {
		errs = multierror.Append(errs, &GridParseError{Reason: "no grid rows after header"})
		return nil, compact(errs)
	}

	width := len(lines[1])
	cells := make([][]CellKind, 0, len(lines)-1)
	for i, line := range lines[1:] {
		lineNo := i + 2
		if len(line) != width {
			errs = multierror.Append(errs, &GridParseError{
				Line:   lineNo,
				Reason: fmt.Sprintf("row has %d cells, want %d", len(line), width),
			})
			continue
		}
		row := make([]CellKind, 0, width)
		for col, symbol := range []byte(line) {
			switch symbol {
			case goalSymbol:
				row = append(row, Goal)
			case obstacleSymbol:
				row = append(row, Obstacle)
			case pathSymbol:
				row = append(row, Path)
			default:
				errs = multierror.Append(errs, &GridParseError{
					Line:   lineNo,
					Reason: fmt.Sprintf("unknown symbol %q at column %d", symbol, col),
				})
			}
		}
		cells = append(cells, row)
	}
	if width == 0 {
		errs = multierror.Append(errs, &GridParseError{Line: 2, Reason: "grid rows are empty"})
	}
	if errs.ErrorOrNil() != nil {
		return nil, compact(errs)
	}
	return &Description{Episodes: episodes, Cells: cells}, nil
}

// ReadGridFile parses the grid description stored at name.
func ReadGridFile(fs vfs.FS, name string) (*Description, error) {
	file, err := fs.Open(name)
	if err != nil {
		return nil, &GridParseError{Reason: "opening " + name, Err: err}
	}
	defer file.Close()
	return ParseGrid(file)
}

func compact(errs *multierror.Error) error {
	errs.ErrorFormat = func(es []error) string {
		parts := make([]string, len(es))
		for i, e := range es {
			parts[i] = e.Error()
		}
		return strings.Join(parts, "; ")
	}
	return errs
}
